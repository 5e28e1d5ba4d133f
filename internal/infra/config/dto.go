package config

// File is the top-level document of fragfusion.yaml.
type File struct {
	FragFusion Settings `mapstructure:"fragfusion"`
}

// Settings mirrors the `fragfusion` section of fragfusion.yaml. Optional
// scalars are pointers so an explicit zero can be told apart from a missing key.
type Settings struct {
	Paths          PathsSettings    `mapstructure:"paths"`
	Samples        SamplesSettings  `mapstructure:"samples"`
	Docker         DockerSettings   `mapstructure:"docker"`
	Workflow       WorkflowSettings `mapstructure:"workflow"`
	DataCollection DataSettings     `mapstructure:"data_collection"`
	QC             QCSettings       `mapstructure:"qc"`
	Mirror         MirrorSettings   `mapstructure:"mirror"`
	Metrics        MetricsSettings  `mapstructure:"metrics"`
	Server         ServerSettings   `mapstructure:"server"`
	Logging        LoggingSettings  `mapstructure:"logging"`
}

type PathsSettings struct {
	RawDir       string `mapstructure:"raw_dir"`
	AlignedDir   string `mapstructure:"aligned_dir"`
	ResultsDir   string `mapstructure:"results_dir"`
	LogsDir      string `mapstructure:"logs_dir"`
	ConfigsDir   string `mapstructure:"configs_dir"`
	WorkflowsDir string `mapstructure:"workflows_dir"`
	SampleList   string `mapstructure:"sample_list"`
}

type SamplesSettings struct {
	Suffix string `mapstructure:"suffix"`
}

type DockerSettings struct {
	Image          string   `mapstructure:"image"`
	DevImage       string   `mapstructure:"dev_image"`
	DevContainer   string   `mapstructure:"dev_container"`
	CondaEnv       string   `mapstructure:"conda_env"`
	GPUProbeImage  string   `mapstructure:"gpu_probe_image"`
	Ports          []string `mapstructure:"ports"`
	Mounts         []string `mapstructure:"mounts"`
	DevMounts      []string `mapstructure:"dev_mounts"`
	WorkflowMounts []string `mapstructure:"workflow_mounts"`
	ExtraArgs      []string `mapstructure:"extra_args"`
}

type WorkflowSettings struct {
	Snakefile  string `mapstructure:"snakefile"`
	ConfigFile string `mapstructure:"config_file"`
	Cores      *int   `mapstructure:"cores"`
}

type DataSettings struct {
	UserAgent              string          `mapstructure:"user_agent"`
	ValidateDownloads      *bool           `mapstructure:"validate_downloads"`
	MaxConcurrentDownloads *int            `mapstructure:"max_concurrent_downloads"`
	MinReadLength          *int            `mapstructure:"min_read_length"`
	Keywords               []string        `mapstructure:"keywords"`
	ENA                    ArchiveSettings `mapstructure:"ena"`
	NCBI                   ArchiveSettings `mapstructure:"ncbi"`
	Storage                StorageSettings `mapstructure:"storage"`
}

type ArchiveSettings struct {
	BaseURL        string            `mapstructure:"base_url"`
	FTPBase        string            `mapstructure:"ftp_base"`
	APIKey         string            `mapstructure:"api_key"`
	TimeoutSeconds *int              `mapstructure:"timeout"`
	MaxRetries     *int              `mapstructure:"max_retries"`
	Datasets       []DatasetSettings `mapstructure:"datasets"`
}

type DatasetSettings struct {
	Accession   string `mapstructure:"accession"`
	Description string `mapstructure:"description"`
}

type StorageSettings struct {
	FASTQ         string `mapstructure:"fastq"`
	BAM           string `mapstructure:"bam"`
	Metadata      string `mapstructure:"metadata"`
	QCReports     string `mapstructure:"qc_reports"`
	Fragmentomics string `mapstructure:"fragmentomics"`
	Ledger        string `mapstructure:"ledger"`
}

// QCSettings uses lists rather than maps: viper lower-cases map keys, which
// would corrupt JSONPath expressions and extract names.
type QCSettings struct {
	Checks []QCCheckSettings `mapstructure:"checks"`
}

type QCCheckSettings struct {
	Name    string            `mapstructure:"name"`
	Files   []string          `mapstructure:"files"`
	Assert  []AssertSettings  `mapstructure:"assert"`
	Extract []ExtractSettings `mapstructure:"extract"`
}

type AssertSettings struct {
	Path     string   `mapstructure:"path"`
	Exists   bool     `mapstructure:"exists"`
	Eq       *string  `mapstructure:"eq"`
	Contains *string  `mapstructure:"contains"`
	Matches  *string  `mapstructure:"matches"`
	Gt       *float64 `mapstructure:"gt"`
	Lt       *float64 `mapstructure:"lt"`
}

type ExtractSettings struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

type MirrorSettings struct {
	S3 S3Settings `mapstructure:"s3"`
}

type S3Settings struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`
	PathStyle *bool  `mapstructure:"path_style"`
}

type MetricsSettings struct {
	Textfile string `mapstructure:"textfile"`
}

type ServerSettings struct {
	Addr string `mapstructure:"addr"`
}

type LoggingSettings struct {
	Level string `mapstructure:"level"`
}
