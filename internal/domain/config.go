package domain

import "time"

// Config is the project configuration loaded from fragfusion.yaml.
type Config struct {
	Paths          PathsConfig
	Samples        SamplesConfig
	Docker         DockerConfig
	Workflow       WorkflowConfig
	DataCollection DataCollectionConfig
	QC             QCConfig
	Mirror         MirrorConfig
	Metrics        MetricsConfig
	Server         ServerConfig
	Logging        LoggingConfig
}

type PathsConfig struct {
	RawDir       string
	AlignedDir   string
	ResultsDir   string
	LogsDir      string
	ConfigsDir   string
	WorkflowsDir string
	SampleList   string
}

type SamplesConfig struct {
	Suffix string
}

type DockerConfig struct {
	Image         string
	DevImage      string
	DevContainer  string
	CondaEnv      string
	GPUProbeImage string
	Ports         []string

	// Mounts are project directories mounted under /app for run and snakemake.
	Mounts    []string
	DevMounts []string
	// WorkflowMounts are the directories mounted for containerized snakemake.
	WorkflowMounts []string

	ExtraArgs []string
}

type WorkflowConfig struct {
	Snakefile  string
	ConfigFile string
	Cores      int
}

type DataCollectionConfig struct {
	UserAgent              string
	ValidateDownloads      bool
	MaxConcurrentDownloads int
	MinReadLength          int
	Keywords               []string

	ENA     ArchiveConfig
	NCBI    ArchiveConfig
	Storage StorageConfig
}

// ArchiveConfig describes one public sequence archive endpoint.
type ArchiveConfig struct {
	BaseURL    string
	FTPBase    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	Datasets   []DatasetRef
}

type DatasetRef struct {
	Accession   string
	Description string
}

// StorageConfig is the on-disk layout for collected cfDNA data.
type StorageConfig struct {
	FASTQ         string
	BAM           string
	Metadata      string
	QCReports     string
	Fragmentomics string
	Ledger        string
}

type QCConfig struct {
	Checks []QCCheck
}

type MirrorConfig struct {
	S3 S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	PathStyle bool
}

type MetricsConfig struct {
	Textfile string
}

type ServerConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level string
}

// DefaultConfig is the stock project layout and tool settings.
func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			RawDir:       "data/raw",
			AlignedDir:   "data/aligned",
			ResultsDir:   "results",
			LogsDir:      "logs",
			ConfigsDir:   "configs",
			WorkflowsDir: "workflows",
			SampleList:   "data/samples.txt",
		},
		Samples: SamplesConfig{Suffix: ".fastq.gz"},
		Docker: DockerConfig{
			Image:          "fragment-fusion:latest",
			DevImage:       "fragment-fusion:dev",
			DevContainer:   "fragment-fusion-dev",
			CondaEnv:       "fragment-fusion",
			GPUProbeImage:  "nvidia/cuda:12.1-base-ubuntu22.04",
			Ports:          []string{"8000:8000", "8888:8888"},
			Mounts:         []string{"data", "results", "logs", "src", "workflows", "scripts"},
			DevMounts:      []string{"data", "results", "logs", "src", "workflows", "scripts", "configs", "tests"},
			WorkflowMounts: []string{"data", "results", "workflows", "configs"},
		},
		Workflow: WorkflowConfig{
			Snakefile:  "workflows/Snakefile",
			ConfigFile: "workflows/config.yaml",
			Cores:      4,
		},
		DataCollection: DataCollectionConfig{
			UserAgent:              "FragmentFusion-DataCollector/1.0",
			ValidateDownloads:      true,
			MaxConcurrentDownloads: 4,
			MinReadLength:          30,
			Keywords:               []string{"cfDNA", "cell-free DNA"},
			ENA: ArchiveConfig{
				BaseURL:    "https://www.ebi.ac.uk/ena/browser/api/xml",
				FTPBase:    "https://ftp.sra.ebi.ac.uk/vol1/fastq",
				Timeout:    5 * time.Minute,
				MaxRetries: 3,
			},
			NCBI: ArchiveConfig{
				BaseURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
				Timeout:    5 * time.Minute,
				MaxRetries: 3,
			},
			Storage: StorageConfig{
				FASTQ:         "data/raw/cfdna/fastq",
				BAM:           "data/raw/cfdna/bam",
				Metadata:      "data/metadata",
				QCReports:     "results/qc_reports",
				Fragmentomics: "results/fragmentomics",
				Ledger:        ".fragfusion/downloads.db",
			},
		},
		Metrics: MetricsConfig{},
		Server:  ServerConfig{Addr: ":8000"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// CollectionDirs lists the directories data collection writes into.
func (c Config) CollectionDirs() []string {
	s := c.DataCollection.Storage
	return []string{s.FASTQ, s.BAM, s.Metadata, s.QCReports, s.Fragmentomics, c.Paths.LogsDir}
}
