package domain

import "time"

// Source identifies a public sequence archive.
type Source string

const (
	SourceENA  Source = "ena"
	SourceNCBI Source = "ncbi"
)

// ParseSource accepts "ena" or "ncbi" (case-sensitive, as written in config).
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceENA, SourceNCBI:
		return Source(s), true
	default:
		return "", false
	}
}

// Project is a study/project found by an archive search.
type Project struct {
	ID             string `json:"id,omitempty"`
	Accession      string `json:"accession"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	SubmissionDate string `json:"submission_date"`
	CenterName     string `json:"center_name"`
	BrokerName     string `json:"broker_name,omitempty"`
	SampleCount    int    `json:"sample_count,omitempty"`
	Keyword        string `json:"keyword"`
}

// ArchiveSample is sample metadata as reported by an archive.
type ArchiveSample struct {
	Accession      string            `json:"accession"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	TaxonID        string            `json:"taxon_id"`
	SubmissionDate string            `json:"submission_date"`
	Attributes     map[string]string `json:"attributes"`
}

// RunFile is one file attached to a sequencing run.
type RunFile struct {
	Filename                  string `json:"filename"`
	Filetype                  string `json:"filetype"`
	Checksum                  string `json:"checksum"`
	ChecksumMethod            string `json:"checksum_method"`
	UnencryptedChecksum       string `json:"unencrypted_checksum"`
	UnencryptedChecksumMethod string `json:"unencrypted_checksum_method"`
}

// IsFASTQ reports whether the file is a (possibly gzipped) FASTQ file.
func (f RunFile) IsFASTQ() bool {
	return f.Filetype == "fastq" || f.Filetype == "fastq.gz"
}

// LocalFile is a downloaded file on disk.
type LocalFile struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Run is a sequencing run.
type Run struct {
	ID                  string    `json:"id,omitempty"`
	Accession           string    `json:"accession"`
	Alias               string    `json:"alias,omitempty"`
	Title               string    `json:"title"`
	InstrumentPlatform  string    `json:"instrument_platform"`
	InstrumentModel     string    `json:"instrument_model"`
	BaseCount           int64     `json:"base_count"`
	ReadCount           int64     `json:"read_count"`
	RunDate             string    `json:"run_date"`
	SampleAccession     string    `json:"sample_accession,omitempty"`
	ExperimentAccession string    `json:"experiment_accession,omitempty"`
	StudyAccession      string    `json:"study_accession,omitempty"`
	Files               []RunFile `json:"files,omitempty"`
}

// ProjectMetadata is written next to the downloaded data before any file is fetched.
type ProjectMetadata struct {
	Source           Source          `json:"source"`
	ProjectAccession string          `json:"project_accession"`
	Samples          []ArchiveSample `json:"samples,omitempty"`
	Runs             []Run           `json:"runs,omitempty"`
	DownloadDate     time.Time       `json:"download_date"`
}

// DownloadSummary reports the outcome of a project download.
// Sample counters are used by ENA (sample-oriented), run counters by NCBI.
type DownloadSummary struct {
	Source           Source    `json:"source"`
	ProjectAccession string    `json:"project_accession"`
	StartedAt        time.Time `json:"started_at"`
	EndedAt          time.Time `json:"ended_at"`

	TotalSamples      int `json:"total_samples"`
	DownloadedSamples int `json:"downloaded_samples"`
	FailedSamples     int `json:"failed_samples"`

	TotalRuns      int `json:"total_runs"`
	DownloadedRuns int `json:"downloaded_runs"`
	FailedRuns     int `json:"failed_runs"`

	DownloadedFiles int      `json:"downloaded_files"`
	FailedFiles     int      `json:"failed_files"`
	Errors          []string `json:"errors"`
}

// Failed reports whether any file, sample or run failed.
func (s DownloadSummary) Failed() bool {
	return s.FailedFiles > 0 || s.FailedSamples > 0 || s.FailedRuns > 0
}

// LedgerEntry records a file that finished downloading and validated.
type LedgerEntry struct {
	Source      Source    `json:"source"`
	Project     string    `json:"project"`
	Run         string    `json:"run"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Checksum    string    `json:"checksum,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}
