package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
)

// Map applies parsed settings on top of domain.DefaultConfig and validates the result.
func Map(path string, s Settings) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	p := &cfg.Paths
	setString(&p.RawDir, s.Paths.RawDir)
	setString(&p.AlignedDir, s.Paths.AlignedDir)
	setString(&p.ResultsDir, s.Paths.ResultsDir)
	setString(&p.LogsDir, s.Paths.LogsDir)
	setString(&p.ConfigsDir, s.Paths.ConfigsDir)
	setString(&p.WorkflowsDir, s.Paths.WorkflowsDir)
	setString(&p.SampleList, s.Paths.SampleList)

	setString(&cfg.Samples.Suffix, s.Samples.Suffix)

	d := &cfg.Docker
	setString(&d.Image, s.Docker.Image)
	setString(&d.DevImage, s.Docker.DevImage)
	setString(&d.DevContainer, s.Docker.DevContainer)
	setString(&d.CondaEnv, s.Docker.CondaEnv)
	setString(&d.GPUProbeImage, s.Docker.GPUProbeImage)
	setList(&d.Ports, s.Docker.Ports)
	setList(&d.Mounts, s.Docker.Mounts)
	setList(&d.DevMounts, s.Docker.DevMounts)
	setList(&d.WorkflowMounts, s.Docker.WorkflowMounts)
	setList(&d.ExtraArgs, s.Docker.ExtraArgs)

	w := &cfg.Workflow
	setString(&w.Snakefile, s.Workflow.Snakefile)
	setString(&w.ConfigFile, s.Workflow.ConfigFile)
	if s.Workflow.Cores != nil {
		if *s.Workflow.Cores < 1 {
			return cfg, invalidField(path, "workflow.cores", "must be at least 1")
		}
		w.Cores = *s.Workflow.Cores
	}

	dc := &cfg.DataCollection
	setString(&dc.UserAgent, s.DataCollection.UserAgent)
	if s.DataCollection.ValidateDownloads != nil {
		dc.ValidateDownloads = *s.DataCollection.ValidateDownloads
	}
	if v := s.DataCollection.MaxConcurrentDownloads; v != nil {
		if *v < 1 {
			return cfg, invalidField(path, "data_collection.max_concurrent_downloads", "must be at least 1")
		}
		dc.MaxConcurrentDownloads = *v
	}
	if v := s.DataCollection.MinReadLength; v != nil {
		if *v < 0 {
			return cfg, invalidField(path, "data_collection.min_read_length", "must not be negative")
		}
		dc.MinReadLength = *v
	}
	setList(&dc.Keywords, s.DataCollection.Keywords)

	if err := mapArchive(path, "data_collection.ena", &dc.ENA, s.DataCollection.ENA); err != nil {
		return cfg, err
	}
	if err := mapArchive(path, "data_collection.ncbi", &dc.NCBI, s.DataCollection.NCBI); err != nil {
		return cfg, err
	}

	st := &dc.Storage
	setString(&st.FASTQ, s.DataCollection.Storage.FASTQ)
	setString(&st.BAM, s.DataCollection.Storage.BAM)
	setString(&st.Metadata, s.DataCollection.Storage.Metadata)
	setString(&st.QCReports, s.DataCollection.Storage.QCReports)
	setString(&st.Fragmentomics, s.DataCollection.Storage.Fragmentomics)
	setString(&st.Ledger, s.DataCollection.Storage.Ledger)

	checks, err := mapChecks(path, s.QC.Checks)
	if err != nil {
		return cfg, err
	}
	cfg.QC.Checks = checks

	m := &cfg.Mirror.S3
	setString(&m.Bucket, s.Mirror.S3.Bucket)
	setString(&m.Region, s.Mirror.S3.Region)
	setString(&m.Endpoint, s.Mirror.S3.Endpoint)
	m.Prefix = strings.Trim(s.Mirror.S3.Prefix, "/")
	if s.Mirror.S3.PathStyle != nil {
		m.PathStyle = *s.Mirror.S3.PathStyle
	}

	setString(&cfg.Metrics.Textfile, s.Metrics.Textfile)
	setString(&cfg.Server.Addr, s.Server.Addr)

	if lvl := strings.ToLower(strings.TrimSpace(s.Logging.Level)); lvl != "" {
		switch lvl {
		case "debug", "info", "warn", "error":
			cfg.Logging.Level = lvl
		default:
			return cfg, invalidField(path, "logging.level", fmt.Sprintf("unsupported level %q", s.Logging.Level))
		}
	}

	return cfg, nil
}

func mapArchive(path, field string, dst *domain.ArchiveConfig, s ArchiveSettings) error {
	setString(&dst.BaseURL, strings.TrimRight(s.BaseURL, "/"))
	setString(&dst.FTPBase, strings.TrimRight(s.FTPBase, "/"))
	setString(&dst.APIKey, s.APIKey)

	if s.TimeoutSeconds != nil {
		if *s.TimeoutSeconds < 1 {
			return invalidField(path, field+".timeout", "must be at least 1 second")
		}
		dst.Timeout = time.Duration(*s.TimeoutSeconds) * time.Second
	}
	if s.MaxRetries != nil {
		if *s.MaxRetries < 0 {
			return invalidField(path, field+".max_retries", "must not be negative")
		}
		dst.MaxRetries = *s.MaxRetries
	}

	for i, ds := range s.Datasets {
		acc := strings.TrimSpace(ds.Accession)
		if acc == "" {
			return invalidField(path, fmt.Sprintf("%s.datasets[%d].accession", field, i), "accession is required")
		}
		dst.Datasets = append(dst.Datasets, domain.DatasetRef{Accession: acc, Description: ds.Description})
	}
	return nil
}

func mapChecks(path string, in []QCCheckSettings) ([]domain.QCCheck, error) {
	out := make([]domain.QCCheck, 0, len(in))
	seen := map[string]bool{}

	for i, c := range in {
		prefix := fmt.Sprintf("qc.checks[%d]", i)
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, invalidField(path, prefix+".name", "check name is required")
		}
		if seen[name] {
			return nil, invalidField(path, prefix+".name", fmt.Sprintf("duplicate check %q", name))
		}
		seen[name] = true

		if len(c.Files) == 0 {
			return nil, invalidField(path, prefix+".files", "at least one file pattern is required")
		}

		check := domain.QCCheck{
			Name:     name,
			Files:    append([]string(nil), c.Files...),
			JSONPath: map[string]domain.JSONPathAssertion{},
			Extract:  domain.ExtractSpec{},
		}

		for j, a := range c.Assert {
			if strings.TrimSpace(a.Path) == "" {
				return nil, invalidField(path, fmt.Sprintf("%s.assert[%d].path", prefix, j), "path is required")
			}
			check.JSONPath[a.Path] = domain.JSONPathAssertion{
				Exists:   a.Exists,
				Eq:       a.Eq,
				Contains: a.Contains,
				Matches:  a.Matches,
				Gt:       a.Gt,
				Lt:       a.Lt,
			}
		}
		for j, e := range c.Extract {
			if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.Path) == "" {
				return nil, invalidField(path, fmt.Sprintf("%s.extract[%d]", prefix, j), "name and path are required")
			}
			check.Extract[e.Name] = e.Path
		}

		out = append(out, check)
	}
	return out, nil
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

func setList(dst *[]string, v []string) {
	if len(v) > 0 {
		*dst = append([]string(nil), v...)
	}
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
