package ena

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/httpclient"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Client reads metadata from the ENA browser XML API.
type Client struct {
	exec    *httpclient.Executor
	baseURL string
	ftpBase string
}

var _ ports.ENAArchive = (*Client)(nil)

func NewClient(cfg domain.ArchiveConfig, exec *httpclient.Executor) *Client {
	return &Client{
		exec:    exec,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		ftpBase: strings.TrimRight(cfg.FTPBase, "/"),
	}
}

// SearchProjects returns studies whose title or description mention keyword.
func (c *Client) SearchProjects(ctx context.Context, keyword string) ([]domain.Project, error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf(`study_title:"%s" OR study_description:"%s"`, keyword, keyword))
	q.Set("result", "study")
	q.Set("format", "xml")

	body, err := c.get(ctx, []string{"search"}, q)
	if err != nil {
		return nil, err
	}

	var out []domain.Project
	err = each(body, "STUDY", func(d *xml.Decoder, start xml.StartElement) error {
		var s xmlStudy
		if err := d.DecodeElement(&s, &start); err != nil {
			return err
		}
		out = append(out, domain.Project{
			Accession:      s.Accession,
			Title:          strings.TrimSpace(s.Title),
			Description:    strings.TrimSpace(s.Description),
			SubmissionDate: s.SubmissionDate,
			CenterName:     s.CenterName,
			BrokerName:     s.BrokerName,
			Keyword:        keyword,
		})
		return nil
	})
	if err != nil {
		return nil, decodeError("ena.search", err)
	}
	return out, nil
}

// ProjectSamples lists the samples registered under a project accession.
func (c *Client) ProjectSamples(ctx context.Context, project string) ([]domain.ArchiveSample, error) {
	body, err := c.get(ctx, []string{project}, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.ArchiveSample
	err = each(body, "SAMPLE", func(d *xml.Decoder, start xml.StartElement) error {
		var s xmlSample
		if err := d.DecodeElement(&s, &start); err != nil {
			return err
		}
		sample := domain.ArchiveSample{
			Accession:      s.Accession,
			Title:          strings.TrimSpace(s.Title),
			Description:    strings.TrimSpace(s.Description),
			TaxonID:        s.TaxonID,
			SubmissionDate: s.SubmissionDate,
			Attributes:     map[string]string{},
		}
		err := each(wrap(s.Inner), "SAMPLE_ATTRIBUTE", func(d *xml.Decoder, start xml.StartElement) error {
			var a xmlAttribute
			if err := d.DecodeElement(&a, &start); err != nil {
				return err
			}
			if a.Tag != "" {
				sample.Attributes[a.Tag] = a.Value
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, sample)
		return nil
	})
	if err != nil {
		return nil, decodeError("ena.samples", err)
	}
	return out, nil
}

// SampleRuns lists the runs of a sample together with their files.
func (c *Client) SampleRuns(ctx context.Context, sample string) ([]domain.Run, error) {
	body, err := c.get(ctx, []string{sample}, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.Run
	err = each(body, "RUN", func(d *xml.Decoder, start xml.StartElement) error {
		var r xmlRun
		if err := d.DecodeElement(&r, &start); err != nil {
			return err
		}
		run := domain.Run{
			Accession:          r.Accession,
			Alias:              r.Alias,
			Title:              strings.TrimSpace(r.Title),
			InstrumentPlatform: r.InstrumentPlatform,
			InstrumentModel:    r.InstrumentModel,
			BaseCount:          parseCount(r.BaseCount),
			ReadCount:          parseCount(r.ReadCount),
			RunDate:            r.RunDate,
			SampleAccession:    sample,
		}
		err := each(wrap(r.Inner), "FILE", func(d *xml.Decoder, start xml.StartElement) error {
			var f xmlFile
			if err := d.DecodeElement(&f, &start); err != nil {
				return err
			}
			run.Files = append(run.Files, domain.RunFile(f))
			return nil
		})
		if err != nil {
			return err
		}
		out = append(out, run)
		return nil
	})
	if err != nil {
		return nil, decodeError("ena.runs", err)
	}
	return out, nil
}

// FileURL is the download location of a run file: <ftp>/<run[:6]>/<run>/<file>.
func (c *Client) FileURL(run, filename string) string {
	prefix := run
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return strings.Join([]string{c.ftpBase, prefix, run, filename}, "/")
}

func (c *Client) get(ctx context.Context, segments []string, q url.Values) ([]byte, error) {
	req, err := httpclient.BuildGet(ctx, c.baseURL, segments, q)
	if err != nil {
		return nil, err
	}
	resp, err := c.exec.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	return resp.BodyBytes, nil
}

func decodeError(op string, err error) error {
	return &domain.OpError{Op: op, Kind: domain.KindRemote, Err: fmt.Errorf("decode xml: %w", err)}
}
