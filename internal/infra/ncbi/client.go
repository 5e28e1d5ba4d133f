package ncbi

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/infra/httpclient"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

// Client queries the SRA database through the Entrez E-utilities.
type Client struct {
	exec    *httpclient.Executor
	baseURL string
	apiKey  string
}

var _ ports.NCBIArchive = (*Client)(nil)

func NewClient(cfg domain.ArchiveConfig, exec *httpclient.Executor) *Client {
	return &Client{
		exec:    exec,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
	}
}

type eSearchResult struct {
	IDs []string `xml:"IdList>Id"`
}

type eSummaryResult struct {
	DocSums []docSum `xml:"DocSum"`
}

type docSum struct {
	ID    string `xml:"Id"`
	Items []item `xml:"Item"`
}

type item struct {
	Name  string `xml:"Name,attr"`
	Value string `xml:",chardata"`
	Items []item `xml:"Item"`
}

// flatten walks nested Item lists the way a descendant search would.
func (d docSum) flatten() []item {
	var out []item
	var walk func([]item)
	walk = func(items []item) {
		for _, it := range items {
			out = append(out, it)
			walk(it.Items)
		}
	}
	walk(d.Items)
	return out
}

// SearchIDs runs esearch against db=sra and returns the matching UIDs.
func (c *Client) SearchIDs(ctx context.Context, term string, retmax int) ([]string, error) {
	q := url.Values{}
	q.Set("db", "sra")
	q.Set("term", term)
	q.Set("retmode", "xml")
	q.Set("retmax", strconv.Itoa(retmax))

	body, err := c.get(ctx, "esearch.fcgi", q)
	if err != nil {
		return nil, err
	}

	var res eSearchResult
	if err := xml.Unmarshal(body, &res); err != nil {
		return nil, decodeError("ncbi.esearch", err)
	}
	ids := make([]string, 0, len(res.IDs))
	for _, id := range res.IDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ProjectSummary returns project metadata for a UID. The bool is false when
// the response carries no DocSum.
func (c *Client) ProjectSummary(ctx context.Context, id string) (domain.Project, bool, error) {
	ds, ok, err := c.summary(ctx, id)
	if err != nil || !ok {
		return domain.Project{}, ok, err
	}

	p := domain.Project{ID: id}
	for _, it := range ds.flatten() {
		v := strings.TrimSpace(it.Value)
		switch it.Name {
		case "Accession":
			p.Accession = v
		case "Title":
			p.Title = v
		case "Summary":
			p.Description = v
		case "SubmissionDate":
			p.SubmissionDate = v
		case "CenterName":
			p.CenterName = v
		case "SampleCount":
			p.SampleCount, _ = strconv.Atoi(v)
		}
	}
	return p, true, nil
}

// RunSummary returns run metadata for a UID.
func (c *Client) RunSummary(ctx context.Context, id string) (domain.Run, bool, error) {
	ds, ok, err := c.summary(ctx, id)
	if err != nil || !ok {
		return domain.Run{}, ok, err
	}

	r := domain.Run{ID: id}
	for _, it := range ds.flatten() {
		v := strings.TrimSpace(it.Value)
		switch it.Name {
		case "Accession":
			r.Accession = v
		case "Title":
			r.Title = v
		case "Platform":
			r.InstrumentPlatform = v
		case "Model":
			r.InstrumentModel = v
		case "Bases":
			r.BaseCount, _ = strconv.ParseInt(v, 10, 64)
		case "Spots":
			r.ReadCount, _ = strconv.ParseInt(v, 10, 64)
		case "RunDate":
			r.RunDate = v
		case "SampleAcc":
			r.SampleAccession = v
		case "ExperimentAcc":
			r.ExperimentAccession = v
		case "StudyAcc":
			r.StudyAccession = v
		}
	}
	return r, true, nil
}

func (c *Client) summary(ctx context.Context, id string) (docSum, bool, error) {
	q := url.Values{}
	q.Set("db", "sra")
	q.Set("id", id)
	q.Set("retmode", "xml")

	body, err := c.get(ctx, "esummary.fcgi", q)
	if err != nil {
		return docSum{}, false, err
	}

	var res eSummaryResult
	if err := xml.Unmarshal(body, &res); err != nil {
		return docSum{}, false, decodeError("ncbi.esummary", err)
	}
	if len(res.DocSums) == 0 {
		return docSum{}, false, nil
	}
	return res.DocSums[0], true, nil
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	req, err := httpclient.BuildGet(ctx, c.baseURL, []string{endpoint}, q)
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

// Retmax limits used by project search and run listing.
const (
	ProjectSearchRetmax = 1000
	RunListRetmax       = 10000
)

func (c *Client) SearchProjectIDs(ctx context.Context, keyword string) ([]string, error) {
	return c.SearchIDs(ctx, ProjectTerm(keyword), ProjectSearchRetmax)
}

func (c *Client) ProjectRunIDs(ctx context.Context, project string) ([]string, error) {
	return c.SearchIDs(ctx, RunsTerm(project), RunListRetmax)
}

// ProjectTerm builds the esearch term for cfDNA whole-genome projects.
func ProjectTerm(keyword string) string {
	return fmt.Sprintf(`"%s"[Title/Abstract] AND "WGS"[Strategy]`, keyword)
}

// RunsTerm builds the esearch term for all runs of a project.
func RunsTerm(project string) string {
	return project + "[Project]"
}
