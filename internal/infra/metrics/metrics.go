package metrics

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhruv-ramu/FragmentFusion/internal/domain"
	"github.com/dhruv-ramu/FragmentFusion/internal/ports"
)

const namespace = "fragfusion"

// Collector owns a private registry with the project's metrics.
type Collector struct {
	reg *prometheus.Registry

	files       *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	failedFiles *prometheus.GaugeVec
	samples     prometheus.Gauge
	qcFailed    *prometheus.GaugeVec
}

var (
	_ ports.DownloadMetrics = (*Collector)(nil)
	_ ports.QCMetrics       = (*Collector)(nil)
)

func NewCollector() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_files_total",
			Help:      "Archive files processed, by source and result.",
		}, []string{"source", "result"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes of validated archive files.",
		}, []string{"source"}),
		failedFiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "project_failed_files",
			Help:      "Failed files in the latest download of a project.",
		}, []string{"source", "project"}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "samples",
			Help:      "Samples in the current sample list.",
		}),
		qcFailed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "qc_check_failed",
			Help:      "1 when the latest evaluation of a QC check failed.",
		}, []string{"check"}),
	}
	c.reg.MustRegister(c.files, c.bytes, c.failedFiles, c.samples, c.qcFailed)
	return c
}

func (c *Collector) ObserveFile(source domain.Source, ok bool, bytes int64) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.files.WithLabelValues(string(source), result).Inc()
	if ok && bytes > 0 {
		c.bytes.WithLabelValues(string(source)).Add(float64(bytes))
	}
}

func (c *Collector) ObserveSummary(s domain.DownloadSummary) {
	c.failedFiles.WithLabelValues(string(s.Source), s.ProjectAccession).Set(float64(s.FailedFiles + s.FailedRuns))
}

func (c *Collector) SetSamples(n int) {
	c.samples.Set(float64(n))
}

func (c *Collector) ObserveQC(r domain.QCReport) {
	for _, check := range r.Checks {
		v := 0.0
		if check.Failed() {
			v = 1
		}
		c.qcFailed.WithLabelValues(check.Name).Set(v)
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// Gatherer exposes the registry for tests and textfile export.
func (c *Collector) Gatherer() prometheus.Gatherer { return c.reg }

// WriteTextfile writes the registry for node_exporter's textfile collector.
// An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &domain.OpError{Op: "metrics.textfile", Kind: domain.KindExecution, Path: path, Err: err}
	}
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return &domain.OpError{Op: "metrics.textfile", Kind: domain.KindExecution, Path: path, Err: err}
	}
	return nil
}
