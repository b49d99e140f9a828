// Package metrics accumulates run-outcome samples and flushes them once, at
// process end, as a node-exporter textfile-collector file. The sink is
// write-only and best-effort: a failed flush never changes the run's exit
// status.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// promFile is the exposition file name inside the textfile-collector
// directory.
const promFile = "boreas.prom"

// descriptions is the fixed whitelist of exported metric names. Samples
// added under any other name are silently dropped at flush time.
var descriptions = map[string]string{
	"report_time":       "boreas.prom write time",
	"status":            "boreas exit status",
	"days_written":      "number of days written",
	"yesterday":         "yesterday's date",
	"first_day":         "first day checked",
	"samples_yesterday": "number of weather samples for yesterday",
}

// sample is one recorded name/value/labels triple.
type sample struct {
	name   string
	value  float64
	labels map[string]string
}

// Accumulator collects samples over a run. It is constructed at run start
// and passed explicitly wherever metrics are produced; there is no package
// state.
type Accumulator struct {
	samples []sample
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add records a sample with no labels.
func (a *Accumulator) Add(name string, value float64) {
	a.samples = append(a.samples, sample{name: name, value: value})
}

// AddLabeled records a sample with a label set.
func (a *Accumulator) AddLabeled(name string, value float64, labels map[string]string) {
	a.samples = append(a.samples, sample{name: name, value: value, labels: labels})
}

// Flush writes the accumulated samples to <dir>/boreas.prom, appending the
// exit status and the report time. The file is written next to its final
// location and renamed into place; on error the partial temp file is
// removed. An empty dir skips the write entirely.
func (a *Accumulator) Flush(dir string, status int) error {
	if dir == "" {
		return nil
	}

	a.Add("status", float64(status))
	a.Add("report_time", float64(time.Now().UTC().Unix()))

	reg := prometheus.NewRegistry()
	gauges := make(map[string]*prometheus.GaugeVec)

	for _, s := range a.samples {
		help, ok := descriptions[s.name]
		if !ok {
			continue
		}

		g, ok := gauges[s.name]
		if !ok {
			g = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "boreas",
				Name:      s.name,
				Help:      help,
			}, labelNames(s.labels))
			if err := reg.Register(g); err != nil {
				return fmt.Errorf("registering metric %s: %w", s.name, err)
			}
			gauges[s.name] = g
		}
		g.With(prometheus.Labels(s.labels)).Set(s.value)
	}

	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	path := filepath.Join(dir, promFile)
	tmp := path + ".new"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating %s: %w", tmp, err)
	}

	enc := expfmt.NewEncoder(f, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			f.Close()
			os.Remove(tmp)
			return fmt.Errorf("encoding metrics: %w", err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
