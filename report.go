package divscan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned for an unsupported file or output format.
var ErrUnknownFormat = errors.New("unknown format")

// Reporter renders measurements. Report is called once per strategy in run
// order; Flush is called once after the last one.
type Reporter interface {
	Report(m Measurement) error
	Flush() error
}

type discardReporter struct{}

func (discardReporter) Report(Measurement) error { return nil }
func (discardReporter) Flush() error             { return nil }

// NewReporter selects a reporter by format: "text", "table" or "json".
// style only applies to "table".
func NewReporter(format string, w io.Writer, style string) (Reporter, error) {
	switch strings.ToLower(format) {
	case "", "text":
		return NewTextReporter(w), nil
	case "table":
		return NewTableReporter(w, style), nil
	case "json":
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("%w: report format %q", ErrUnknownFormat, format)
	}
}

// ============================================================================
// Text
// ============================================================================

// TextReporter writes two lines per measurement:
//
//	[*] With mutex
//	Found: 5263 elements, minimum: 0, time: 12.345 ms
type TextReporter struct {
	w io.Writer
}

// NewTextReporter returns a reporter that writes each measurement as it arrives.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{w: w}
}

func (r *TextReporter) Report(m Measurement) error {
	_, err := fmt.Fprintf(r.w, "[*] %s\nFound: %d elements, minimum: %s, time: %s\n",
		m.Strategy.Label(), m.Result.Count, formatMin(m.Result), formatMillis(m.Timing.Median))
	return err
}

func (r *TextReporter) Flush() error { return nil }

// ============================================================================
// Table
// ============================================================================

// TableReporter buffers measurements and draws one table on Flush
type TableReporter struct {
	w            io.Writer
	style        string
	measurements []Measurement
}

// NewTableReporter returns a table reporter. Unknown styles fall back to "rounded".
func NewTableReporter(w io.Writer, style string) *TableReporter {
	if _, ok := tableStyles[style]; !ok {
		style = "rounded"
	}
	return &TableReporter{w: w, style: style}
}

func (r *TableReporter) Report(m Measurement) error {
	r.measurements = append(r.measurements, m)
	return nil
}

func (r *TableReporter) Flush() error {
	if len(r.measurements) == 0 {
		return nil
	}

	var baseline *Measurement
	for i := range r.measurements {
		if r.measurements[i].Strategy == Sequential {
			baseline = &r.measurements[i]
			break
		}
	}

	headers := []string{"strategy", "threads", "count", "minimum", "median", "best", "mean", "speedup"}
	rows := make([][]string, 0, len(r.measurements))
	for _, m := range r.measurements {
		speedup := "-"
		if baseline != nil && m.Timing.Median > 0 {
			speedup = fmt.Sprintf("%.2fx", float64(baseline.Timing.Median)/float64(m.Timing.Median))
		}
		name := m.Strategy.String()
		if m.Strategy == Atomic && m.Granularity == PerElement {
			name += " (per element)"
		}
		rows = append(rows, []string{
			name,
			fmt.Sprintf("%d", m.Threads),
			fmt.Sprintf("%d", m.Result.Count),
			formatMin(m.Result),
			formatMillis(m.Timing.Median),
			formatMillis(m.Timing.Min),
			formatMillis(m.Timing.Mean),
			speedup,
		})
	}

	_, err := io.WriteString(r.w, renderTable(headers, rows, r.style))
	r.measurements = r.measurements[:0]
	return err
}

// ============================================================================
// JSON
// ============================================================================

// JSONResult holds timing results for a single strategy, in milliseconds
type JSONResult struct {
	Strategy    string    `json:"strategy"`
	Threads     int       `json:"threads"`
	Granularity string    `json:"granularity"`
	Count       int64     `json:"count"`
	Min         *int32    `json:"min"`
	Median      float64   `json:"median_ms"`
	Best        float64   `json:"min_ms"`
	Max         float64   `json:"max_ms"`
	Mean        float64   `json:"mean_ms"`
	AllTimes    []float64 `json:"all_times_ms"`
}

// JSONReport is the document written by JSONReporter
type JSONReport struct {
	Library string       `json:"library"`
	Results []JSONResult `json:"results"`
}

// JSONReporter buffers measurements and writes one JSONReport on Flush
type JSONReporter struct {
	w      io.Writer
	report JSONReport
}

// NewJSONReporter returns a reporter that writes one JSONReport on Flush.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w, report: JSONReport{Library: "divscan", Results: []JSONResult{}}}
}

func (r *JSONReporter) Report(m Measurement) error {
	res := JSONResult{
		Strategy:    m.Strategy.String(),
		Threads:     m.Threads,
		Granularity: m.Granularity.String(),
		Count:       m.Result.Count,
		Median:      millis(m.Timing.Median.Nanoseconds()),
		Best:        millis(m.Timing.Min.Nanoseconds()),
		Max:         millis(m.Timing.Max.Nanoseconds()),
		Mean:        millis(m.Timing.Mean.Nanoseconds()),
		AllTimes:    make([]float64, len(m.Timing.Runs)),
	}
	if m.Result.Found() {
		minValue := m.Result.Min
		res.Min = &minValue
	}
	for i, d := range m.Timing.Runs {
		res.AllTimes[i] = millis(d.Nanoseconds())
	}
	r.report.Results = append(r.report.Results, res)
	return nil
}

func (r *JSONReporter) Flush() error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	r.report.Results = r.report.Results[:0]
	return nil
}

func millis(ns int64) float64 {
	return float64(ns) / 1e6
}
