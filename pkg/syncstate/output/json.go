package output

import (
	"bytes"
	"encoding/json"
)

// document is the JSON and YAML output structure.
type document struct {
	Records  []Record `json:"records" yaml:"records"`
	Snapshot Snapshot `json:"snapshot" yaml:"snapshot"`
	Summary  summary  `json:"summary" yaml:"summary"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

type summary struct {
	Shown int `json:"shown" yaml:"shown"`
	Dirs  int `json:"dirs" yaml:"dirs"`
	Files int `json:"files" yaml:"files"`
	Total int `json:"total" yaml:"total"`
}

// buildDocument converts a Result to its structured form.
func buildDocument(r *Result) document {
	records := r.Records
	if records == nil {
		records = []Record{}
	}
	return document{
		Records:  records,
		Snapshot: r.Snapshot,
		Summary: summary{
			Shown: len(r.Records),
			Dirs:  r.Dirs(),
			Files: r.Files(),
			Total: r.Total,
		},
		Warnings: r.Warnings,
	}
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildDocument(r))
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)

// JSONLFormatter writes one compact JSON object per record.
type JSONLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONLFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, rec := range r.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	return nil
}

func init() {
	Register("jsonl", func() Formatter {
		return &JSONLFormatter{}
	})
}

// Ensure JSONLFormatter implements Formatter.
var _ Formatter = (*JSONLFormatter)(nil)
