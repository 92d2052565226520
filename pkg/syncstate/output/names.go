package output

import "bytes"

// NamesFormatter writes one record name per line, for piping.
type NamesFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NamesFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, rec := range r.Records {
		w.WriteString(rec.Name)
		w.WriteByte('\n')
	}
	return nil
}

// NullFormatter writes record names separated by NUL bytes, for xargs -0.
type NullFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *NullFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, rec := range r.Records {
		w.WriteString(rec.Name)
		w.WriteByte(0)
	}
	return nil
}

func init() {
	Register("names", func() Formatter {
		return &NamesFormatter{}
	})
	Register("null", func() Formatter {
		return &NullFormatter{}
	})
}

var (
	_ Formatter = (*NamesFormatter)(nil)
	_ Formatter = (*NullFormatter)(nil)
)
