package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

func sampleResult() *Result {
	r := NewResult([]record.File{
		record.NewDir("/docs"),
		record.New("/docs/a|b.txt", "0123456789abcdef"),
		record.New("/readme.md", "ff00"),
	})
	r.Snapshot = Snapshot{
		Name:    "sync-file.data",
		Backend: "badger",
		Path:    "/var/lib/syncstate",
		Size:    2048,
		ModTime: time.Now().Add(-time.Hour),
	}
	return r
}

func format(t *testing.T, name string, r *Result) string {
	t.Helper()
	f, err := Get(name)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	return buf.String()
}

func TestRegistry_Available(t *testing.T) {
	names := Available()
	for _, want := range []string{"csv", "json", "jsonl", "markdown", "names", "null", "plain", "pretty", "template", "tsv", "yaml"} {
		assert.Contains(t, names, want)
	}
	assert.IsIncreasing(t, names)
}

func TestRegistry_Unknown(t *testing.T) {
	_, err := Get("xml")
	assert.Error(t, err)
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register("x", func() Formatter { return &NamesFormatter{} })

	f, err := reg.Get("x")
	require.NoError(t, err)
	assert.IsType(t, &NamesFormatter{}, f)
	assert.Equal(t, []string{"x"}, reg.Available())
}

func TestNewResult(t *testing.T) {
	r := sampleResult()
	assert.Equal(t, 3, r.Total)
	assert.Equal(t, 1, r.Dirs())
	assert.Equal(t, 2, r.Files())
	assert.Equal(t, Record{Name: "/docs", Kind: KindDir}, r.Records[0])
}

func TestPrettyFormatter(t *testing.T) {
	out := format(t, "pretty", sampleResult())

	assert.Contains(t, out, "sync-file.data")
	assert.Contains(t, out, "badger")
	assert.Contains(t, out, "2.0 KiB")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "/docs/")
	assert.Contains(t, out, "/readme.md")
	assert.Contains(t, out, "0123456789a…")
}

func TestPrettyFormatter_Empty(t *testing.T) {
	r := NewResult(nil)
	r.Snapshot.Name = "s"
	r.Warnings = []string{"store is read-only"}

	out := format(t, "pretty", r)
	assert.Contains(t, out, "No records")
	assert.Contains(t, out, "not written yet")
	assert.Contains(t, out, "store is read-only")
}

func TestPlainFormatter(t *testing.T) {
	out := format(t, "plain", sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, []string{"KIND", "HASH", "NAME"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"dir", "-", "/docs"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"file", "ff00", "/readme.md"}, strings.Fields(lines[3]))
}

func TestJSONFormatter(t *testing.T) {
	r := sampleResult()
	r.Total = 10

	var doc document
	require.NoError(t, json.Unmarshal([]byte(format(t, "json", r)), &doc))

	assert.Equal(t, r.Records, doc.Records)
	assert.Equal(t, "badger", doc.Snapshot.Backend)
	assert.Equal(t, summary{Shown: 3, Dirs: 1, Files: 2, Total: 10}, doc.Summary)
}

func TestJSONFormatter_EmptyRecordsIsArray(t *testing.T) {
	out := format(t, "json", &Result{})
	assert.Contains(t, out, `"records": []`)
}

func TestJSONFormatter_OmitsUnwrittenSnapshotTime(t *testing.T) {
	r := sampleResult()
	r.Snapshot.ModTime = time.Time{}

	out := format(t, "json", r)
	assert.NotContains(t, out, "mod_time")
	assert.NotContains(t, out, "0001-01-01")

	assert.Contains(t, format(t, "json", sampleResult()), `"mod_time"`)
}

func TestJSONLFormatter(t *testing.T) {
	out := format(t, "jsonl", sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)

	var rec Record
	require.NoError(t, json.Unmarshal([]byte(lines[2]), &rec))
	assert.Equal(t, Record{Name: "/readme.md", Hash: "ff00", Kind: KindFile}, rec)
}

func TestYAMLFormatter(t *testing.T) {
	var doc document
	require.NoError(t, yaml.Unmarshal([]byte(format(t, "yaml", sampleResult())), &doc))

	assert.Len(t, doc.Records, 3)
	assert.Equal(t, "sync-file.data", doc.Snapshot.Name)
	assert.Equal(t, 1, doc.Summary.Dirs)
}

func TestTSVFormatter(t *testing.T) {
	out := format(t, "tsv", sampleResult())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	require.Len(t, lines, 4)
	assert.Equal(t, "KIND\tHASH\tNAME", lines[0])
	assert.Equal(t, "dir\t\t/docs", lines[1])
}

func TestCSVFormatter(t *testing.T) {
	rows, err := csv.NewReader(strings.NewReader(format(t, "csv", sampleResult()))).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, []string{"file", "0123456789abcdef", "/docs/a|b.txt"}, rows[2])
}

func TestMarkdownFormatter(t *testing.T) {
	out := format(t, "markdown", sampleResult())

	assert.True(t, strings.HasPrefix(out, "| KIND | HASH | NAME |\n|------|------|------|\n"))
	assert.Contains(t, out, `| file | 0123456789abcdef | /docs/a\|b.txt |`)
}

func TestNamesFormatters(t *testing.T) {
	r := sampleResult()

	assert.Equal(t, "/docs\n/docs/a|b.txt\n/readme.md\n", format(t, "names", r))
	assert.Equal(t, "/docs\x00/docs/a|b.txt\x00/readme.md\x00", format(t, "null", r))
}

func TestTemplateFormatter(t *testing.T) {
	assert.Equal(t, "dir\t/docs\nfile\t/docs/a|b.txt\nfile\t/readme.md\n", format(t, "template", sampleResult()))

	f := NewTemplateFormatter(`{{.Snapshot.Name}} {{bytes .Snapshot.Size}} {{.Dirs}}/{{.Files}}`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, "sync-file.data 2.0 KiB 1/2", buf.String())

	f.SetTemplate(`{{.Nope`)
	assert.Error(t, f.Format(&buf, sampleResult()))
}
