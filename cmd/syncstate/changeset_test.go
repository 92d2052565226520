package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

func TestParseChangeSet(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		data    string
		want    changeSet
		wantErr bool
	}{
		{
			name:   "yaml",
			source: "changes.yaml",
			data:   changesYAML + "removed: [/old]\n",
			want: changeSet{
				Created: []record.Record{record.NewDir("/docs"), record.New("/docs/a.txt", "aaa1"), record.New("/b.txt", "bbb1")},
				Removed: []string{"/old"},
			},
		},
		{
			name:   "json by extension",
			source: "changes.json",
			data:   `{"updated": [{"name": "/a", "hash": "2"}]}`,
			want:   changeSet{Updated: []record.Record{record.New("/a", "2")}},
		},
		{
			name:   "json on stdin",
			source: "-",
			data:   ` {"removed": ["/a"]}`,
			want:   changeSet{Removed: []string{"/a"}},
		},
		{name: "empty input", source: "-", data: "  \n", want: changeSet{}},
		{name: "unknown yaml field", source: "-", data: "deleted: [/a]\n", wantErr: true},
		{name: "unknown json field", source: "x.json", data: `{"created": [{"path": "/a"}]}`, wantErr: true},
		{name: "nameless record", source: "-", data: "created:\n  - {hash: abc}\n", wantErr: true},
		{name: "empty removal", source: "-", data: "removed: ['']\n", wantErr: true},
		{name: "malformed", source: "-", data: "created: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseChangeSet([]byte(tt.data), tt.source)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidChangeSet)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestChangeSet_Files(t *testing.T) {
	cs, err := parseChangeSet([]byte(changesYAML+"removed: [/old]\n"), "-")
	require.NoError(t, err)

	assert.False(t, cs.Empty())
	assert.Equal(t, []string{"/docs", "/docs/a.txt", "/b.txt"}, record.Names(cs.created()))
	assert.Empty(t, cs.updated())
	assert.Equal(t, []string{"/old"}, record.Names(cs.removed()))
}

func TestReadNames(t *testing.T) {
	names, err := readNames(strings.NewReader("/a\r\n\n  \n/b c\n/d"))
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b c", "/d"}, names)
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", truncateString("short", 10))
	assert.Equal(t, "abcdefg...", truncateString("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", truncateString("abcdef", 2))
}
