package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

func sampleRecords() []record.Record {
	return []record.Record{
		record.New("/test/file2.txt", "file2"),
		record.NewDir("/test/dir"),
		record.New("/file1.txt", "file1"),
	}
}

func TestRoundTrip(t *testing.T) {
	for _, format := range Available() {
		t.Run(format, func(t *testing.T) {
			c, err := Get(format)
			require.NoError(t, err)
			assert.Equal(t, format, c.Format())

			data, err := c.Encode(sampleRecords())
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.ElementsMatch(t, sampleRecords(), got)
		})
	}
}

func TestRoundTrip_Unframed(t *testing.T) {
	for _, c := range []Codec{Gob{}, JSON{}, YAML{}, TOML{}} {
		t.Run(c.Format(), func(t *testing.T) {
			data, err := c.Encode(sampleRecords())
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.ElementsMatch(t, sampleRecords(), got)
		})
	}
}

func TestDecode_EmptyIsValid(t *testing.T) {
	for _, format := range Available() {
		t.Run(format, func(t *testing.T) {
			c, err := Get(format)
			require.NoError(t, err)

			data, err := c.Encode(nil)
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestDecode_InvalidContent(t *testing.T) {
	inputs := map[string][]byte{
		"garbage": []byte("invalid content"),
		"empty":   {},
		"magic":   []byte("SSX1"),
	}

	for _, format := range Available() {
		c, err := Get(format)
		require.NoError(t, err)

		for name, data := range inputs {
			t.Run(format+"/"+name, func(t *testing.T) {
				_, err := c.Decode(data)
				assert.ErrorIs(t, err, ErrInvalid)
			})
		}
	}

	for _, c := range []Codec{Gob{}, JSON{}, YAML{}, TOML{}} {
		t.Run("unframed/"+c.Format(), func(t *testing.T) {
			_, err := c.Decode([]byte("invalid content"))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestDecode_ChecksumMismatch(t *testing.T) {
	c := Default()
	data, err := c.Encode(sampleRecords())
	require.NoError(t, err)

	data[len(data)-1] ^= 0xff

	_, err = c.Decode(data)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecode_UnknownFormatID(t *testing.T) {
	c := Default()
	data, err := c.Encode(sampleRecords())
	require.NoError(t, err)

	data[len(frameMagic)] = 0x7f

	_, err = c.Decode(data)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecode_CrossFormat(t *testing.T) {
	jsonCodec, err := Get("json")
	require.NoError(t, err)

	data, err := jsonCodec.Encode(sampleRecords())
	require.NoError(t, err)

	got, err := Default().Decode(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, sampleRecords(), got)
}

func TestDecode_RejectsUnsupportedVersion(t *testing.T) {
	_, err := JSON{}.Decode([]byte(`{"version": 99, "records": []}`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRoundTrip_EmptyName(t *testing.T) {
	in := []record.Record{record.New("", "h"), record.New("/a", "x")}

	for _, format := range Available() {
		t.Run(format, func(t *testing.T) {
			c, err := Get(format)
			require.NoError(t, err)

			data, err := c.Encode(in)
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.ElementsMatch(t, in, got)
		})
	}
}

func TestNonUTF8Names(t *testing.T) {
	in := []record.Record{
		record.New("/a\xff", "h1"),
		record.New("/a\xfe", "h2"),
		record.New("/b", "\xc3\x28"),
	}

	lossless := map[string]bool{"gob": true, "yaml": true}

	for _, format := range Available() {
		t.Run(format, func(t *testing.T) {
			c, err := Get(format)
			require.NoError(t, err)

			data, err := c.Encode(in)
			if !lossless[format] {
				assert.ErrorIs(t, err, ErrInvalid)
				return
			}
			require.NoError(t, err)

			got, err := c.Decode(data)
			require.NoError(t, err)
			assert.ElementsMatch(t, in, got)
		})
	}
}

func TestNonUTF8Hash_Rejected(t *testing.T) {
	for _, c := range []Codec{JSON{}, TOML{}} {
		t.Run(c.Format(), func(t *testing.T) {
			_, err := c.Encode([]record.Record{record.New("/b", "\xc3\x28")})
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestEncode_Deterministic(t *testing.T) {
	for _, format := range Available() {
		t.Run(format, func(t *testing.T) {
			c, err := Get(format)
			require.NoError(t, err)

			in := sampleRecords()
			first, err := c.Encode(in)
			require.NoError(t, err)

			reversed := []record.Record{in[2], in[1], in[0]}
			second, err := c.Encode(reversed)
			require.NoError(t, err)

			assert.Equal(t, first, second)
			assert.Equal(t, "/test/file2.txt", in[0].Name, "input must not be reordered")
		})
	}
}

func TestGet(t *testing.T) {
	c, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultFormat, c.Format())

	_, err = Get("xml")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	c, err = Get("yml")
	require.NoError(t, err)
	assert.Equal(t, "yaml", c.Format())
}

func TestFramed_Idempotent(t *testing.T) {
	once := Framed(JSON{})
	twice := Framed(once)
	assert.Equal(t, once, twice)
}
