package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// Gob encodes the document with encoding/gob.
type Gob struct{}

// Format implements Codec.
func (Gob) Format() string { return "gob" }

// Encode implements Codec.
func (Gob) Encode(records []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(newDocument(records)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (Gob) Decode(data []byte) ([]record.Record, error) {
	var doc document
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return doc.validate()
}

// JSON encodes the document as indented JSON. Names and hashes must be
// valid UTF-8.
type JSON struct{}

// Format implements Codec.
func (JSON) Format() string { return "json" }

// Encode implements Codec.
func (JSON) Encode(records []record.Record) ([]byte, error) {
	if err := requireUTF8("json", records); err != nil {
		return nil, err
	}
	return json.MarshalIndent(newDocument(records), "", "  ")
}

// Decode implements Codec.
func (JSON) Decode(data []byte) ([]record.Record, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return doc.validate()
}

// YAML encodes the document with gopkg.in/yaml.v3. Non-UTF-8 strings are
// written as !!binary and read back unchanged.
type YAML struct{}

// Format implements Codec.
func (YAML) Format() string { return "yaml" }

// Encode implements Codec.
func (YAML) Encode(records []record.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(newDocument(records)); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (YAML) Decode(data []byte) ([]record.Record, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return doc.validate()
}

// TOML encodes the document with github.com/BurntSushi/toml. Names and
// hashes must be valid UTF-8.
type TOML struct{}

// Format implements Codec.
func (TOML) Format() string { return "toml" }

// Encode implements Codec.
func (TOML) Encode(records []record.Record) ([]byte, error) {
	if err := requireUTF8("toml", records); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(newDocument(records)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements Codec.
func (TOML) Decode(data []byte) ([]record.Record, error) {
	var doc document
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalid, undecoded)
	}
	return doc.validate()
}

// Ensure every format implements Codec.
var (
	_ Codec = Gob{}
	_ Codec = JSON{}
	_ Codec = YAML{}
	_ Codec = TOML{}
)
