package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/jamesainslie/syncstate/pkg/syncstate/record"
)

// Frame layout: magic, format id, xxh3 checksum of the payload, payload.
const (
	frameMagic     = "SSX1"
	frameHeaderLen = len(frameMagic) + 1 + 8
)

// framed wraps a payload codec with a checksummed header.
type framed struct {
	inner Codec
}

// Framed returns a codec that prefixes the inner codec's payload with a
// header identifying the format and an xxh3 checksum. Decode accepts a
// payload written by any registered format, so changing the configured
// format does not orphan an existing snapshot.
func Framed(inner Codec) Codec {
	if f, ok := inner.(framed); ok {
		return f
	}
	return framed{inner: inner}
}

// Format implements Codec.
func (f framed) Format() string { return f.inner.Format() }

// Encode implements Codec.
func (f framed) Encode(records []record.Record) ([]byte, error) {
	id, ok := formatIDs[f.inner.Format()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f.inner.Format())
	}

	payload, err := f.inner.Encode(records)
	if err != nil {
		return nil, err
	}

	out := make([]byte, frameHeaderLen, frameHeaderLen+len(payload))
	copy(out, frameMagic)
	out[len(frameMagic)] = id
	binary.BigEndian.PutUint64(out[len(frameMagic)+1:], xxh3.Hash(payload))
	return append(out, payload...), nil
}

// Decode implements Codec.
func (f framed) Decode(data []byte) ([]record.Record, error) {
	if len(data) < frameHeaderLen || string(data[:len(frameMagic)]) != frameMagic {
		return nil, fmt.Errorf("%w: missing frame header", ErrInvalid)
	}

	inner, err := innerFor(data[len(frameMagic)])
	if err != nil {
		return nil, err
	}

	payload := data[frameHeaderLen:]
	want := binary.BigEndian.Uint64(data[len(frameMagic)+1 : frameHeaderLen])
	if got := xxh3.Hash(payload); got != want {
		return nil, fmt.Errorf("%w: checksum mismatch (got %016x, want %016x)", ErrInvalid, got, want)
	}

	return inner.Decode(payload)
}

// innerFor resolves a frame format id to its payload codec.
func innerFor(id byte) (Codec, error) {
	for name, fid := range formatIDs {
		if fid == id {
			return raw(name)
		}
	}
	return nil, fmt.Errorf("%w: unknown format id %d", ErrInvalid, id)
}

// Ensure framed implements Codec.
var _ Codec = framed{}
