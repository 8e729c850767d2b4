// Package samplestore archives sampled arrays in a SQLite database so that
// later builds can check they still reproduce them bit for bit.
package samplestore

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/MeKo-Tech/noiseparams/internal/ndarray"
)

// Metadata describes a sample archive.
type Metadata struct {
	Name        string    // Human-readable archive name
	Description string    // Free-form description
	Version     string    // Version of the tool that recorded the archive
	Created     time.Time // Recording time
}

// ToMap converts Metadata to a map for database insertion.
func (m Metadata) ToMap() map[string]string {
	result := make(map[string]string)

	if m.Name != "" {
		result["name"] = m.Name
	}
	if m.Description != "" {
		result["description"] = m.Description
	}
	if m.Version != "" {
		result["version"] = m.Version
	}
	if !m.Created.IsZero() {
		result["created"] = strconv.FormatInt(m.Created.Unix(), 10)
	}

	return result
}

func metadataFromMap(values map[string]string) Metadata {
	meta := Metadata{
		Name:        values["name"],
		Description: values["description"],
		Version:     values["version"],
	}
	if v, ok := values["created"]; ok {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil {
			meta.Created = time.Unix(sec, 0).UTC()
		}
	}
	return meta
}

// Record is one recorded sampling: the parameter name and rendering, the
// seed and the resulting array.
type Record struct {
	Name   string
	Param  string
	Seed   int64
	Sample *ndarray.Array
}

// Key identifies a record.
type Key struct {
	Name  string
	Seed  int64
	Shape string // ndarray.FormatShape of the sample
}

func (k Key) String() string {
	return fmt.Sprintf("%s seed=%d shape=%s", k.Name, k.Seed, k.Shape)
}

// Entry describes a stored record without its data.
type Entry struct {
	Key
	Param string
}

const (
	kindFloat  = "f64"
	kindString = "str"
)

// encodeSample serialises an array: floats as little-endian IEEE-754 bits,
// strings as a JSON list. The result is gzip-compressed.
func encodeSample(arr *ndarray.Array) (kind string, data []byte, err error) {
	var raw []byte
	if arr.IsString() {
		kind = kindString
		if raw, err = json.Marshal(arr.Strings()); err != nil {
			return "", nil, err
		}
	} else {
		kind = kindFloat
		raw = make([]byte, 8*arr.Size())
		for i, v := range arr.Floats() {
			binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
		}
	}
	data, err = gzipCompress(raw)
	return kind, data, err
}

func decodeSample(kind string, shape []int, data []byte) (*ndarray.Array, error) {
	raw, err := gzipDecompress(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress sample: %w", err)
	}
	switch kind {
	case kindString:
		var strs []string
		if err := json.Unmarshal(raw, &strs); err != nil {
			return nil, fmt.Errorf("failed to decode string sample: %w", err)
		}
		return ndarray.FromStrings(shape, strs)
	case kindFloat:
		if len(raw)%8 != 0 {
			return nil, fmt.Errorf("float sample has %d bytes, not a multiple of 8", len(raw))
		}
		values := make([]float64, len(raw)/8)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
		return ndarray.FromFloats(shape, values)
	}
	return nil, fmt.Errorf("unknown sample kind %q", kind)
}

// gzipCompress compresses data with gzip.
func gzipCompress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)

	if _, err := gw.Write(data); err != nil {
		gw.Close()
		return nil, err
	}

	if err := gw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// gzipDecompress decompresses gzip data.
func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	return io.ReadAll(gr)
}
