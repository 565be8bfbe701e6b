package replay

import (
	"bufio"
	"bytes"
	_ "embed"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
	"github.com/rotisserie/eris"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed header.schema.json
var headerSchemaJSON string

var headerSchema = jsonschema.MustCompileString("header.schema.json", headerSchemaJSON)

// Write encodes a bundle as a zstd stream: one JSON header line, then the
// JSON body.
func Write(w io.Writer, b *Bundle) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return eris.Wrap(err, "zstd writer")
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, err := json.Marshal(b.Header)
	if err != nil {
		_ = enc.Close()
		return eris.Wrap(err, "encode header")
	}
	if _, err := bw.Write(append(hb, '\n')); err != nil {
		_ = enc.Close()
		return eris.Wrap(err, "write header")
	}
	if err := json.NewEncoder(bw).Encode(b); err != nil {
		_ = enc.Close()
		return eris.Wrap(err, "encode bundle")
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return eris.Wrap(err, "flush bundle")
	}
	return eris.Wrap(enc.Close(), "close zstd stream")
}

func WriteFile(path string, b *Bundle) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "mkdir for %s", path)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	if err := Write(f, b); err != nil {
		_ = f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "close %s", path)
}

// ReadHeader decodes and validates only the header line.
func ReadHeader(r io.Reader) (Header, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, eris.Wrap(err, "zstd reader")
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, eris.Wrap(err, "read header line")
	}
	var doc any
	if err := json.Unmarshal(line, &doc); err != nil {
		return h, eris.Wrap(err, "decode header")
	}
	if err := headerSchema.Validate(doc); err != nil {
		return h, eris.Wrap(err, "invalid header")
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, eris.Wrap(err, "decode header")
	}
	if h.Version != Version {
		return h, eris.Errorf("unsupported bundle version %d", h.Version)
	}
	return h, nil
}

func Read(r io.Reader) (*Bundle, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, eris.Wrap(err, "zstd reader")
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 256*1024)

	h, err := readHeader(br)
	if err != nil {
		return nil, err
	}
	var b Bundle
	if err := json.NewDecoder(br).Decode(&b); err != nil {
		return nil, eris.Wrap(err, "decode bundle")
	}
	if b.Header != h {
		return nil, eris.Errorf("header line %+v disagrees with body %+v", h, b.Header)
	}
	if len(b.Ticks) != h.Ticks {
		return nil, eris.Errorf("header promises %d ticks, body has %d", h.Ticks, len(b.Ticks))
	}
	if err := b.Config.Validate(); err != nil {
		return nil, eris.Wrap(err, "bundle config")
	}
	return &b, nil
}

func ReadFile(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	b, err := Read(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrapf(err, "bundle %s", path)
	}
	return b, nil
}
