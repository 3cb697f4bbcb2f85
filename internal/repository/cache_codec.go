package repo

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// entryCodec serializes cache payloads as JSON, optionally zstd-compressed.
// Compressed payloads are recognized on read whatever the current setting.
type entryCodec struct {
	compress bool
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

func newEntryCodec(compress bool) (*entryCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &entryCodec{compress: compress, enc: enc, dec: dec}, nil
}

func (c *entryCodec) encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if !c.compress {
		return data, nil
	}
	return c.enc.EncodeAll(data, nil), nil
}

func (c *entryCodec) decode(data []byte, v interface{}) error {
	if bytes.HasPrefix(data, zstdMagic) {
		plain, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return fmt.Errorf("decompress: %w", err)
		}
		data = plain
	}
	return json.Unmarshal(data, v)
}
