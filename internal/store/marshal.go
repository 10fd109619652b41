package store

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/roach88/telescope/internal/datefmt"
)

// contentCodec compresses entry content for the content BLOB column.
// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
type contentCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newContentCodec() (*contentCodec, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &contentCodec{encoder: enc, decoder: dec}, nil
}

// marshalContent validates content as JSON and compresses it.
// Empty content is stored as an empty object.
func (c *contentCodec) marshalContent(content json.RawMessage) ([]byte, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		content = json.RawMessage("{}")
	}
	if !json.Valid(content) {
		return nil, fmt.Errorf("marshal content: invalid JSON")
	}
	return c.encoder.EncodeAll(content, nil), nil
}

// unmarshalContent decompresses a stored content blob.
func (c *contentCodec) unmarshalContent(blob []byte) (json.RawMessage, error) {
	data, err := c.decoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}
	return json.RawMessage(data), nil
}

func (c *contentCodec) Close() {
	c.encoder.Close()
	c.decoder.Close()
}

// marshalTime renders t as stored created_at text in loc. Text in this
// layout orders the same way the times do.
func marshalTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(datefmt.TimestampLayout)
}

// unmarshalTime parses stored created_at text in loc.
func unmarshalTime(text string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(datefmt.TimestampLayout, text, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unmarshal created_at: %w", err)
	}
	return t, nil
}

// normalizeTags trims tags, drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
