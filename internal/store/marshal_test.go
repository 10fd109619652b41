package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentCodec_Roundtrip(t *testing.T) {
	codec, err := newContentCodec()
	require.NoError(t, err)
	defer codec.Close()

	for _, content := range []string{`{}`, `{"a":1}`, `[1,2,3]`, `"text"`, `{"nested":{"deep":[null,true]}}`} {
		t.Run(content, func(t *testing.T) {
			blob, err := codec.marshalContent(json.RawMessage(content))
			require.NoError(t, err)

			got, err := codec.unmarshalContent(blob)
			require.NoError(t, err)
			assert.Equal(t, content, string(got))
		})
	}
}

func TestContentCodec_EmptyIsObject(t *testing.T) {
	codec, err := newContentCodec()
	require.NoError(t, err)
	defer codec.Close()

	for _, content := range []json.RawMessage{nil, json.RawMessage(""), json.RawMessage("  ")} {
		blob, err := codec.marshalContent(content)
		require.NoError(t, err)

		got, err := codec.unmarshalContent(blob)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(got))
	}
}

func TestContentCodec_Invalid(t *testing.T) {
	codec, err := newContentCodec()
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.marshalContent(json.RawMessage(`{"a":`))
	assert.Error(t, err)

	_, err = codec.unmarshalContent([]byte("not zstd"))
	assert.Error(t, err)
}

func TestMarshalTime(t *testing.T) {
	summer := time.Date(2024, 7, 1, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-07-02 00:30:00", marshalTime(summer, testLocation))

	got, err := unmarshalTime("2024-07-02 00:30:00", testLocation)
	require.NoError(t, err)
	assert.True(t, summer.Equal(got))

	_, err = unmarshalTime("02/07/2024", testLocation)
	assert.Error(t, err)
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{}, normalizeTags(nil))
	assert.Equal(t, []string{"b", "a"}, normalizeTags([]string{"b", " a", "b ", ""}))
}
