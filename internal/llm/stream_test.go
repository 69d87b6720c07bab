package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLlamaCppStream_AccumulatesAndEmitsChunks(t *testing.T) {
	body := `{"content":"hel"}` + "\n" + `{"content":"lo"}` + "\n" + `{"stop":true}` + "\n"

	var chunks []string
	full, err := decodeLlamaCppStream(strings.NewReader(body), func(c string) {
		chunks = append(chunks, c)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", full)
	assert.Equal(t, []string{"hel", "lo"}, chunks)
}

func TestDecodeLlamaCppStream_SkipsMalformedLines(t *testing.T) {
	body := `{"content":"ok"}` + "\n" + `not json at all` + "\n" + `{"content":"!"}` + "\n"

	full, err := decodeLlamaCppStream(strings.NewReader(body), nil)
	require.NoError(t, err)
	assert.Equal(t, "ok!", full)
}

func TestProcessorFor_DefaultsToLlamaCppDecoder(t *testing.T) {
	for _, kind := range []string{"LLaMA", "Qwen", "SomethingUnknown"} {
		p := processorFor(kind)
		full, err := p(strings.NewReader(`{"content":"x"}`+"\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, "x", full)
	}
}
