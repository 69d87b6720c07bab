package llm

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/ByteBell/pyano/internal/logging"
)

// streamEvent is one NDJSON line from a llama.cpp-family /completion
// response: either a content chunk or a terminal stop marker.
type streamEvent struct {
	Content string `json:"content"`
	Stop    bool   `json:"stop"`
}

// postProcessor turns a raw NDJSON byte stream into ordered text chunks
// delivered to sink. Chosen per model_kind (spec.md §4.6 "Stream processor
// selection").
type postProcessor func(r io.Reader, sink func(string)) (string, error)

// processorFor is the static dispatch table keyed by model_kind: "LLaMA"
// and "Qwen" share the llamacpp-style NDJSON decoder since both backends
// speak the same /completion wire protocol; anything unrecognized falls
// back to the same default (spec.md §4.6).
func processorFor(modelKind string) postProcessor {
	switch modelKind {
	case "LLaMA":
		return decodeLlamaCppStream
	case "Qwen":
		return decodeLlamaCppStream
	default:
		return decodeLlamaCppStream
	}
}

// decodeLlamaCppStream reads newline-delimited JSON events of the form
// {"content": "..."} / {"stop": true}, emitting each content chunk to sink
// as it arrives and accumulating the full decoded text. A malformed line
// is logged and skipped rather than aborting the stream (spec.md §4.8:
// "malformed stream event ⇒ skipped with a warning, not fatal").
func decodeLlamaCppStream(r io.Reader, sink func(string)) (string, error) {
	var full strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var ev streamEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			logging.WithField("llm", "error", err).Warnf("skipping malformed stream event: %s", line)
			continue
		}

		if ev.Content != "" {
			full.WriteString(ev.Content)
			if sink != nil {
				sink(ev.Content)
			}
		}
		if ev.Stop {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return full.String(), err
	}
	return full.String(), nil
}
