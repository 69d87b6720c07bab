// Package llm implements the LLM Invocation Client (spec.md §4.8): given a
// system prompt, a user prompt, and a streaming flag, it ensures the bound
// model is running, renders the prompt template, posts to the backend's
// /completion endpoint, and decodes the NDJSON response stream.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ByteBell/pyano/internal/manager"
	"github.com/ByteBell/pyano/internal/model"
	"github.com/ByteBell/pyano/internal/pyanoerr"
)

// Client is bound to one Model State and the Manager that can (re)load it.
// It is the concrete object wrapped by an Agent.
type Client struct {
	mgr       *manager.Manager
	state     *model.State
	processor postProcessor
}

// NewClient builds a Client closed over mgr and st, selecting the
// stream post-processor from st's configured model_kind.
func NewClient(mgr *manager.Manager, st *model.State) *Client {
	return &Client{
		mgr:       mgr,
		state:     st,
		processor: processorFor(st.Config.ModelConfig.ModelKind),
	}
}

type completionRequest struct {
	Prompt            string  `json:"prompt"`
	Stream            bool    `json:"stream"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	NPredict          int     `json:"n_predict"`
	RepeatPenalty     float64 `json:"repeat_penalty"`
}

// Complete ensures the bound model is Running, renders the prompt
// template with systemPrompt/userPrompt, and posts to /completion. When
// stream is true, each decoded chunk is also delivered to sink as it
// arrives; sink may be nil. It always returns the full accumulated text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, stream bool, sink func(string)) (string, error) {
	if !c.state.Status().IsRunning() {
		if err := c.mgr.Load(ctx, c.state); err != nil {
			return "", pyanoerr.NewProcessError("model %s: %v (last status %s)", c.state.Name(), err, c.state.Status())
		}
	}

	prompt, err := renderPrompt(c.state.Config.Prompt, systemPrompt, userPrompt)
	if err != nil {
		return "", err
	}

	port := c.state.Port()
	if port == nil {
		return "", pyanoerr.NewProcessError("model %s: port not configured", c.state.Name())
	}

	body := completionRequest{
		Prompt:        prompt,
		Stream:        stream,
		Temperature:   c.state.Temperature(),
		TopP:          c.state.TopP(),
		TopK:          c.state.TopK(),
		NPredict:      c.state.MaxTokens(),
		RepeatPenalty: c.state.RepetitionPenalty(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", pyanoerr.NewConfigError("marshaling completion request: %v", err)
	}

	url := fmt.Sprintf("http://%s:%d/completion", c.state.Config.Server.Host, *port)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", &pyanoerr.TransportError{Reason: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", &pyanoerr.TransportError{Reason: fmt.Sprintf("calling %s", url), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		buf := make([]byte, 4096)
		n, _ := resp.Body.Read(buf)
		return "", &pyanoerr.BackendError{Status: resp.StatusCode, Body: string(buf[:n])}
	}

	text, err := c.processor(resp.Body, sink)
	if err != nil {
		return text, &pyanoerr.TransportError{Reason: "reading completion stream", Err: err}
	}

	c.state.Touch()
	return text, nil
}
