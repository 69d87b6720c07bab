package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBell/pyano/internal/model"
	"github.com/ByteBell/pyano/internal/pyanoerr"
	"github.com/ByteBell/pyano/internal/registry"
)

func runningState(t *testing.T, host string, port int) *model.State {
	t.Helper()
	st := model.New(registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{Name: "smolTalk", ModelKind: "LLaMA"},
		Prompt: registry.PromptTemplate{
			Template: "{system_prompt}\n{user_prompt}",
		},
		Server: registry.ServerConfig{Host: host},
	}, nil)
	st.SetPort(port)
	st.SetStatus(model.Running())
	return st
}

func portOf(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	p, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return p
}

func TestComplete_PostsRenderedPromptAndDecodesStream(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 4096)
		n, _ := r.Body.Read(buf)
		gotBody = buf[:n]
		w.Write([]byte(`{"content":"he"}` + "\n" + `{"content":"llo"}` + "\n" + `{"stop":true}` + "\n"))
	}))
	defer srv.Close()

	st := runningState(t, "127.0.0.1", portOf(t, srv))
	c := &Client{state: st, processor: processorFor(st.Config.ModelConfig.ModelKind)}

	out, err := c.Complete(context.Background(), "be nice", "say hi", false, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Contains(t, string(gotBody), "be nice")
	assert.Contains(t, string(gotBody), "say hi")
}

func TestComplete_TouchesLastUsedOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":"ok","stop":true}` + "\n"))
	}))
	defer srv.Close()

	st := runningState(t, "127.0.0.1", portOf(t, srv))
	before := st.LastUsed()
	c := &Client{state: st, processor: processorFor(st.Config.ModelConfig.ModelKind)}

	_, err := c.Complete(context.Background(), "be nice", "say hi", false, nil)
	require.NoError(t, err)
	assert.False(t, st.LastUsed().Before(before))
}

func TestComplete_NonTwoXXIsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := runningState(t, "127.0.0.1", portOf(t, srv))
	c := &Client{state: st, processor: processorFor(st.Config.ModelConfig.ModelKind)}

	_, err := c.Complete(context.Background(), "be nice", "say hi", false, nil)
	require.Error(t, err)
	var backendErr *pyanoerr.BackendError
	assert.ErrorAs(t, err, &backendErr)
}

func TestComplete_MissingPortIsProcessError(t *testing.T) {
	st := model.New(registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{Name: "smolTalk", ModelKind: "LLaMA"},
		Prompt:      registry.PromptTemplate{Template: "{system_prompt}{user_prompt}"},
	}, nil)
	st.SetStatus(model.Running())
	c := &Client{state: st, processor: processorFor(st.Config.ModelConfig.ModelKind)}

	_, err := c.Complete(context.Background(), "sys", "usr", false, nil)
	require.Error(t, err)
	var procErr *pyanoerr.ProcessError
	assert.ErrorAs(t, err, &procErr)
}
