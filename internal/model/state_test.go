package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByteBell/pyano/internal/registry"
)

func baseConfig() registry.ModelConfig {
	port := 5010
	return registry.ModelConfig{
		ModelConfig: registry.ModelSpecificConfig{Name: "smolTalk", ModelKind: "LLaMA"},
		Defaults: registry.Defaults{
			Temperature: 0.7, TopP: 0.9, TopK: 40, MaxTokens: 512, RepetitionPenalty: 1.1,
		},
		Server: registry.ServerConfig{Port: &port},
	}
}

func TestNew_InitializesFromDefaults(t *testing.T) {
	st := New(baseConfig(), nil)
	assert.Equal(t, 0.7, st.Temperature())
	assert.Equal(t, 40, st.TopK())
	require.NotNil(t, st.Port())
	assert.Equal(t, 5010, *st.Port())
	assert.False(t, st.Status().IsRunning())
}

func TestNew_OverlaysOptions(t *testing.T) {
	temp := 0.2
	port := 9090
	st := New(baseConfig(), &CallOptions{Temperature: &temp, Port: &port})
	assert.Equal(t, 0.2, st.Temperature())
	assert.Equal(t, 9090, *st.Port())
	// fields not present in opts keep the config defaults
	assert.Equal(t, 40, st.TopK())
}

func TestPort_ReturnsCopyNotAlias(t *testing.T) {
	st := New(baseConfig(), nil)
	p := st.Port()
	*p = 1234
	assert.Equal(t, 5010, *st.Port(), "mutating the returned pointer must not affect state")
}

func TestCell_ConcurrentAccessDoesNotRace(t *testing.T) {
	st := New(baseConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); st.SetTemperature(0.5) }()
		go func() { defer wg.Done(); _ = st.Temperature() }()
	}
	wg.Wait()
}

func TestTouch_UpdatesLastUsed(t *testing.T) {
	st := New(baseConfig(), nil)
	before := st.LastUsed()
	st.Touch()
	assert.False(t, st.LastUsed().Before(before))
}
