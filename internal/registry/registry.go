package registry

import (
	"encoding/json"
	"os"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ByteBell/pyano/internal/envcfg"
	"github.com/ByteBell/pyano/internal/logging"
	"github.com/ByteBell/pyano/internal/pyanoerr"
)

// Registry is the read-only-after-construction mapping from model name to
// ModelConfig (spec.md §3 Invariant: "Registry: immutable after
// construction; no synchronization needed.").
type Registry struct {
	configs map[string]ModelConfig
}

// New scans MODEL_CONFIG_DIR for *.json documents and builds the registry.
// Failures during directory scan or parse abort startup — configs are
// trusted inputs (spec.md §4.1).
func New() (*Registry, error) {
	return Load(envcfg.ModelConfigDir())
}

// Load is New with an explicit config directory, used by tests and by
// callers that don't want to rely on MODEL_CONFIG_DIR.
func Load(dir string) (*Registry, error) {
	log := logging.WithField("registry", "dir", dir)
	log.Debug("loading model configurations")

	matches, err := doublestar.Glob(os.DirFS(dir), "**/*.json")
	if err != nil {
		return nil, pyanoerr.NewConfigError("scanning config dir %q: %v", dir, err)
	}

	configs := make(map[string]ModelConfig, len(matches))
	for _, rel := range matches {
		path := dir + "/" + rel
		cfg, err := parseConfigFile(path)
		if err != nil {
			return nil, err
		}
		log.WithField("model", cfg.Name()).Debug("loaded model configuration")
		configs[cfg.Name()] = cfg
	}

	log.Infof("loaded %d model configuration(s)", len(configs))
	return &Registry{configs: configs}, nil
}

func parseConfigFile(path string) (ModelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, pyanoerr.NewConfigError("reading config file %q: %v", path, err)
	}

	var raw struct {
		ModelConfig  *ModelSpecificConfig `json:"model_config"`
		MemoryConfig *MemoryConfig        `json:"memory_config"`
		Prompt       *PromptTemplate      `json:"prompt_template"`
		Defaults     *Defaults            `json:"defaults"`
		Server       *ServerConfig        `json:"server_config"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ModelConfig{}, pyanoerr.NewConfigError("parsing config file %q: %v", path, err)
	}

	missing := make([]string, 0, 5)
	if raw.ModelConfig == nil {
		missing = append(missing, "model_config")
	}
	if raw.MemoryConfig == nil {
		missing = append(missing, "memory_config")
	}
	if raw.Prompt == nil {
		missing = append(missing, "prompt_template")
	}
	if raw.Defaults == nil {
		missing = append(missing, "defaults")
	}
	if raw.Server == nil {
		missing = append(missing, "server_config")
	}
	if len(missing) > 0 {
		return ModelConfig{}, pyanoerr.NewConfigError("%q: missing required section(s): %v", path, missing)
	}
	if raw.ModelConfig.Name == "" {
		return ModelConfig{}, pyanoerr.NewConfigError("%q: model_config.name is required", path)
	}

	return ModelConfig{
		ModelConfig:  *raw.ModelConfig,
		MemoryConfig: *raw.MemoryConfig,
		Prompt:       *raw.Prompt,
		Defaults:     *raw.Defaults,
		Server:       *raw.Server,
	}, nil
}

// Get returns the config for name, if present.
func (r *Registry) Get(name string) (ModelConfig, bool) {
	c, ok := r.configs[name]
	return c, ok
}

// All returns every registered config. The order is unspecified.
func (r *Registry) All() []ModelConfig {
	out := make([]ModelConfig, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, c)
	}
	return out
}
