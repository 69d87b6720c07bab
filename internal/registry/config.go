// Package registry implements the Registry (spec.md §4.1): it scans a
// directory of per-model JSON configuration documents and exposes an
// in-memory, read-only-after-construction registry keyed by model name.
package registry

// ModelType is the coarse kind of model a config describes.
type ModelType string

const (
	ModelTypeText ModelType = "text"
)

// ModelSpecificConfig is the "model_config" JSON subsection.
type ModelSpecificConfig struct {
	Name                string    `json:"name"`
	ModelType           ModelType `json:"model_type"`
	ModelKind           string    `json:"model_kind"`
	ModelPath           string    `json:"model_path"`
	ModelURL            *string   `json:"model_url,omitempty"`
	DownloadIfNotExist  bool      `json:"download_if_not_exist"`
}

// MemoryConfig is the "memory_config" JSON subsection.
type MemoryConfig struct {
	MinRAMGB        float64  `json:"min_ram_gb"`
	RecommendedRAMGB float64 `json:"recommended_ram_gb"`
	GPUMemoryGB     *float64 `json:"gpu_memory_gb,omitempty"`
}

// PromptTemplate is the "prompt_template" JSON subsection. RequiredKeys
// names the placeholders the template must contain; spec.md's contract is
// exactly {"system_prompt", "user_prompt"}.
type PromptTemplate struct {
	Template     string   `json:"template"`
	RequiredKeys []string `json:"required_keys"`
}

// Defaults is the "defaults" JSON subsection: sampling defaults applied
// whenever a caller's options don't override them.
type Defaults struct {
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
	TopK              int     `json:"top_k"`
	MaxTokens         int     `json:"max_tokens"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
}

// ServerConfig is the "server_config" JSON subsection.
type ServerConfig struct {
	Host       string            `json:"host"`
	Port       *int              `json:"port,omitempty"`
	CtxSize    int               `json:"ctx_size"`
	GPULayers  int               `json:"gpu_layers"`
	BatchSize  int               `json:"batch_size"`
	NumThreads *int              `json:"num_threads,omitempty"`
	UseMmap    bool              `json:"use_mmap"`
	UseGPU     bool              `json:"use_gpu"`
	ExtraArgs  map[string]string `json:"extra_args"`
}

// ModelConfig is the immutable, once-loaded-per-process config for one
// model (spec.md §3). The five subsections are each required; Load aborts
// startup if any file is missing one.
type ModelConfig struct {
	ModelConfig  ModelSpecificConfig `json:"model_config"`
	MemoryConfig MemoryConfig        `json:"memory_config"`
	Prompt       PromptTemplate      `json:"prompt_template"`
	Defaults     Defaults            `json:"defaults"`
	Server       ServerConfig        `json:"server_config"`
}

// Name is a shorthand for ModelConfig.ModelConfig.Name, used as the
// registry key.
func (c ModelConfig) Name() string { return c.ModelConfig.Name }
