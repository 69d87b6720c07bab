// Package pyanoerr defines the typed error taxonomy shared across the
// model lifecycle manager and agent chain: ConfigError, ModelNotFoundError,
// ProcessError, MemoryError, TransportError, BackendError and DownloadError.
package pyanoerr

import "fmt"

// ConfigError signals a malformed or missing registry entry, or a prompt
// template missing a required placeholder. Fatal to the current operation.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %s", e.Reason) }

func NewConfigError(format string, args ...any) *ConfigError {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// ModelNotFoundError signals an unknown model name.
type ModelNotFoundError struct {
	Name string
}

func (e *ModelNotFoundError) Error() string {
	return fmt.Sprintf("model not found: %s", e.Name)
}

// ProcessError covers spawn failure, health timeout, port-not-configured
// and lock-acquisition timeout.
type ProcessError struct {
	Reason string
}

func (e *ProcessError) Error() string { return fmt.Sprintf("process error: %s", e.Reason) }

func NewProcessError(format string, args ...any) *ProcessError {
	return &ProcessError{Reason: fmt.Sprintf(format, args...)}
}

// MemoryError signals admission failure after exhausting eviction
// candidates. Carries the structured report described in spec.md §4.6.
// NoCandidates marks the distinct case where the loaded-models table was
// already empty, so there was nothing left to unload (spec.md §4.6 step 3).
type MemoryError struct {
	RequiredGB      float64
	AvailableGB     float64
	TotalGB         float64
	UsagePercentage float64
	Unloaded        []string
	FreedGB         float64
	Failed          map[string]string
	NoCandidates    bool
}

func (e *MemoryError) Error() string {
	if e.NoCandidates {
		return fmt.Sprintf(
			"no models available to unload: need %.1f GB but only %.1f/%.1f GB available (%.1f%% used)",
			e.RequiredGB, e.AvailableGB, e.TotalGB, e.UsagePercentage,
		)
	}
	return fmt.Sprintf(
		"could not allocate %.1f GB after unloading attempt (available %.1f/%.1f GB, %.1f%% used); unloaded=%v freed=%.1fGB failed=%v",
		e.RequiredGB, e.AvailableGB, e.TotalGB, e.UsagePercentage, e.Unloaded, e.FreedGB, e.Failed,
	)
}

// TransportError wraps a network-level failure talking to an inference backend.
type TransportError struct {
	Reason string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("transport error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("transport error: %s", e.Reason)
}

func (e *TransportError) Unwrap() error { return e.Err }

// BackendError wraps a non-2xx response from an inference backend.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error: status %d: %s", e.Status, e.Body)
}

// DownloadError signals a non-2xx response while retrieving weight files.
// The partial file, if any, is left in place for the caller to retry or remove.
type DownloadError struct {
	URL    string
	Status int
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download error: %s: status %d", e.URL, e.Status)
}
