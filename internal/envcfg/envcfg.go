// Package envcfg resolves the handful of environment variables pyano reads
// at startup: the weights, adapter and config-document directories, plus
// the log verbosity selector.
package envcfg

import "os"

const (
	defaultModelHome     = "pyano_home/models"
	defaultAdaptersHome  = "pyano_home/adapters"
	defaultModelConfig   = "pyano_home/configs"
	defaultLogLevel      = "info"
	envModelHome         = "MODEL_HOME"
	envAdaptersHome      = "ADAPTERS_HOME"
	envModelConfigDir    = "MODEL_CONFIG_DIR"
	envLogLevel          = "PYANO_LOG_LEVEL"
)

// ModelHome returns the directory weight files are stored under.
func ModelHome() string { return getOr(envModelHome, defaultModelHome) }

// AdaptersHome returns the directory adapter binaries (and the adapter
// manifest) are stored under.
func AdaptersHome() string { return getOr(envAdaptersHome, defaultAdaptersHome) }

// ModelConfigDir returns the directory scanned for per-model JSON config
// documents.
func ModelConfigDir() string { return getOr(envModelConfigDir, defaultModelConfig) }

// LogLevel returns the requested logrus level name.
func LogLevel() string { return getOr(envLogLevel, defaultLogLevel) }

func getOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
