package testsupport

import (
	"path/filepath"
	"testing"

	"pvrsync/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfg := &cfgVal
	cfg.Paths.ShareDir = filepath.Join(base, "share")
	cfg.Paths.DVRLogDir = filepath.Join(base, "dvr-log")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.TVHeadend.Enabled = false
	cfg.Email.Mode = ""
	cfg.Email.Recipient = ""

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithGuardMinutes overrides the conflict guard interval on the test config.
func WithGuardMinutes(minutes int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transfer.GuardIntervalMinutes = minutes
	}
}

// WithProbeSeconds overrides the share probe timeout on the test config.
func WithProbeSeconds(seconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Transfer.ProbeTimeoutSeconds = seconds
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.ShareDir)
}
