package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ShareDir  string `toml:"share_dir"`
	DVRLogDir string `toml:"dvr_log_dir"`
	LogDir    string `toml:"log_dir"`
}

// Transfer contains the timing and checksum knobs for the move pipeline.
type Transfer struct {
	GuardIntervalMinutes int  `toml:"guard_interval_minutes"`
	ProbeTimeoutSeconds  int  `toml:"probe_timeout_seconds"`
	ChecksumBlockKiB     int  `toml:"checksum_block_kib"`
	RecomputeChecksums   bool `toml:"recompute_checksums"`
	MinFreeGiB           int  `toml:"min_free_gib"`
}

// TVHeadend contains configuration for the optional DVR control channel.
type TVHeadend struct {
	Enabled        bool   `toml:"enabled"`
	URL            string `toml:"url"`
	Username       string `toml:"username"`
	Password       string `toml:"password"`
	RequestTimeout int    `toml:"request_timeout"`
	ServiceName    string `toml:"service_name"`
}

// Email contains the shared alert delivery settings. Mode selects the
// transport: "smtp", "gmail", "sendmail", or empty to disable alerts.
type Email struct {
	Mode        string `toml:"mode"`
	Recipient   string `toml:"recipient"`
	Sender      string `toml:"sender"`
	SenderName  string `toml:"sender_name"`
	ReplyTo     string `toml:"reply_to"`
	ReplyToName string `toml:"reply_to_name"`
}

// SMTP contains configuration for direct SMTP delivery.
type SMTP struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	StartTLS bool   `toml:"starttls"`
}

// Gmail contains OAuth2 settings for XOAUTH2-authenticated delivery.
type Gmail struct {
	User         string `toml:"user"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
}

// Sendmail contains configuration for the local mail-relay subprocess.
type Sendmail struct {
	Binary string `toml:"binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pvrsync.
//
// Configuration sections by subsystem:
//   - Paths: share destination, DVR schedule-log directory, log directory
//   - Transfer: guard interval, probe timeout, checksum block size, free-space floor
//   - TVHeadend: optional control channel used for stale-entry cleanup
//   - Email/SMTP/Gmail/Sendmail: alert delivery
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Transfer  Transfer  `toml:"transfer"`
	TVHeadend TVHeadend `toml:"tvheadend"`
	Email     Email     `toml:"email"`
	SMTP      SMTP      `toml:"smtp"`
	Gmail     Gmail     `toml:"gmail"`
	Sendmail  Sendmail  `toml:"sendmail"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pvrsync/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pvrsync.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories pvrsync owns. The share directory
// is deliberately not created: its presence is what the mount probe checks.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// GuardInterval returns the minimum clearance required before the next
// scheduled recording.
func (c *Config) GuardInterval() time.Duration {
	return time.Duration(c.Transfer.GuardIntervalMinutes) * time.Minute
}

// ProbeTimeout returns the hard deadline for the share mount probe.
func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Transfer.ProbeTimeoutSeconds) * time.Second
}

// ChecksumBlockSize returns the digest read block size in bytes.
func (c *Config) ChecksumBlockSize() int {
	return c.Transfer.ChecksumBlockKiB * 1024
}

// MinFreeBytes returns the free-space floor for the health check.
func (c *Config) MinFreeBytes() uint64 {
	return uint64(c.Transfer.MinFreeGiB) << 30
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
