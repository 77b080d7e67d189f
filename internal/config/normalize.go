package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTransfer()
	c.normalizeTVHeadend()
	c.normalizeEmail()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ShareDir, err = expandPath(c.Paths.ShareDir); err != nil {
		return fmt.Errorf("paths.share_dir: %w", err)
	}
	if c.Paths.DVRLogDir, err = expandPath(c.Paths.DVRLogDir); err != nil {
		return fmt.Errorf("paths.dvr_log_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTransfer() {
	if c.Transfer.GuardIntervalMinutes <= 0 {
		c.Transfer.GuardIntervalMinutes = defaultGuardIntervalMinutes
	}
	if c.Transfer.ProbeTimeoutSeconds <= 0 {
		c.Transfer.ProbeTimeoutSeconds = defaultProbeTimeoutSeconds
	}
	if c.Transfer.ChecksumBlockKiB <= 0 {
		c.Transfer.ChecksumBlockKiB = defaultChecksumBlockKiB
	}
	if c.Transfer.MinFreeGiB < 0 {
		c.Transfer.MinFreeGiB = 0
	}
}

func (c *Config) normalizeTVHeadend() {
	c.TVHeadend.URL = strings.TrimRight(strings.TrimSpace(c.TVHeadend.URL), "/")
	c.TVHeadend.Username = strings.TrimSpace(c.TVHeadend.Username)
	if c.TVHeadend.Password == "" {
		if value, ok := os.LookupEnv("TVHEADEND_PASSWORD"); ok {
			c.TVHeadend.Password = value
		}
	}
	if c.TVHeadend.RequestTimeout <= 0 {
		c.TVHeadend.RequestTimeout = defaultTVHRequestTimeout
	}
	c.TVHeadend.ServiceName = strings.TrimSpace(c.TVHeadend.ServiceName)
	if c.TVHeadend.ServiceName == "" {
		c.TVHeadend.ServiceName = defaultTVHServiceName
	}
}

func (c *Config) normalizeEmail() {
	c.Email.Mode = strings.ToLower(strings.TrimSpace(c.Email.Mode))
	c.Email.Recipient = strings.TrimSpace(c.Email.Recipient)
	c.Email.Sender = strings.TrimSpace(c.Email.Sender)
	if c.Email.ReplyTo == "" {
		c.Email.ReplyTo = c.Email.Sender
	}
	if c.Email.ReplyToName == "" {
		c.Email.ReplyToName = c.Email.SenderName
	}

	c.SMTP.Host = strings.TrimSpace(c.SMTP.Host)
	if c.SMTP.Port <= 0 {
		c.SMTP.Port = defaultSMTPPort
	}
	if c.SMTP.Password == "" {
		if value, ok := os.LookupEnv("SMTP_PASSWORD"); ok {
			c.SMTP.Password = value
		}
	}

	c.Gmail.User = strings.TrimSpace(c.Gmail.User)
	c.Gmail.ClientID = strings.TrimSpace(c.Gmail.ClientID)
	if c.Gmail.ClientSecret == "" {
		if value, ok := os.LookupEnv("GMAIL_CLIENT_SECRET"); ok {
			c.Gmail.ClientSecret = strings.TrimSpace(value)
		}
	}
	if c.Gmail.RefreshToken == "" {
		if value, ok := os.LookupEnv("GMAIL_REFRESH_TOKEN"); ok {
			c.Gmail.RefreshToken = strings.TrimSpace(value)
		}
	}

	c.Sendmail.Binary = strings.TrimSpace(c.Sendmail.Binary)
	if c.Sendmail.Binary == "" {
		c.Sendmail.Binary = defaultSendmailBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
