package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTVHeadend(); err != nil {
		return err
	}
	if err := c.validateEmail(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.ShareDir) == "" {
		return errors.New("paths.share_dir is required")
	}
	if strings.TrimSpace(c.Paths.DVRLogDir) == "" {
		return errors.New("paths.dvr_log_dir is required")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir is required")
	}
	return nil
}

func (c *Config) validateTVHeadend() error {
	if !c.TVHeadend.Enabled {
		return nil
	}
	if c.TVHeadend.URL == "" {
		return errors.New("tvheadend.url is required when tvheadend.enabled is true")
	}
	if !strings.HasPrefix(c.TVHeadend.URL, "http://") && !strings.HasPrefix(c.TVHeadend.URL, "https://") {
		return fmt.Errorf("tvheadend.url %q must start with http:// or https://", c.TVHeadend.URL)
	}
	return nil
}

func (c *Config) validateEmail() error {
	switch c.Email.Mode {
	case "":
		return nil
	case "smtp":
		if c.SMTP.Host == "" {
			return errors.New("smtp.host is required when email.mode is \"smtp\"")
		}
	case "gmail":
		if c.Gmail.User == "" || c.Gmail.ClientID == "" || c.Gmail.ClientSecret == "" || c.Gmail.RefreshToken == "" {
			return errors.New("gmail.user, gmail.client_id, gmail.client_secret, and gmail.refresh_token are required when email.mode is \"gmail\"")
		}
	case "sendmail":
		if c.Sendmail.Binary == "" {
			return errors.New("sendmail.binary is required when email.mode is \"sendmail\"")
		}
	default:
		return fmt.Errorf("email.mode: unsupported value %q (expected smtp, gmail, or sendmail)", c.Email.Mode)
	}
	if c.Email.Recipient == "" {
		return fmt.Errorf("email.recipient is required when email.mode is %q", c.Email.Mode)
	}
	if c.Email.Sender == "" {
		return fmt.Errorf("email.sender is required when email.mode is %q", c.Email.Mode)
	}
	return nil
}
