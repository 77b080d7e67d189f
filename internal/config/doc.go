// Package config loads, normalizes, and validates pvrsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TVHEADEND_PASSWORD and SMTP_PASSWORD. The Config type centralizes every knob
// the CLI needs, so the share destination, guard interval, and alert
// credentials are discovered in one pass.
//
// The loaded Config is immutable by convention: it is built once at startup
// and passed by pointer into each component.
package config
