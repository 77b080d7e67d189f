// Package notify delivers alert emails for transfer failures and health
// warnings. Three transports are supported: direct SMTP, Gmail with an
// OAuth2 refresh token, and a local sendmail-compatible binary.
package notify
