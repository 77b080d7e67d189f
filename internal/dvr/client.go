package dvr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pvrsync/internal/config"
)

// HTTPDoer describes the HTTP client used by the TVHeadend client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ServerInfo is the subset of /api/serverinfo the workflow cares about.
type ServerInfo struct {
	Name       string `json:"name"`
	Version    string `json:"sw_version"`
	APIVersion int    `json:"api_version"`
}

// DiskSpace reports the recording filesystem usage as seen by TVHeadend.
type DiskSpace struct {
	FreeBytes  int64 `json:"freediskspace"`
	UsedBytes  int64 `json:"useddiskspace"`
	TotalBytes int64 `json:"totaldiskspace"`
}

// Client talks to the TVHeadend HTTP API. A disabled configuration yields a
// no-op client so reconciliation degrades gracefully instead of failing.
type Client interface {
	// Enabled reports whether this client actually reaches a server.
	Enabled() bool
	// Ping verifies connectivity and returns server identity.
	Ping(ctx context.Context) (ServerInfo, error)
	// DiskSpace queries recording filesystem usage.
	DiskSpace(ctx context.Context) (DiskSpace, error)
	// RemoveEntry deletes a DVR entry by its descriptor UUID.
	RemoveEntry(ctx context.Context, uuid string) error
}

type httpClient struct {
	baseURL  string
	username string
	password string
	client   HTTPDoer
}

// NewFromConfig builds a TVHeadend client from configuration. When the
// integration is disabled or the URL is missing a no-op client is returned.
func NewFromConfig(cfg *config.Config) Client {
	if cfg == nil || !cfg.TVHeadend.Enabled {
		return noopClient{}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.TVHeadend.URL), "/")
	if baseURL == "" {
		return noopClient{}
	}
	return &httpClient{
		baseURL:  baseURL,
		username: cfg.TVHeadend.Username,
		password: cfg.TVHeadend.Password,
		client:   &http.Client{Timeout: time.Duration(cfg.TVHeadend.RequestTimeout) * time.Second},
	}
}

// NewHTTPClient constructs a client against baseURL with the given doer.
func NewHTTPClient(baseURL, username, password string, doer HTTPDoer) Client {
	return &httpClient{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		username: username,
		password: password,
		client:   doer,
	}
}

func (c *httpClient) Enabled() bool { return true }

func (c *httpClient) Ping(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	if err := c.getJSON(ctx, "/api/serverinfo", &info); err != nil {
		return ServerInfo{}, fmt.Errorf("tvheadend serverinfo: %w", err)
	}
	return info, nil
}

func (c *httpClient) DiskSpace(ctx context.Context) (DiskSpace, error) {
	var space DiskSpace
	if err := c.getJSON(ctx, "/api/diskspace", &space); err != nil {
		return DiskSpace{}, fmt.Errorf("tvheadend diskspace: %w", err)
	}
	return space, nil
}

func (c *httpClient) RemoveEntry(ctx context.Context, uuid string) error {
	uuid = strings.TrimSpace(uuid)
	if uuid == "" {
		return fmt.Errorf("remove dvr entry: empty uuid")
	}
	form := url.Values{"uuid": {uuid}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/dvr/entry/remove", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build dvr remove request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("remove dvr entry %s: %w", uuid, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("remove dvr entry %s: server returned %d", uuid, resp.StatusCode)
	}
	return nil
}

func (c *httpClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *httpClient) authorize(req *http.Request) {
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}

type noopClient struct{}

func (noopClient) Enabled() bool { return false }

func (noopClient) Ping(context.Context) (ServerInfo, error) {
	return ServerInfo{}, nil
}

func (noopClient) DiskSpace(context.Context) (DiskSpace, error) {
	return DiskSpace{}, nil
}

func (noopClient) RemoveEntry(context.Context, string) error { return nil }
