package twitchhls

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client fetches playback tokens and HLS manifests. It performs no retries
// and, by default, sets no timeout; bound calls with the context instead.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *log.Logger
}

// Option customizes a Client built by NewClient.
type Option func(*Client)

// WithHTTPClient replaces the default transport, which has no timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger routes client logs to l instead of the logrus standard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient validates cfg and returns a Client for it.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get fetches a playback token for login and returns the raw master manifest.
func (c *Client) Get(ctx context.Context, login string) (string, error) {
	creds, err := c.PlaybackToken(ctx, login)
	if err != nil {
		return "", err
	}

	return c.Manifest(ctx, login, creds)
}

// GetURL is like Get but stops at the signed manifest URL.
func (c *Client) GetURL(ctx context.Context, login string) (*url.URL, error) {
	creds, err := c.PlaybackToken(ctx, login)
	if err != nil {
		return nil, err
	}

	return c.ManifestURL(login, creds)
}

// PlaybackToken asks the GraphQL endpoint for a live stream access token.
// The HTTP status is not checked. A missing, null or non-string value or
// signature fails with ErrBadPlaybackToken; a body that is not JSON, or whose
// data or token member has the wrong JSON type, fails with a decode error.
func (c *Client) PlaybackToken(ctx context.Context, login string) (*Credentials, error) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(NewPlaybackAccessTokenQuery(login)); err != nil {
		return nil, fmt.Errorf("failed to encode graphql query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GQLURL, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Client-Id", c.cfg.ClientID)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql request for PlaybackAccessToken failed: %w", err)
	}
	defer res.Body.Close()

	entry := c.logger.WithFields(log.Fields{"login": login, "status": res.StatusCode})

	var graphResponse PlaybackAccessTokenGraphQLResponse
	if err := json.NewDecoder(res.Body).Decode(&graphResponse); err != nil {
		return nil, fmt.Errorf("failed to decode PlaybackAccessToken response (%s): %w", res.Status, err)
	}
	for _, e := range graphResponse.Errors {
		entry.Warnf("graphql error: %s", e.Message)
	}

	creds, err := graphResponse.credentials()
	if err != nil {
		return nil, err
	}
	if creds.Authorization.IsForbidden {
		entry.WithField("reason", creds.Authorization.ForbiddenReasonCode).
			Warn("playback token is marked forbidden")
	}
	entry.Debug("got playback token")

	return creds, nil
}

// ManifestURL builds the usher URL for login signed with creds.
func (c *Client) ManifestURL(login string, creds *Credentials) (*url.URL, error) {
	if creds == nil || creds.Token == "" || creds.Sig == "" {
		return nil, ErrBadPlaybackToken
	}

	mplURL, err := url.Parse(fmt.Sprintf(c.cfg.UsherURL, url.PathEscape(login)))
	if err != nil {
		return nil, fmt.Errorf("failed to build manifest url: %w", err)
	}

	query := url.Values{}
	query.Set("acmb", "e30=")
	query.Set("allow_source", "true")
	query.Set("cdm", "wv")
	query.Set("fast_bread", "true")
	query.Set("playlist_include_framerate", "true")
	query.Set("reassignments_supported", "true")
	query.Set("sig", creds.Sig)
	query.Set("supported_codecs", "avc1")
	query.Set("token", creds.Token)

	mplURL.RawQuery = query.Encode()

	return mplURL, nil
}

// Manifest downloads the master manifest for login. The body is returned
// verbatim whatever the HTTP status.
func (c *Client) Manifest(ctx context.Context, login string, creds *Credentials) (string, error) {
	mplURL, err := c.ManifestURL(login, creds)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mplURL.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create GET request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make GET request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest body: %w", err)
	}

	entry := c.logger.WithFields(log.Fields{"login": login, "status": res.StatusCode})
	if res.StatusCode != http.StatusOK {
		entry.Warn("usher returned non-200 status")
	} else {
		entry.Debug("got manifest")
	}

	return string(body), nil
}
