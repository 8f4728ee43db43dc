package opensky

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/skywatch/skywatch/internal/config"
)

const defaultRequestTimeout = 10 * time.Second

// Client fetches live state vectors from the OpenSky Network API.
// Every call performs the full two-step sequence: exchange client
// credentials for a bearer token, then query the states endpoint.
type Client struct {
	tokenURL     string
	statesURL    string
	clientID     string
	clientSecret string
	httpc        *http.Client
}

// New builds a Client for the configured endpoints and credentials.
func New(cfg config.OpenSkyConfig, clientID, clientSecret string) *Client {
	return &Client{
		tokenURL:     cfg.TokenURL,
		statesURL:    cfg.StatesURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpc:        &http.Client{Timeout: defaultRequestTimeout},
	}
}

// tokenResponse is the subset of the token endpoint payload we need.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// fetchToken exchanges client credentials for a short-lived bearer token.
// Tokens are not cached across cycles: OpenSky client-credential tokens
// expire well within two poll intervals, so a cache would buy nothing.
func (c *Client) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("token post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}
	return tr.AccessToken, nil
}

// statesResponse mirrors the states endpoint payload. Each row is an opaque
// state vector; index 0 is the icao24 transponder code.
type statesResponse struct {
	States [][]any `json:"states"`
}

// States returns the transponder codes from icaos that are currently present
// in live airspace data.
//
// A null or absent "states" field means none of the tracked aircraft are
// airborne — that is an empty result, not an error. A non-200 from either
// the token or the states endpoint aborts the whole call.
func (c *Client) States(ctx context.Context, icaos []string) ([]string, error) {
	token, err := c.fetchToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("opensky: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("opensky: build states request: %w", err)
	}
	q := req.URL.Query()
	q.Set("icao24", strings.Join(icaos, ","))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("opensky: states get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opensky: states endpoint returned HTTP %d", resp.StatusCode)
	}

	var sr statesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("opensky: decode states response: %w", err)
	}

	out := make([]string, 0, len(sr.States))
	for _, row := range sr.States {
		if len(row) == 0 {
			continue
		}
		code, ok := row[0].(string)
		if !ok {
			continue
		}
		out = append(out, code)
	}
	return out, nil
}
