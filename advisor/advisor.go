// Package advisor generates market commentary through the Gemini
// generateContent REST API. It is strictly advisory: every failure collapses
// to a canned string so the trading core never depends on the network.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/market"
)

const (
	// DefaultBaseURL is the Gemini REST endpoint root.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	// DefaultModel is the model used for commentary.
	DefaultModel = "gemini-2.5-flash"
)

// Fallback strings returned in place of commentary. These are user-visible
// and stable.
const (
	MsgNoAPIKey    = "NiftyBot unavailable: API Key not configured."
	MsgUnavailable = "Unable to connect to NiftyBot AI service."
)

// Client calls the Gemini generateContent endpoint.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
}

type Option func(*Client)

// WithBaseURL redirects requests, used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient creates an advisor client. An empty apiKey is allowed; Analyze
// then returns MsgNoAPIKey without touching the network.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Analyze asks for a short take on one instrument given the caller's open
// positions. It never returns an error: on any failure the result is one of
// the fallback strings.
func (c *Client) Analyze(ctx context.Context, in market.Instrument, positions []ledger.Position) string {
	if c.apiKey == "" {
		return MsgNoAPIKey
	}

	text, err := c.generate(ctx, buildPrompt(in, positions))
	if err != nil {
		c.log.Warn("advisor request failed",
			slog.String("symbol", in.Symbol),
			slog.String("err", err.Error()),
		)
		return MsgUnavailable
	}
	return text
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var apiResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// buildPrompt summarizes the instrument and any holdings in it.
func buildPrompt(in market.Instrument, positions []ledger.Position) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are NiftyBot, a concise Indian stock market assistant for a trading simulator.\n")
	fmt.Fprintf(&b, "Instrument: %s (%s), price %.2f, change %+.2f (%+.2f%%), trend %s.\n",
		in.Symbol, in.Name, in.Price, in.Change, in.ChangePercent, in.Trend())

	var held []string
	for _, p := range positions {
		if p.Symbol == in.Symbol {
			held = append(held, fmt.Sprintf("%s %s %d @ %.2f", p.Product, p.Side, p.Quantity, p.AvgPrice))
		}
	}
	if len(held) > 0 {
		fmt.Fprintf(&b, "Open positions: %s.\n", strings.Join(held, "; "))
	} else {
		b.WriteString("No open positions in this instrument.\n")
	}
	b.WriteString("Give a 2-3 sentence view. This is a simulation; do not add disclaimers.")
	return b.String()
}
