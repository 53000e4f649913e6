// Package ai wraps the remote text-generation endpoint. One blocking
// request/response round trip per call; no retries, no streaming.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kayratasci4/Notes/internal/config"
	"github.com/kayratasci4/Notes/internal/errors"
)

// Client calls the generation endpoint. Configuration is an explicit
// value injected at construction: created once at startup, immutable
// thereafter. Zero ambient state.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient creates a Client from cfg. A nil httpClient falls back to
// http.DefaultClient (no timeout override).
func NewClient(cfg *config.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		apiKey:   cfg.APIKey,
		model:    cfg.Model,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     httpClient,
	}
}

// Wire format for the generateContent call.

type generateRequest struct {
	Contents []requestContent `json:"contents"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

type requestPart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends one generation request for the given action and source
// text and returns the trimmed result. All failures are translated into
// declared error kinds with user-presentable messages; raw transport
// errors never escape.
func (c *Client) Generate(ctx context.Context, text string, action Action) (string, error) {
	// Credential check comes before any network I/O.
	if c.apiKey == "" {
		return "", errors.NewConfiguration()
	}

	if !action.Valid() {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown action: %s", action))
	}

	body, err := json.Marshal(generateRequest{
		Contents: []requestContent{{
			Parts: []requestPart{{Text: action.Instruction(text)}},
		}},
	})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.endpoint, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewTransport(err)
	}

	var decoded generateResponse
	if resp.StatusCode != http.StatusOK {
		// The endpoint returns a structured error body; fold its message
		// into the transport cause when available.
		if json.Unmarshal(respBody, &decoded) == nil && decoded.Error != nil {
			return "", errors.NewTransport(fmt.Errorf("endpoint returned %d: %s", resp.StatusCode, decoded.Error.Message))
		}
		return "", errors.NewTransport(fmt.Errorf("endpoint returned %d", resp.StatusCode))
	}

	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", errors.NewTransport(fmt.Errorf("malformed response: %w", err))
	}

	result := strings.TrimSpace(extractText(decoded))
	if result == "" {
		return "", errors.NewEmptyResponse()
	}

	return result, nil
}

// extractText joins the text parts of the first candidate.
func extractText(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
