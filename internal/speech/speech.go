package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Transcriber turns candidate audio into text. An empty or whitespace-only
// result means no speech was detected; that is not an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// Synthesizer turns AI text into audio bytes for voice interviews.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// IsSilence reports whether a transcription result contains no speech.
func IsSilence(transcript string) bool {
	return strings.TrimSpace(transcript) == ""
}

// HTTPClient talks to a speech sidecar exposing POST /transcribe
// (audio in, text out) and POST /synthesize (text in, audio out).
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *HTTPClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	body, err := c.post(ctx, "/transcribe", "application/octet-stream", audio)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *HTTPClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	return c.post(ctx, "/synthesize", "text/plain", []byte(text))
}

func (c *HTTPClient) post(ctx context.Context, path, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech service returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
