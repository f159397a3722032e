package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSilence(t *testing.T) {
	assert.True(t, IsSilence(""))
	assert.True(t, IsSilence("   \n\t"))
	assert.False(t, IsSilence("hello"))
	assert.False(t, IsSilence("  hello  "))
}

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, []byte{0x01, 0x02}, body)
		w.Write([]byte("hello world"))
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(server.URL)
	text, err := client.Transcribe(context.Background(), []byte{0x01, 0x02})

	assert.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/synthesize", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "say this", string(body))
		w.Write([]byte{0xAA, 0xBB})
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(server.URL)
	audio, err := client.Synthesize(context.Background(), "say this")

	assert.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, audio)
}

func TestNonOKStatusIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(server.URL)
	_, err := client.Transcribe(context.Background(), []byte("x"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transcribe", r.URL.Path)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(server.Close)

	client := NewHTTPClient(server.URL + "/")
	_, err := client.Transcribe(context.Background(), []byte("x"))

	assert.NoError(t, err)
}
