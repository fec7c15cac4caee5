package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/vestigo/internal/interfaces"
)

func TestFetchReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	service := newTestService(t)
	body, err := service.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Contains(t, body, "hello")
}

func TestFetchNon2xxIsStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer server.Close()

	service := newTestService(t)
	_, err := service.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var statusErr *interfaces.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusGone, statusErr.StatusCode)
}

func TestFetchCapsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", 4096)))
	}))
	defer server.Close()

	service := newTestService(t)
	service.maxBodySize = 100

	body, err := service.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Len(t, body, 100)
}
