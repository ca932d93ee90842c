package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhotoURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/products/UTP-5E-305/photo":
			w.Write([]byte(`{"url": "https://cdn.example.com/utp.jpg"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")

	url, err := c.PhotoURL(context.Background(), "UTP-5E-305")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/utp.jpg", url)

	_, err = c.PhotoURL(context.Background(), "missing")
	assert.Error(t, err)
}
