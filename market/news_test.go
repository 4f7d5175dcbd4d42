package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewsClientSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req newsSearchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "secret", req.APIKey)
		assert.Equal(t, "JKH Sri Lanka stock market", req.Query)
		assert.Equal(t, "basic", req.SearchDepth)
		assert.Equal(t, 3, req.MaxResults)
		assert.Equal(t, "news", req.Topic)

		w.Write([]byte(`{"results":[
			{"title":"JKH posts record earnings","content":"Quarterly results beat estimates."},
			{"title":"CSE rallies","content":"ASPI up 1.5% on banking stocks."}
		]}`))
	}))
	defer srv.Close()

	c := NewNewsClient("secret", func(o *NewsClientOptions) { o.BaseURL = srv.URL })

	digest, err := c.Search(context.Background(), "JKH")
	require.NoError(t, err)
	assert.Equal(t,
		"- JKH posts record earnings: Quarterly results beat estimates.\n"+
			"- CSE rallies: ASPI up 1.5% on banking stocks.",
		digest)
}

func TestNewsClientNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewNewsClient("secret", func(o *NewsClientOptions) { o.BaseURL = srv.URL })

	digest, err := c.Search(context.Background(), "JKH")
	require.NoError(t, err)
	assert.Equal(t, "No news found.", digest)
}

func TestNewsClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewNewsClient("bad", func(o *NewsClientOptions) { o.BaseURL = srv.URL })
	_, err := c.Search(context.Background(), "JKH")
	assert.ErrorContains(t, err, "status 401")

	missing := NewNewsClient("")
	_, err = missing.Search(context.Background(), "JKH")
	assert.ErrorContains(t, err, "missing API key")
}
