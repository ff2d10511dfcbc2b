package net

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_ForwardsRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/contacts", r.URL.Path)
		assert.Equal(t, "page=2", r.URL.RawQuery)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-ID"))
		assert.Equal(t, `{"name":"a"}`, string(body))

		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"c-1"}`))
	}))
	defer server.Close()

	d := NewDispatcher(Options{BaseURL: server.URL, Timeout: time.Second})

	header := http.Header{}
	header.Set("Authorization", "Bearer t")
	header.Set("X-Request-ID", "req-1")
	header.Set("Content-Type", "application/json")

	resp, err := d.Send(context.Background(), &UpstreamRequest{
		Method:   http.MethodPost,
		Path:     "/crm/contacts",
		RawQuery: "page=2",
		Header:   header,
		Body:     []byte(`{"name":"a"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Upstream"))
	assert.JSONEq(t, `{"id":"c-1"}`, string(resp.Body))
}

func TestDispatcher_ServerErrorPassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	d := NewDispatcher(Options{BaseURL: server.URL, MaxFailures: 10})

	resp, err := d.Send(context.Background(), &UpstreamRequest{Method: http.MethodGet, Path: "/ads"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "maintenance", string(resp.Body))
}

func TestDispatcher_BreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	var transitions []string
	d := NewDispatcher(Options{
		Name:        "test-upstream",
		BaseURL:     server.URL,
		MaxFailures: 3,
		OpenTimeout: time.Minute,
		OnStateChange: func(name string, from, to gobreaker.State) {
			transitions = append(transitions, to.String())
		},
	})

	for i := 0; i < 3; i++ {
		_, err := d.Send(context.Background(), &UpstreamRequest{Method: http.MethodGet, Path: "/ai"})
		require.NoError(t, err)
	}

	_, err := d.Send(context.Background(), &UpstreamRequest{Method: http.MethodGet, Path: "/ai"})
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "熔断打开后应直接拒绝, got %v", err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	assert.Equal(t, []string{"open"}, transitions)
	assert.Equal(t, gobreaker.StateOpen, d.(*httpDispatcher).State())
}

func TestDispatcher_NoUpstream(t *testing.T) {
	d := NewDispatcher(Options{})
	_, err := d.Send(context.Background(), &UpstreamRequest{Method: http.MethodGet, Path: "/bi"})
	assert.ErrorIs(t, err, ErrNoUpstream)
}

func TestBuildUpstreamRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPut, "/v1/marketing/campaigns/9?dry=1", strings.NewReader("payload"))
	r.Header.Set("Connection", "keep-alive")
	r.Header.Set("Apikey", "k")

	req, err := BuildUpstreamRequest(r, "marketing/campaigns/9", 0)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/marketing/campaigns/9", req.Path)
	assert.Equal(t, "dry=1", req.RawQuery)
	assert.Equal(t, "payload", string(req.Body))
	assert.Equal(t, "k", req.Header.Get("Apikey"))
	assert.Empty(t, req.Header.Get("Connection"))
}

func TestBuildUpstreamRequest_BodyLimit(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/v1/ai/generate", strings.NewReader("0123456789"))
	_, err := BuildUpstreamRequest(r, "ai/generate", 9)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	r = httptest.NewRequest(http.MethodPost, "/v1/ai/generate", strings.NewReader("0123456789"))
	req, err := BuildUpstreamRequest(r, "ai/generate", 10)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(req.Body))
}
