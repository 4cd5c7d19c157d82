package fediverse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"consumelog-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestPostStatus(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "lib/fediverse")
	t.Cleanup(cleanup)

	var gotAuth, gotStatus, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/statuses", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")
		gotStatus = r.FormValue("status")
		gotContentType = r.FormValue("content_type")
		w.Write([]byte(`{"id":"1"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Config{Instance: server.URL, Token: "token123"})
	err := client.PostStatus(context.Background(), "⭐️⭐️⭐️读过《星辰的繼承者》 https://book.douban.com/subject/27102569/")
	require.NoError(t, err)

	require.Equal(t, "Bearer token123", gotAuth)
	require.Contains(t, gotStatus, "星辰的繼承者")
	require.Empty(t, gotContentType)
}

func TestPostStatusMarkdown(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "lib/fediverse")
	t.Cleanup(cleanup)

	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.FormValue("content_type")
		w.Write([]byte(`{"id":"1"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Config{Instance: server.URL, Token: "token123", Markdown: true})
	require.True(t, client.Markdown())

	err := client.PostStatus(context.Background(), "hello")
	require.NoError(t, err)
	require.Equal(t, "text/markdown", gotContentType)
}

func TestPostStatusError(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "lib/fediverse")
	t.Cleanup(cleanup)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"The access token is invalid"}`))
	}))
	t.Cleanup(server.Close)

	client := New(Config{Instance: server.URL, Token: "bad"})
	err := client.PostStatus(context.Background(), "hello")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")
}
