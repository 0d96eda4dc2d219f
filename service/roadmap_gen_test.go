package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoadmapSteps(t *testing.T) {
	text := "Learn the basics\n\n  Build a small project  \nShip it\n"

	steps := ParseRoadmapSteps(text)
	require.Len(t, steps, 3)

	require.Equal(t, "Step 1", steps[0].Title)
	require.Equal(t, "Learn the basics", steps[0].Description)
	require.Equal(t, 1, steps[0].Order)

	require.Equal(t, "Build a small project", steps[1].Description)
	require.Equal(t, 2, steps[1].Order)

	require.Equal(t, "Ship it", steps[2].Description)
	require.Equal(t, 3, steps[2].Order)
}

func TestParseRoadmapSteps_Empty(t *testing.T) {
	require.Empty(t, ParseRoadmapSteps(""))
	require.Empty(t, ParseRoadmapSteps("\n\n  \n"))
}

func TestGeminiClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Step one\nStep two"}]}}]}`))
	}))
	defer srv.Close()

	g := &GeminiClient{HTTPClient: srv.Client(), APIKey: "test", Model: "test-model"}

	// Point the request at the fake server by rewriting the host
	g.HTTPClient.Transport = rewriteHost(srv.URL)

	text, err := g.Generate(context.Background(), "learn go")
	require.NoError(t, err)
	require.Equal(t, "Step one\nStep two", text)
}

func TestGeminiClient_GenerateUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := &GeminiClient{HTTPClient: srv.Client(), APIKey: "test", Model: "test-model"}
	g.HTTPClient.Transport = rewriteHost(srv.URL)

	_, err := g.Generate(context.Background(), "learn go")
	require.Error(t, err)
}

type rewriteTransport struct {
	target string
}

func rewriteHost(target string) http.RoundTripper {
	return &rewriteTransport{target: target}
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	redirected, err := http.NewRequestWithContext(req.Context(), req.Method, rt.target+req.URL.Path, req.Body)
	if err != nil {
		return nil, err
	}
	redirected.Header = req.Header

	return http.DefaultTransport.RoundTrip(redirected)
}
