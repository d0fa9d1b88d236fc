package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"haml_conversation_publisher/generator"
	"haml_conversation_publisher/publisher"
	"haml_conversation_publisher/summarizer"
)

const testAddress = "0x1111111111111111111111111111111111111111"

func newTestServer(t *testing.T, llm generator.LLMClient) (*httptest.Server, string) {
	t.Helper()
	logger := zaptest.NewLogger(t)

	fetcher := summarizer.NewFetcher(summarizer.FetchOptions{Timeout: 5 * time.Second}, logger)
	sum := summarizer.New(llm, fetcher, logger)
	agent, err := generator.NewAgent(llm, sum, logger)
	require.NoError(t, err)

	root := filepath.Join(t.TempDir(), "public")
	pub := publisher.New(root, logger)

	srv, err := New(agent, sum, pub, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, root
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestGenerateEndpoint(t *testing.T) {
	llm := &generator.MockLLM{Response: "<html><head></head><body></body></html>"}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]string{"haml": "<round>3</round>"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	result := body["result"]

	assert.Equal(t, 1, strings.Count(result, "cdn.ethers.io"))
	assert.Equal(t, 1, strings.Count(result, "function "+generator.StakeFunction))
	assert.Less(t, strings.Index(result, "cdn.ethers.io"), strings.Index(result, "</head>"))
	assert.Less(t, strings.Index(result, "function "+generator.StakeFunction), strings.Index(result, "</body>"))
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t, &generator.MockLLM{})

	for _, path := range []string{"/api/generate", "/api/generate-enriched", "/api/summarize", "/api/publish"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "path %s", path)
	}
}

func TestGenerateFailure(t *testing.T) {
	llm := &generator.MockLLM{Err: errors.New("internal provider detail")}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/generate", map[string]string{"haml": "<round>1</round>"})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Failed to generate conversation", body["error"])
	assert.NotContains(t, body["error"], "provider detail")
}

func TestSummarizeEndpoint(t *testing.T) {
	content := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("page content"))
	}))
	t.Cleanup(content.Close)

	llm := &generator.MockLLM{Response: "a short summary"}
	ts, _ := newTestServer(t, llm)

	resp := postJSON(t, ts.URL+"/api/summarize", map[string][]string{"urls": {content.URL}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "a short summary", body["summary"])
}

func TestSummarizeEndpointNoURLs(t *testing.T) {
	ts, _ := newTestServer(t, &generator.MockLLM{})

	resp := postJSON(t, ts.URL+"/api/summarize", map[string][]string{"urls": {}})
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "Failed to fetch and summarize data", body["error"])
}

func TestPublishEndpoint(t *testing.T) {
	ts, root := newTestServer(t, &generator.MockLLM{})

	resp := postJSON(t, ts.URL+"/api/publish", map[string]string{
		"address":      testAddress,
		"keyword":      "demo1",
		"conversation": "<p>hi</p>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "/demo1.html", body["url"])

	data, err := os.ReadFile(filepath.Join(root, "demo1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", string(data))

	// Published page is served statically.
	page, err := http.Get(ts.URL + "/demo1.html")
	require.NoError(t, err)
	defer page.Body.Close()
	assert.Equal(t, http.StatusOK, page.StatusCode)

	// Republishing overwrites: last writer wins.
	resp = postJSON(t, ts.URL+"/api/publish", map[string]string{
		"address":      testAddress,
		"keyword":      "demo1",
		"conversation": "<p>bye</p>",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data, err = os.ReadFile(filepath.Join(root, "demo1.html"))
	require.NoError(t, err)
	assert.Equal(t, "<p>bye</p>", string(data))
}

func TestPublishInvalidKeyword(t *testing.T) {
	ts, root := newTestServer(t, &generator.MockLLM{})

	for _, keyword := range []string{"../etc/passwd", "my page", ""} {
		resp := postJSON(t, ts.URL+"/api/publish", map[string]string{
			"address":      testAddress,
			"keyword":      keyword,
			"conversation": "<p>hi</p>",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "keyword %q", keyword)
	}

	_, err := os.Stat(root)
	assert.True(t, os.IsNotExist(err))
}

func TestPublishInvalidAddress(t *testing.T) {
	ts, _ := newTestServer(t, &generator.MockLLM{})

	for _, address := range []string{"", "not-an-address", "0x123", "1111111111111111111111111111111111111111"} {
		resp := postJSON(t, ts.URL+"/api/publish", map[string]string{
			"address":      address,
			"keyword":      "demo1",
			"conversation": "<p>hi</p>",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "address %q", address)
	}
}
