// internal/store/search_test.go
package store

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"chat-automation/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return es
}

func TestLogSearchIndex_Index(t *testing.T) {
	var gotPath string
	var gotDoc map[string]interface{}
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotDoc)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	idx := NewLogSearchIndex(es, "automation-logs")
	err := idx.Index(context.Background(), &models.AutomationLogEntry{
		ID:             "log-1",
		SessionID:      "s1",
		AutomationType: "web_scraping",
		Parameters:     map[string]interface{}{"url": "https://example.com"},
		Success:        true,
		Message:        "Scraped 3 items",
		Timestamp:      time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, "/automation-logs/_doc/log-1", gotPath)
	assert.Equal(t, "s1", gotDoc["sessionId"])
	assert.Equal(t, `{"url":"https://example.com"}`, gotDoc["parameters"])
}

func TestLogSearchIndex_Search(t *testing.T) {
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/automation-logs/_search"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"sessionId":"s1"`)
		assert.Contains(t, string(body), `"query":"linkedin"`)

		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{
			"id":"log-9","sessionId":"s1","automationType":"linkedin_insights",
			"parameters":"{\"insight_type\":\"notifications\"}","result":"{}",
			"success":true,"message":"ok","executionTime":2.5,"timestamp":"2025-01-01T00:00:00Z"}}]}}`))
	})

	entries, err := NewLogSearchIndex(es, "automation-logs").Search(context.Background(), "s1", "linkedin", 0)
	require.NoError(t, err)

	require.Len(t, entries, 1)
	assert.Equal(t, "log-9", entries[0].ID)
	assert.Equal(t, "notifications", entries[0].Parameters["insight_type"])
	assert.Equal(t, 2.5, entries[0].ExecutionTime)
}

func TestLogSearchIndex_SearchError(t *testing.T) {
	es := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"parse"}`))
	})

	_, err := NewLogSearchIndex(es, "automation-logs").Search(context.Background(), "s1", "x", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
