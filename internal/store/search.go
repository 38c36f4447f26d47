// internal/store/search.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"chat-automation/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// LogIndexMapping is the index body used by EnsureIndex for automation logs.
const LogIndexMapping = `{
  "mappings": {
    "properties": {
      "id":             {"type": "keyword"},
      "sessionId":      {"type": "keyword"},
      "automationType": {"type": "keyword"},
      "parameters":     {"type": "text"},
      "result":         {"type": "text"},
      "success":        {"type": "boolean"},
      "message":        {"type": "text"},
      "executionTime":  {"type": "double"},
      "timestamp":      {"type": "date"}
    }
  }
}`

// logDocument flattens JSON parameters and results into searchable text.
type logDocument struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	AutomationType string    `json:"automationType"`
	Parameters     string    `json:"parameters"`
	Result         string    `json:"result"`
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
	ExecutionTime  float64   `json:"executionTime"`
	Timestamp      time.Time `json:"timestamp"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source logDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// LogSearchIndex indexes automation logs in Elasticsearch for full-text
// history queries.
type LogSearchIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewLogSearchIndex(es *elasticsearch.Client, index string) *LogSearchIndex {
	return &LogSearchIndex{es: es, index: index}
}

func (s *LogSearchIndex) Index(ctx context.Context, entry *models.AutomationLogEntry) error {
	params, _ := json.Marshal(nonNilMap(entry.Parameters))
	result, _ := json.Marshal(nonNilMap(entry.Result))

	body, err := json.Marshal(logDocument{
		ID:             entry.ID,
		SessionID:      entry.SessionID,
		AutomationType: entry.AutomationType,
		Parameters:     string(params),
		Result:         string(result),
		Success:        entry.Success,
		Message:        entry.Message,
		ExecutionTime:  entry.ExecutionTime,
		Timestamp:      entry.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("encode log document: %w", err)
	}

	res, err := s.es.Index(s.index, bytes.NewReader(body),
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(entry.ID),
	)
	if err != nil {
		return fmt.Errorf("index automation log: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index automation log: %s", res.Status())
	}
	return nil
}

// Search matches query against messages, types, parameters and results of
// one session, newest first.
func (s *LogSearchIndex) Search(ctx context.Context, sessionID, query string, limit int) ([]*models.AutomationLogEntry, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}

	q := map[string]interface{}{
		"size": limit,
		"sort": []interface{}{
			map[string]interface{}{"timestamp": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"sessionId": sessionID}},
				},
				"must": []interface{}{
					map[string]interface{}{"multi_match": map[string]interface{}{
						"query":  query,
						"fields": []string{"message", "automationType", "parameters", "result"},
					}},
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search automation logs: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		raw, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search automation logs: %s %s", res.Status(), strings.TrimSpace(string(raw)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	entries := make([]*models.AutomationLogEntry, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		doc := hit.Source
		e := &models.AutomationLogEntry{
			ID:             doc.ID,
			SessionID:      doc.SessionID,
			AutomationType: doc.AutomationType,
			Success:        doc.Success,
			Message:        doc.Message,
			ExecutionTime:  doc.ExecutionTime,
			Timestamp:      doc.Timestamp,
		}
		_ = decodeObject([]byte(doc.Parameters), &e.Parameters)
		_ = decodeObject([]byte(doc.Result), &e.Result)
		entries = append(entries, e)
	}
	return entries, nil
}
