package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"wecelebrate-notifier/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SearchQuery narrows a site's history. Empty fields match everything.
type SearchQuery struct {
	Text    string                `json:"text,omitempty"`
	Status  models.DeliveryStatus `json:"status,omitempty"`
	Trigger models.TriggerEvent   `json:"trigger,omitempty"`
	Size    int                   `json:"size,omitempty"`
}

// Index stores history documents for free-text search.
type Index interface {
	IndexHistory(ctx context.Context, h *models.EmailHistory) error
	SearchHistory(ctx context.Context, siteID string, q SearchQuery) ([]models.EmailHistory, int, error)
}

const historyMapping = `{
	"mappings": {
		"properties": {
			"id":             {"type": "keyword"},
			"siteId":         {"type": "keyword"},
			"templateId":     {"type": "keyword"},
			"ruleId":         {"type": "keyword"},
			"trigger":        {"type": "keyword"},
			"status":         {"type": "keyword"},
			"recipientEmail": {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"subject":        {"type": "text"},
			"messageId":      {"type": "keyword"},
			"error":          {"type": "text"},
			"sentAt":         {"type": "date"},
			"context":        {"type": "object", "enabled": false}
		}
	}
}`

type ESIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewESIndex(client *elasticsearch.Client, index string) *ESIndex {
	return &ESIndex{client: client, index: index}
}

// EnsureIndex creates the history index with its mapping when missing.
func (e *ESIndex) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(historyMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	defer res.Body.Close()
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", e.index, res.String())
	}
	return nil
}

func (e *ESIndex) IndexHistory(ctx context.Context, h *models.EmailHistory) error {
	body, err := json.Marshal(h)
	if err != nil {
		return err
	}

	res, err := e.client.Index(e.index, bytes.NewReader(body),
		e.client.Index.WithDocumentID(h.ID),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index history %s: %w", h.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index history %s: %s", h.ID, res.Status())
	}
	return nil
}

func (e *ESIndex) SearchHistory(ctx context.Context, siteID string, q SearchQuery) ([]models.EmailHistory, int, error) {
	size := q.Size
	if size <= 0 {
		size = 50
	}
	body, err := json.Marshal(buildSearchQuery(siteID, q))
	if err != nil {
		return nil, 0, err
	}

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, 0, fmt.Errorf("search history: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("search history: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.EmailHistory `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decode search response: %w", err)
	}

	out := make([]models.EmailHistory, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, hit.Source)
	}
	return out, parsed.Hits.Total.Value, nil
}

func buildSearchQuery(siteID string, q SearchQuery) map[string]interface{} {
	filter := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"siteId": siteID}},
	}
	if q.Status != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"status": q.Status}})
	}
	if q.Trigger != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"trigger": q.Trigger}})
	}

	boolQuery := map[string]interface{}{"filter": filter}
	if q.Text != "" {
		boolQuery["must"] = []interface{}{
			map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":  q.Text,
					"fields": []string{"subject^2", "recipientEmail", "error"},
					"type":   "best_fields",
				},
			},
		}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"sentAt": map[string]interface{}{"order": "desc"}}},
	}
}
