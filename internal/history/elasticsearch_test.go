package history

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"wecelebrate-notifier/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransport answers every request with a canned response and keeps the
// requests it saw.
type fakeTransport struct {
	status   int
	body     string
	requests []*http.Request
	bodies   []string
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.requests = append(f.requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	} else {
		f.bodies = append(f.bodies, "")
	}
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: f.status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func newFakeIndex(t *testing.T, status int, body string) (*ESIndex, *fakeTransport) {
	t.Helper()
	tr := &fakeTransport{status: status, body: body}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: tr,
	})
	require.NoError(t, err)
	return NewESIndex(client, "email-history"), tr
}

func TestESIndex_IndexHistory(t *testing.T) {
	idx, tr := newFakeIndex(t, http.StatusCreated, `{"result":"created"}`)

	err := idx.IndexHistory(context.Background(), &models.EmailHistory{
		ID: "h-1", SiteID: "site-1", Subject: "Shipped", Status: models.StatusSent,
		SentAt: time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, tr.requests, 1)
	assert.Equal(t, "/email-history/_doc/h-1", tr.requests[0].URL.Path)
	assert.Contains(t, tr.bodies[0], `"subject":"Shipped"`)
}

func TestESIndex_IndexHistoryError(t *testing.T) {
	idx, _ := newFakeIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)
	err := idx.IndexHistory(context.Background(), &models.EmailHistory{ID: "h-1"})
	assert.Error(t, err)
}

func TestESIndex_SearchHistory(t *testing.T) {
	resp := `{"hits":{"total":{"value":2},"hits":[
		{"_source":{"id":"h-2","siteId":"site-1","subject":"Shipped","status":"sent"}},
		{"_source":{"id":"h-1","siteId":"site-1","subject":"Shipped","status":"failed"}}
	]}}`
	idx, tr := newFakeIndex(t, http.StatusOK, resp)

	rows, total, err := idx.SearchHistory(context.Background(), "site-1", SearchQuery{Text: "shipped", Status: models.StatusSent})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "h-2", rows[0].ID)

	require.Len(t, tr.requests, 1)
	assert.Equal(t, "/email-history/_search", tr.requests[0].URL.Path)
	assert.Equal(t, "50", tr.requests[0].URL.Query().Get("size"))

	var sent map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(tr.bodies[0]), &sent))
	filter := sent["query"].(map[string]interface{})["bool"].(map[string]interface{})["filter"].([]interface{})
	assert.Len(t, filter, 2)
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       SearchQuery
		wantFilters int
		wantMust    bool
	}{
		{name: "site only", wantFilters: 1},
		{name: "status and trigger", query: SearchQuery{Status: models.StatusFailed, Trigger: models.TriggerOrderShipped}, wantFilters: 3},
		{name: "free text", query: SearchQuery{Text: "dana"}, wantFilters: 1, wantMust: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := buildSearchQuery("site-1", tt.query)
			boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
			assert.Len(t, boolQuery["filter"], tt.wantFilters)
			_, hasMust := boolQuery["must"]
			assert.Equal(t, tt.wantMust, hasMust)
		})
	}
}

func TestESIndex_EnsureIndexExisting(t *testing.T) {
	idx, tr := newFakeIndex(t, http.StatusOK, ``)
	require.NoError(t, idx.EnsureIndex(context.Background()))
	require.Len(t, tr.requests, 1)
	assert.Equal(t, http.MethodHead, tr.requests[0].Method)
}
