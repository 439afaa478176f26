package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codecraftkids/codecraft-api/pkg/helpers"
)

// fakeES answers index and search calls the way a single-node cluster would.
type fakeES struct {
	mu      sync.Mutex
	indexed map[string]userDoc
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(r.URL.Path, "/_doc/"):
		var doc userDoc
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.indexed[doc.ID] = doc
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	case strings.HasSuffix(r.URL.Path, "/_search"):
		body, _ := io.ReadAll(r.Body)
		type hit struct {
			Source userDoc `json:"_source"`
		}
		var hits []hit
		for _, d := range f.indexed {
			if strings.Contains(string(body), strings.ToLower(d.Name)) {
				hits = append(hits, hit{Source: d})
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"hits": map[string]any{"hits": hits}})
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{}`)
	}
}

func TestSearchUsersFindsIndexedLearners(t *testing.T) {
	fake := &fakeES{indexed: map[string]userDoc{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	es, err := helpers.NewESClient([]string{srv.URL}, "", "")
	require.NoError(t, err)

	svc, _, _ := newTestService(t)
	svc.ES = es
	svc.ESUsersIndex = "users"

	u := signup(t, svc, "ada", "ada@example.com")
	_, err = svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{CompletedLevel: ptr(1)})
	require.NoError(t, err)

	fake.mu.Lock()
	doc := fake.indexed[u.ID]
	fake.mu.Unlock()
	assert.Equal(t, []int{1}, doc.CompletedLevels)
	assert.Equal(t, "🐍", doc.CurrentBadge)

	hits, err := svc.SearchUsers(context.Background(), "ada", 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, SearchHit{ID: u.ID, Name: "ada", CurrentBadge: "🐍", CompletedLevels: []int{1}}, hits[0])

	hits, err = svc.SearchUsers(context.Background(), "   ", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchUsersWithoutElasticsearch(t *testing.T) {
	svc, _, _ := newTestService(t)
	hits, err := svc.SearchUsers(context.Background(), "ada", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
