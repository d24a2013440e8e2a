package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFakeES serves handler behind the product header the client insists on.
func newFakeES(t *testing.T, handler http.HandlerFunc) *UserIndex {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewUserIndex(es, "users")
}

func TestUserIndex_Search(t *testing.T) {
	var gotBody map[string]any
	idx := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.URL.Path, "/users/_search"), r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_, _ = io.WriteString(w, `{"hits":{"hits":[
			{"_id":"1","_source":{"id":1,"username":"alice","email":"alice@example.com"}},
			{"_id":"2","_source":{"id":2,"username":"alicia","email":"alicia@example.com"}}
		]}}`)
	})

	docs, err := idx.Search(context.Background(), "ali", 5)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, int64(1), docs[0].ID)
	assert.Equal(t, "alicia", docs[1].Username)
	assert.EqualValues(t, 5, gotBody["size"])
}

func TestUserIndex_IndexAndDelete(t *testing.T) {
	var paths []string
	idx := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"result":"not_found"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"result":"created"}`)
	})

	require.NoError(t, idx.Index(context.Background(), UserDocument{ID: 7, Username: "alice", Email: "alice@example.com"}))
	require.NoError(t, idx.Delete(context.Background(), 7))
	assert.Equal(t, []string{"PUT /users/_doc/7", "DELETE /users/_doc/7"}, paths)
}

func TestUserIndex_SearchError(t *testing.T) {
	idx := newFakeES(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":"boom"}`)
	})

	_, err := idx.Search(context.Background(), "x", 10)
	assert.Error(t, err)
}
