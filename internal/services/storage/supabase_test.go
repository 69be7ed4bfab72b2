package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	storage_go "github.com/supabase-community/storage-go"
)

func newListServer(t *testing.T, names []string) (*httptest.Server, *[]storage_go.ListFileRequestBody) {
	t.Helper()
	var requests []storage_go.ListFileRequestBody

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/storage/v1/object/list/derivatives" {
			http.NotFound(w, r)
			return
		}

		var body storage_go.ListFileRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		requests = append(requests, body)

		page := []storage_go.FileObject{}
		for i := body.Offset; i < len(names) && i < body.Offset+body.Limit; i++ {
			page = append(page, storage_go.FileObject{Name: names[i]})
		}
		_ = json.NewEncoder(w).Encode(page)
	}))
	t.Cleanup(srv.Close)

	return srv, &requests
}

func TestSupabaseGatewayHeadPages(t *testing.T) {
	names := make([]string, 7)
	for i := range names {
		names[i] = fmt.Sprintf("%d.jpg", i)
	}
	srv, requests := newListServer(t, names)

	g := NewSupabaseGateway(srv.URL, "service-key", "derivatives")
	g.pageSize = 3

	meta, err := g.Head(context.Background(), "derivatives", "480w/photos/6.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", meta.ContentType)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/derivatives/480w/photos/6.jpg", meta.RedirectLocation)

	require.Len(t, *requests, 3)
	for i, req := range *requests {
		assert.Equal(t, "480w/photos", req.Prefix)
		assert.Equal(t, 3, req.Limit)
		assert.Equal(t, i*3, req.Offset)
	}
}

func TestSupabaseGatewayHeadNotFound(t *testing.T) {
	srv, requests := newListServer(t, []string{"a.jpg", "b.jpg", "c.jpg"})

	g := NewSupabaseGateway(srv.URL, "service-key", "derivatives")
	g.pageSize = 3

	_, err := g.Head(context.Background(), "derivatives", "480w/photos/z.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, *requests, 2, "a full page is followed by one more")
}
