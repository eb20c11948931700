package plex

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-token", Options{}, nil)
}

func TestClient_GetSections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))

		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer>
  <Directory key="1" title="Movies" type="movie">
    <Location path="/movies"/>
  </Directory>
  <Directory key="2" title="TV Shows" type="show" refreshing="1">
    <Location path="/tv"/>
  </Directory>
</MediaContainer>`))
	})

	sections, err := client.GetSections(context.Background())
	require.NoError(t, err, "GetSections")

	require.Len(t, sections, 2)
	assert.Equal(t, "1", sections[0].Key)
	assert.Equal(t, "Movies", sections[0].Title)
	assert.Equal(t, "movie", sections[0].Type)
	assert.True(t, sections[1].Refreshing())
}

func TestClient_ListItems_Pagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections/1/all", r.URL.Path)
		assert.Equal(t, "50", r.Header.Get("X-Plex-Container-Start"))
		assert.Equal(t, "25", r.Header.Get("X-Plex-Container-Size"))
		_, _ = w.Write([]byte(`<?xml version="1.0"?>
<MediaContainer size="2" totalSize="52" offset="50" librarySectionID="1">
  <Video ratingKey="12345" title="Dune" year="2021" type="movie" thumb="/library/metadata/12345/thumb/1" addedAt="1700000000"/>
  <Video ratingKey="12346" title="Heat" year="1995" type="movie"/>
</MediaContainer>`))
	})

	page, err := client.ListItems(context.Background(), "1", 50, 25)
	require.NoError(t, err)

	assert.Equal(t, 52, page.TotalSize)
	assert.Equal(t, 50, page.Offset)
	require.Len(t, page.Items, 2)
	assert.Equal(t, Item{
		RatingKey:        "12345",
		Title:            "Dune",
		Year:             2021,
		Type:             "movie",
		Thumb:            "/library/metadata/12345/thumb/1",
		AddedAt:          1700000000,
		LibrarySectionID: "1",
	}, page.Items[0])
}

func TestClient_ListItems_NoTotalSize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<MediaContainer size="1"><Directory ratingKey="7" title="Lost" type="show"/></MediaContainer>`))
	})

	page, err := client.ListItems(context.Background(), "2", 0, 50)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalSize)
}

func TestClient_ListChildren(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/7/children", r.URL.Path)
		_, _ = w.Write([]byte(`<MediaContainer size="2" parentTitle="Lost" librarySectionID="2">
  <Directory ratingKey="71" title="Season 1" index="1" type="season" thumb="/t/71" addedAt="1600000000"/>
  <Directory ratingKey="70" title="Specials" index="0" type="season" thumb="/t/70"/>
</MediaContainer>`))
	})

	items, err := client.ListChildren(context.Background(), "7")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lost", items[0].ParentTitle)
	assert.Equal(t, 1, items[0].Index)
	assert.Equal(t, "2", items[1].LibrarySectionID)
}

func TestClient_ListCollections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/sections/1/collections", r.URL.Path)
		_, _ = w.Write([]byte(`<MediaContainer size="1" totalSize="1">
  <Directory ratingKey="500" title="Alien" type="collection" subtype="movie" thumb="/t/500" addedAt="1650000000"/>
</MediaContainer>`))
	})

	page, err := client.ListCollections(context.Background(), "1", 0, 50)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "movie", page.Items[0].Subtype)
}

func TestClient_ErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.GetSections(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetMetadata(context.Background(), "1")
	assert.True(t, IsNotFound(err))
}

func TestClient_MalformedXML(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<MediaContainer`))
	})

	_, err := client.GetSections(context.Background())
	assert.Error(t, err)
}

func TestClient_ConnectionError(t *testing.T) {
	client := NewClient("http://localhost:1", "token", Options{ConnectTimeout: time.Second}, nil)
	_, err := client.GetSections(context.Background())
	assert.Error(t, err, "expected connection error")
}

func TestClient_FetchImage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/library/metadata/1/thumb/99", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("X-Plex-Token"))
		_, _ = w.Write([]byte("\xff\xd8\xffposter"))
	})

	data, err := client.FetchImage(context.Background(), "library/metadata/1/thumb/99")
	require.NoError(t, err)
	assert.Equal(t, []byte("\xff\xd8\xffposter"), data)

	_, err = client.FetchImage(context.Background(), "")
	assert.True(t, IsNotFound(err))
}

func TestClient_FetchImage_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(r.URL.Path[len("/img/"):]))
	}))
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "test-token", Options{MaxImageBytes: 4}, nil)

	data, err := client.FetchImage(context.Background(), "/img/abcd")
	require.NoError(t, err, "exactly at the limit")
	assert.Equal(t, []byte("abcd"), data)

	data, err = client.FetchImage(context.Background(), "/img/abcde")
	require.ErrorIs(t, err, ErrImageTooLarge)
	assert.Nil(t, data, "no truncated bytes")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "image", apiErr.Op)
}

func TestClient_UploadPoster_CollectionFallback(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "img", string(body))

		if r.Method == http.MethodPost && r.URL.Path == "/library/metadata/500/posters" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.UploadPoster(context.Background(), "500", []byte("img"), true)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"POST /library/collections/500/posters",
		"PUT /library/collections/500/posters",
		"POST /library/metadata/500/posters",
	}, calls)
}

func TestClient_UploadPoster_AllFail(t *testing.T) {
	count := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		count++
		if count == 4 {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	err := client.UploadPoster(context.Background(), "500", []byte("img"), true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAllStrategiesFailed)
	assert.Equal(t, 4, count)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode, "last failure is reported")
}

func TestClient_UploadPoster_Item(t *testing.T) {
	count := 0
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		count++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/metadata/12345/posters", r.URL.Path)
	})

	require.NoError(t, client.UploadPoster(context.Background(), "12345", []byte("img"), false))
	assert.Equal(t, 1, count)
}

func TestClient_LockPoster(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/library/sections/1/all", r.URL.Path)
		assert.Equal(t, "18", r.URL.Query().Get("type"))
		assert.Equal(t, "500", r.URL.Query().Get("id"))
		assert.Equal(t, "1", r.URL.Query().Get("thumb.locked"))
	})

	require.NoError(t, client.LockPoster(context.Background(), "1", "500", "collection"))
	assert.Error(t, client.LockPoster(context.Background(), "1", "500", "episode"))
}

func TestClient_GetIdentity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<MediaContainer friendlyName="velcro" version="1.42.2.10156">
</MediaContainer>`))
	})

	identity, err := client.GetIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "velcro", identity.Name)
	assert.Equal(t, "1.42.2.10156", identity.Version)
}
