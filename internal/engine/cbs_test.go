package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCBSList_EqualityFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/branches", r.URL.Path)
		assert.Equal(t, "Acme Sacco", r.URL.Query().Get("organization"))
		assert.Equal(t, "key-1", r.Header.Get("X-API-Key"))
		assert.Equal(t, "secret-1", r.Header.Get("X-API-Secret"))
		w.Write([]byte(`{"items":[{"name":"HQ"}]}`))
	}))
	defer srv.Close()

	c := NewCBSClient(srv.URL, "key-1", "secret-1", nil)
	docs, err := c.List(context.Background(), "branches", ListOptions{
		Filters: []Filter{Eq("organization", "Acme Sacco")},
	})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "HQ", docs[0].Name())
}

func TestCBSList_RejectsNonEqualityFilter(t *testing.T) {
	c := NewCBSClient("http://unused", "k", "s", nil)
	_, err := c.List(context.Background(), "accounts", ListOptions{
		Filters: []Filter{{Field: "balance", Op: ">", Value: 0}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "equality only")
}

func TestCBSCreate_DecodesDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"name":"Acme Sacco","type":"organization"}`))
	}))
	defer srv.Close()

	c := NewCBSClient(srv.URL, "k", "s", nil)
	doc, err := c.Create(context.Background(), "organizations", Resource{"name": "Acme Sacco"})

	require.NoError(t, err)
	assert.Equal(t, "Acme Sacco", doc.Name())
}

func TestCBSUpdate_UsesPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/api/v1/organizations/Acme Sacco", r.URL.Path)
		w.Write([]byte(`{"name":"Acme Sacco"}`))
	}))
	defer srv.Close()

	c := NewCBSClient(srv.URL, "k", "s", nil)
	_, err := c.Update(context.Background(), "organizations", "Acme Sacco", Resource{"status": "active"})

	require.NoError(t, err)
}

func TestCBSPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewCBSClient(srv.URL, "k", "s", nil)
	require.NoError(t, c.Ping(context.Background()))
}
