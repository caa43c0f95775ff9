package engine

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestERPNextList_EncodesFiltersAndFields(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		assert.Equal(t, "token key-1:secret-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[{"name":"Main - AC"},{"name":"POS - AC"}]}`))
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "key-1", "secret-1", nil)
	docs, err := c.List(context.Background(), "Warehouse", ListOptions{
		Filters: []Filter{Eq("company", "Acme Coffee")},
		Fields:  []string{"name"},
		Limit:   5,
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Main - AC", docs[0].Name())
	assert.Equal(t, "/api/resource/Warehouse", gotPath)
	assert.Equal(t, `[["company","=","Acme Coffee"]]`, gotQuery["filters"][0])
	assert.Equal(t, `["name"]`, gotQuery["fields"][0])
	assert.Equal(t, "5", gotQuery["limit_page_length"][0])
}

func TestERPNextGet_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"exc_type":"DoesNotExistError"}`))
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "k", "s", nil)
	_, err := c.Get(context.Background(), "Company", "Nope Ltd")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnreachable(err))
}

func TestERPNextCreate_SendsDocumentAndDecodesData(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/resource/Company", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"name":"Acme Coffee","country":"Kenya"}}`))
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "k", "s", nil)
	doc, err := c.Create(context.Background(), "Company", Resource{
		"company_name": "Acme Coffee",
		"country":      "Kenya",
	})

	require.NoError(t, err)
	assert.Equal(t, "Acme Coffee", doc.Name())
	assert.Equal(t, "Acme Coffee", gotBody["company_name"])
}

func TestERPNextUpdate_UsesPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/resource/Selling Settings/Selling Settings", r.URL.Path)
		w.Write([]byte(`{"data":{"name":"Selling Settings"}}`))
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "k", "s", nil)
	_, err := c.Update(context.Background(), "Selling Settings", "Selling Settings", Resource{
		"cust_master_name": "Customer Name",
	})

	require.NoError(t, err)
}

func TestERPNextCreate_ConflictSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"exc_type":"DuplicateEntryError"}`))
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "k", "s", nil)
	_, err := c.Create(context.Background(), "Warehouse", Resource{"warehouse_name": "Main"})

	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestERPNextPing_AuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/method/frappe.auth.get_logged_user", r.URL.Path)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewERPNextClient(srv.URL, "bad", "creds", nil)
	err := c.Ping(context.Background())

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
}

func TestERPNextPing_Unreachable(t *testing.T) {
	c := NewERPNextClient("http://127.0.0.1:1", "k", "s", nil)
	err := c.Ping(context.Background())

	require.Error(t, err)
	assert.True(t, IsUnreachable(err))
}
