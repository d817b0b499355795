package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"damage-assessment/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRestRowStore_Select(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/image_register", r.URL.Path)
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		assert.Equal(t, "eq.JOB-001", r.URL.Query().Get("job_id"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":7,"job_id":"JOB-001","location":"Kitchen","inc_obs":null}]`))
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL+"/", "anon-key", 5*time.Second, zap.NewNop())
	rows, err := store.Select(context.Background(), "image_register", "job_id", "JOB-001")

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, json.Number("7"), rows[0]["id"])
	assert.Equal(t, "Kitchen", rows[0]["location"])
	assert.Nil(t, rows[0]["inc_obs"])
}

func TestRestRowStore_SelectEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL, "k", time.Second, zap.NewNop())
	rows, err := store.Select(context.Background(), "t", "job_id", "none")

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRestRowStore_SelectErrorMessagePassthrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"42P01","message":"relation \"public.missing\" does not exist","details":null,"hint":null}`))
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL, "k", time.Second, zap.NewNop())
	_, err := store.Select(context.Background(), "missing", "job_id", "JOB-001")

	require.Error(t, err)
	assert.Equal(t, `relation "public.missing" does not exist`, err.Error())

	var restErr *RestError
	require.True(t, errors.As(err, &restErr))
	assert.Equal(t, http.StatusNotFound, restErr.StatusCode)
	assert.Equal(t, "42P01", restErr.Code)
}

func TestRestRowStore_SelectNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL, "k", time.Second, zap.NewNop())
	_, err := store.Select(context.Background(), "t", "job_id", "x")

	require.Error(t, err)
	assert.Equal(t, "row store returned HTTP 502: upstream down", err.Error())
}

func TestRestRowStore_Update(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/rest/v1/image_register", r.URL.Path)
		assert.Equal(t, "eq.42", r.URL.Query().Get("id"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL, "k", time.Second, zap.NewNop())
	err := store.Update(context.Background(), "image_register", "id", "42", map[string]any{"inc_report": true})

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"inc_report": true}, got)
}

func TestRestRowStore_UpdateError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
	}))
	defer srv.Close()

	store := NewRestRowStore(srv.URL, "bad", time.Second, zap.NewNop())
	err := store.Update(context.Background(), "t", "id", "1", map[string]any{"location": "Attic"})

	require.Error(t, err)
	assert.Equal(t, "Invalid API key", err.Error())
}

func TestRestRowStore_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	store := NewRestRowStore(url, "k", time.Second, zap.NewNop())
	_, err := store.Select(context.Background(), "t", "job_id", "x")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to call row store")
}

func TestRestRowStoreFactory_Open(t *testing.T) {
	f := NewRestRowStoreFactory(time.Second, zap.NewNop())
	store, err := f.Open(domain.Configuration{URL: "https://x.supabase.co", APIKey: "k"})

	require.NoError(t, err)
	assert.IsType(t, &RestRowStore{}, store)
}
