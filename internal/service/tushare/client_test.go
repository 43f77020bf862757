package tushare

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "FundLens/pkg/http"
)

func navServer(t *testing.T, handle func(w http.ResponseWriter, req request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handle(w, req)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestQueryDecodesRows(t *testing.T) {
	var got request
	srv := navServer(t, func(w http.ResponseWriter, req request) {
		got = req
		writeJSON(w, map[string]any{
			"code": 0,
			"msg":  "",
			"data": map[string]any{
				"fields": []string{"ts_code", "ann_date", "unit_nav"},
				"items": [][]any{
					{"110011.OF", "20240103", 1.2345},
					{"110011.OF", "20240102", 1.2},
				},
			},
		})
	})

	c := NewClient(srv.URL, "secret")
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows, err := c.FundNAV(context.Background(), "110011.OF", start, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, APIFundNAV, got.APIName)
	assert.Equal(t, "secret", got.Token)
	assert.Equal(t, "110011.OF", got.Params["ts_code"])
	assert.Equal(t, "20240101", got.Params["start_date"])
	_, hasEnd := got.Params["end_date"]
	assert.False(t, hasEnd)

	require.Len(t, rows, 2)
	assert.Equal(t, "20240103", rows[0]["ann_date"])
	assert.Equal(t, json.Number("1.2345"), rows[0]["unit_nav"])
}

func TestQueryVendorError(t *testing.T) {
	srv := navServer(t, func(w http.ResponseWriter, _ request) {
		writeJSON(w, map[string]any{"code": 40203, "msg": "quota exhausted"})
	})
	c := NewClient(srv.URL, "secret")

	_, err := c.IndexDaily(context.Background(), "000300.SH", time.Time{}, time.Time{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 40203, apiErr.Code)
	assert.Equal(t, APIIndexDaily, apiErr.API)
}

func TestQueryRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := navServer(t, func(w http.ResponseWriter, _ request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		writeJSON(w, map[string]any{"code": 0, "data": map[string]any{"fields": []string{"x"}, "items": [][]any{{1}}}})
	})
	c := NewClient(srv.URL, "secret", WithRetries(3, time.Millisecond))

	rows, err := c.Query(context.Background(), APIFundBasic, nil, "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestQueryDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := navServer(t, func(w http.ResponseWriter, _ request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})
	c := NewClient(srv.URL, "secret", WithRetries(3, time.Millisecond))

	_, err := c.Query(context.Background(), APIFundBasic, nil, "")
	var se *xhttp.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadRequest, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestQueryEmptyData(t *testing.T) {
	srv := navServer(t, func(w http.ResponseWriter, _ request) {
		writeJSON(w, map[string]any{"code": 0, "data": nil})
	})
	rows, err := NewClient(srv.URL, "secret").FundDiv(context.Background(), "110011.OF")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestQueryRequiresToken(t *testing.T) {
	_, err := NewClient("http://127.0.0.1:0", "").Query(context.Background(), APIFundNAV, nil, "")
	assert.Error(t, err)
}
