package cmd

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psantana5/benchtime/internal/diag"
	"github.com/psantana5/benchtime/internal/harness"
	"github.com/psantana5/benchtime/internal/report"
)

func TestServeRouter(t *testing.T) {
	metrics := report.NewMetrics()
	latest := harness.NewLatest(5)
	diags := diag.NewLog(nil, 0)

	res := &report.Result{RunID: "r1", Label: "spin", Clock: "monotonic", Ticks: 10, PortableID: 1}
	metrics.RecordResult(res)
	latest.Add(res)
	diags.Warn("platform", "mismatch")

	srv := httptest.NewServer(newServeRouter(metrics, latest, diags))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/results")
	require.NoError(t, err)
	var results []report.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	resp.Body.Close()
	require.Len(t, results, 1)
	assert.Equal(t, "r1", results[0].RunID)

	resp, err = http.Get(srv.URL + "/diagnostics")
	require.NoError(t, err)
	var entries []diag.Entry
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&entries))
	resp.Body.Close()
	require.Len(t, entries, 1)
	assert.Equal(t, "mismatch", entries[0].Message)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err = http.Post(srv.URL+"/health", "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp.Body.Close()
}
