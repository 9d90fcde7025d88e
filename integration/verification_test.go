//go:build basic

// Package integration contains integration tests for kpiboard.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database backends: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scoreOutput struct {
	Month  string `json:"month"`
	Result struct {
		Items []struct {
			ID    string  `json:"id"`
			Kind  string  `json:"kind"`
			Score float64 `json:"score"`
		} `json:"items"`
		ProcessTotal    float64 `json:"process_total"`
		ManagementTotal float64 `json:"management_total"`
		TotalScore      float64 `json:"total_score"`
		Coefficient     float64 `json:"coefficient"`
		FinalScore      float64 `json:"final_score"`
	} `json:"result"`
}

type historyOutput struct {
	PerformanceMonth string  `json:"performance_month"`
	FinalScore       float64 `json:"final_score"`
	EgpScore         float64 `json:"egp_score"`
}

// TestScoreVerification imports the seed into SQLite, scores a month through
// the CLI and checks the totals add up.
func TestScoreVerification(t *testing.T) {
	_, err := runKpiboard(t, nil, "import", seedPath(t))
	require.NoError(t, err)

	out, err := runKpiboard(t, nil, "score", "Alice",
		"--month", "2024-05", "--output", "json",
		"--set", "sales_total=5000",
		"--set", "quality_last_month=21",
		"--set", "upkeep_last_month=12.5",
		"--coefficient", "1.2")
	require.NoError(t, err)

	var sheet scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &sheet))
	assert.Equal(t, "2024-05", sheet.Month)
	require.Len(t, sheet.Result.Items, 5)

	var sum float64
	for _, item := range sheet.Result.Items {
		sum += item.Score
	}
	assert.InDelta(t, sheet.Result.TotalScore, sum, 1e-9, "items add up to the total")
	assert.InDelta(t, sheet.Result.TotalScore, sheet.Result.ProcessTotal+sheet.Result.ManagementTotal, 1e-9)
	assert.Equal(t, 1.2, sheet.Result.Coefficient)
	assert.InDelta(t, sheet.Result.TotalScore*1.2, sheet.Result.FinalScore, 1e-9)
	assert.InDelta(t, 10.0, sheet.Result.Items[0].Score, 1e-9, "20*5000/10000")
}

// TestSaveAndHistory saves a month and reads it back through history.
func TestSaveAndHistory(t *testing.T) {
	_, err := runKpiboard(t, nil, "import", seedPath(t))
	require.NoError(t, err)

	_, err = runKpiboard(t, nil, "save", "Bob", "--month", "2024-04", "--set", "sales_total=2000", "--coefficient", "0.8", "--output", "json")
	require.NoError(t, err)

	out, err := runKpiboard(t, nil, "history", "Bob", "--output", "json")
	require.NoError(t, err)

	var history []historyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &history))
	require.Len(t, history, 1)
	assert.Equal(t, "2024-04", history[0].PerformanceMonth)
	assert.Equal(t, 0.8, history[0].EgpScore)
	assert.InDelta(t, 3.2, history[0].FinalScore, 1e-9, "20*2000/10000*0.8")
}

// TestToggleFlipsMode switches the verification item to AUTO and checks the
// derived score shows up.
func TestToggleFlipsMode(t *testing.T) {
	_, err := runKpiboard(t, nil, "import", seedPath(t))
	require.NoError(t, err)

	_, err = runKpiboard(t, nil, "toggle", "Alice", "4", "--month", "2024-05", "--output", "json")
	require.NoError(t, err)

	out, err := runKpiboard(t, nil, "score", "Alice", "--month", "2024-05", "--output", "json")
	require.NoError(t, err)

	var sheet scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &sheet))
	require.Len(t, sheet.Result.Items, 5)
	assert.InDelta(t, 30.0, sheet.Result.Items[3].Score, 1e-9, "100000/10000*30/10")
}

// TestVersionShort checks the short form prints only the release version.
func TestVersionShort(t *testing.T) {
	out, err := runKpiboard(t, nil, "version", "--short")
	require.NoError(t, err, out)
	assert.Equal(t, "dev\n", out)

	out, err = runKpiboard(t, nil, "version")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Coefficients: [1.2 1 0.8 0]")
	assert.Contains(t, out, "Month format: 2006-01")
}
