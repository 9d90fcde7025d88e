package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/kpiboard/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []schema.HistoryRecord {
	return []schema.HistoryRecord{
		{PersonName: "Alice", PerformanceMonth: "2024-05", TotalScore: 80, FinalScore: 96, EgpScore: 1.2, Scores: `{"Sales":30,"Team upkeep":50}`, SavedAt: 1717200000},
		{PersonName: "Alice", PerformanceMonth: "2024-04", TotalScore: 70, FinalScore: 70, EgpScore: 1, Scores: "", SavedAt: 1714521600},
		{PersonName: "Bob", PerformanceMonth: "2024-05", TotalScore: 60, FinalScore: 48, EgpScore: 0.8, Scores: "corrupt", SavedAt: 1717200000},
	}
}

func TestPerformanceRecordStructTags(t *testing.T) {
	// Verify struct tags are properly defined for parquet schema inference
	s := parquet.SchemaOf(new(PerformanceRecord))
	require.NotNil(t, s)

	for _, colName := range []string{"person_name", "performance_month", "total_score", "final_score", "egp_score", "saved_at", "scores"} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestIndicatorScoreStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(IndicatorScore))
	require.NotNil(t, s)

	for _, colName := range []string{"person_name", "performance_month", "indicator", "position", "score"} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestConvertHistoryRecords(t *testing.T) {
	performance, indicators := ConvertHistoryRecords(sampleHistory())

	require.Len(t, performance, 3)
	assert.Equal(t, "Alice", performance[0].PersonName)
	require.NotNil(t, performance[0].Scores)
	assert.Equal(t, `{"Sales":30,"Team upkeep":50}`, *performance[0].Scores)
	assert.Nil(t, performance[1].Scores, "empty scores are null")
	require.NotNil(t, performance[2].Scores, "undecodable scores are kept verbatim")
	assert.Equal(t, time.Unix(1717200000, 0).UTC(), performance[0].SavedAt)

	assert.Equal(t, []IndicatorScore{
		{PersonName: "Alice", PerformanceMonth: "2024-05", Indicator: "Sales", Position: 0, Score: 30},
		{PersonName: "Alice", PerformanceMonth: "2024-05", Indicator: "Team upkeep", Position: 1, Score: 50},
	}, indicators)

	emptyPerf, emptyInd := ConvertHistoryRecords(nil)
	assert.Empty(t, emptyPerf)
	assert.Empty(t, emptyInd)
}

func TestWritePerformanceRecordsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "history.parquet")
	data, _ := ConvertHistoryRecords(sampleHistory())

	require.NoError(t, WritePerformanceRecordsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[PerformanceRecord](file)
	defer reader.Close()

	readData := make([]PerformanceRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	for i := range data {
		assert.Equal(t, data[i].PersonName, readData[i].PersonName)
		assert.Equal(t, data[i].PerformanceMonth, readData[i].PerformanceMonth)
		assert.Equal(t, data[i].FinalScore, readData[i].FinalScore)
		assert.WithinDuration(t, data[i].SavedAt, readData[i].SavedAt, time.Nanosecond)
		if data[i].Scores == nil {
			assert.Nil(t, readData[i].Scores)
		} else {
			require.NotNil(t, readData[i].Scores)
			assert.Equal(t, *data[i].Scores, *readData[i].Scores)
		}
	}
}

func TestWriteIndicatorScoresParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "indicators.parquet")
	_, data := ConvertHistoryRecords(sampleHistory())

	require.NoError(t, WriteIndicatorScoresParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[IndicatorScore](file)
	defer reader.Close()

	readData := make([]IndicatorScore, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	assert.Equal(t, data, readData[:n])
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WritePerformanceRecordsParquet([]PerformanceRecord{}, outputPath))

	_, err := os.Stat(outputPath)
	assert.NoError(t, err)
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteIndicatorScoresParquet(nil, "/nonexistent/directory/out.parquet")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}
