package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, ExcellentValue},
		{90, ExcellentValue},
		{89.9, GoodValue},
		{75, GoodValue},
		{60, FairValue},
		{59.99, PoorValue},
		{0, PoorValue},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GetPlainLabel(tt.score))
	}
}

func TestGetColorLabel(t *testing.T) {
	assert.Contains(t, GetColorLabel(95), ExcellentValue)
	assert.Contains(t, GetColorLabel(10), PoorValue)
}

func TestSelectOutputFile(t *testing.T) {
	f, err := SelectOutputFile("")
	require.NoError(t, err)
	assert.Equal(t, os.Stdout, f)

	path := filepath.Join(t.TempDir(), "out.txt")
	f, err = SelectOutputFile(path)
	require.NoError(t, err)
	assert.NoError(t, f.Close())
	assert.FileExists(t, path)
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}

func TestDBFilePaths(t *testing.T) {
	assert.NotEqual(t, GetStoreDBFilePath(), GetCacheDBFilePath())
	assert.Contains(t, GetStoreDBFilePath(), ".kpiboard")
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "abc", TruncateText("abc", 10))
	assert.Equal(t, "abcd...", TruncateText("abcdefghij", 7))
	assert.Equal(t, "核销...", TruncateText("核销总目标完成率", 5))
}

func TestParseLogLevel(t *testing.T) {
	l, err := ParseLogLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = NewLogger("nope")
	assert.Error(t, err)
}
