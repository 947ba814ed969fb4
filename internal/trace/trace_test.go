package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "tick,boat,boat_type,wind_angle,wind_speed,sail_area,speed_ahead,speed_abeam,heel,status"

func sampleRecords(tick uint64) []Record {
	return []Record{
		{Tick: tick, Boat: "Kestrel", BoatType: 0, WindAngle: 45, WindSpeed: 8.5, SailArea: 30, SpeedAhead: 2.25, SpeedAbeam: -0.5, Heel: 12.5, Status: 0},
		{Tick: tick, Boat: "Hulk", BoatType: 7, WindAngle: 45, WindSpeed: 8.5, SailArea: 10, Status: -1},
	}
}

func TestWriter_HeaderWrittenOnce(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(sampleRecords(1)))
	require.NoError(t, w.Write(sampleRecords(2)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, header, lines[0])
	assert.Equal(t, "1,Kestrel,0,45,8.5,30,2.25,-0.5,12.5,0", lines[1])
	assert.Equal(t, "2,Hulk,7,45,8.5,10,0,0,0,-1", lines[4])
	assert.Equal(t, 1, strings.Count(buf.String(), "tick,"))
}

func TestWriter_EmptyBatchWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.Write(nil))
	assert.Empty(t, buf.String())

	require.NoError(t, w.Write(sampleRecords(1)))
	assert.True(t, strings.HasPrefix(buf.String(), header))
}

func TestWriter_NilIsNoop(t *testing.T) {
	var w *Writer
	assert.NoError(t, w.Write(sampleRecords(1)))
	assert.NoError(t, w.Close())
}

func TestRead_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.Write(sampleRecords(3)))
	require.NoError(t, w.Write(sampleRecords(4)))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, sampleRecords(3)[0], got[0])
	assert.Equal(t, sampleRecords(4)[1], got[3])
}

func TestCreate(t *testing.T) {
	t.Run("empty dir disables tracing", func(t *testing.T) {
		w, err := Create("")
		require.NoError(t, err)
		assert.Nil(t, w)
	})

	t.Run("creates nested directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")

		w, err := Create(dir)
		require.NoError(t, err)
		require.NotNil(t, w)

		require.NoError(t, w.Write(sampleRecords(1)))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(filepath.Join(dir, FileName))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), header))
	})
}
