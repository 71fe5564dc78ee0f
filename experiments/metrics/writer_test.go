package metrics

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mnk/game"

	"github.com/stretchr/testify/require"
)

func TestWriter(t *testing.T) {
	t.Run("writes a header and one row per record", func(t *testing.T) {
		w, err := NewWriter(t.TempDir(), "depth")
		require.NoError(t, err)

		require.NoError(t, w.WriteAgentConfigs([]AgentConfig{
			{ID: 1, Depth: 1, Goroutines: 1},
			{ID: 2, Depth: 4, Goroutines: 2, Duration: time.Second, Memoize: true},
		}))
		require.NoError(t, w.WriteMoveRecords([]MoveRecord{
			{Game: 1, MoveMetric: MoveMetric{Step: 1, Agent: 1, Move: game.NewMove(1, 1), Score: 2}},
		}))

		f, err := os.Open(filepath.Join(w.Dir(), "agent_configs.csv"))
		require.NoError(t, err)
		defer f.Close()
		records, err := csv.NewReader(f).ReadAll()
		require.NoError(t, err)
		require.Equal(t, [][]string{
			{"id", "depth", "goroutines", "duration", "nodes", "memoize"},
			{"1", "1", "1", "0s", "0", "false"},
			{"2", "4", "2", "1s", "0", "true"},
		}, records)
	})

	t.Run("reports failures of the underlying file", func(t *testing.T) {
		if _, err := os.Stat("/dev/full"); err != nil {
			t.Skip("no /dev/full")
		}
		w, err := NewWriter(t.TempDir(), "depth")
		require.NoError(t, err)
		require.NoError(t, os.Symlink("/dev/full", filepath.Join(w.Dir(), "game_records.csv")))

		err = w.WriteGameRecords([]GameRecord{{ID: 1, Agent1: 1, Agent2: 2}})
		require.ErrorContains(t, err, "game_records.csv")
	})
}
