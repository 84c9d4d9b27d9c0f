package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportJSONL(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	input := strings.Join([]string{
		`{"id":"legacy-1","created_at":"2024-02-10T21:30:00.123456","symptoms":["乾燥"],"sleep_hours":6,"stress":4,"products_used":["化粧水"],"memo":"寒い日"}`,
		``,
		`{"date":"2024-02-11","symptoms":["redness"],"stress_level_1to5":2,"used_items":["serum"],"condition_summary":"calm"}`,
		`{"date":"2024-02-12","stress_level":3,"note":"plain"}`,
		`not json`,
		`{"date":"2024-02-13","stress":9}`,
		`{"symptoms":["no date at all"]}`,
	}, "\n")

	res, err := s.ImportJSONL(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 3, Skipped: 3}, res)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	plain, agent, web := all[0], all[2], all[1]

	assert.Equal(t, "2024-02-12", plain.Date.String())
	assert.Equal(t, ptr(3), plain.StressLevel)
	assert.Equal(t, "plain", plain.Note)

	assert.Equal(t, "2024-02-11", web.Date.String())
	assert.Equal(t, ptr(2), web.StressLevel)
	assert.Equal(t, []string{"serum"}, web.UsedItems)
	assert.Equal(t, "calm", web.Note)

	assert.NotEqual(t, "legacy-1", agent.ID)
	assert.Equal(t, "2024-02-10", agent.Date.String())
	assert.Equal(t, 21, agent.CreatedAt.Hour())
	assert.Equal(t, []string{"乾燥"}, agent.Symptoms)
	assert.Equal(t, ptr(6.0), agent.SleepHours)
	assert.Equal(t, ptr(4), agent.StressLevel)
	assert.Equal(t, []string{"化粧水"}, agent.UsedItems)
	assert.Equal(t, "寒い日", agent.Note)
}

func TestImportJSONL_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	res, err := s.ImportJSONL(context.Background(), strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{}, res)
}
