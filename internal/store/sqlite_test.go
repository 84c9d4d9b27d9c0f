package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/skincare/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "diary.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mustDate(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }

func TestAddAndGetEntry(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddEntry(ctx, domain.DiaryEntry{
		Date:        mustDate(t, "2024-04-01"),
		Symptoms:    []string{"dryness", "赤み"},
		SleepHours:  ptr(6.5),
		StressLevel: ptr(3),
		UsedItems:   []string{"toner"},
		Note:        "windy day",
	})
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)
	assert.False(t, added.CreatedAt.IsZero())

	got, err := s.GetEntry(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, added.ID, got.ID)
	assert.Equal(t, "2024-04-01", got.Date.String())
	assert.Equal(t, []string{"dryness", "赤み"}, got.Symptoms)
	assert.Equal(t, ptr(6.5), got.SleepHours)
	assert.Equal(t, ptr(3), got.StressLevel)
	assert.Equal(t, []string{"toner"}, got.UsedItems)
	assert.Equal(t, "windy day", got.Note)
	assert.WithinDuration(t, added.CreatedAt, got.CreatedAt, time.Millisecond)

	byPrefix, err := s.GetEntry(ctx, added.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, added.ID, byPrefix.ID)
}

func TestAddEntry_OptionalFieldsStayEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddEntry(ctx, domain.DiaryEntry{Date: mustDate(t, "2024-04-02")})
	require.NoError(t, err)

	got, err := s.GetEntry(ctx, added.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Symptoms)
	assert.Nil(t, got.SleepHours)
	assert.Nil(t, got.StressLevel)
	assert.Nil(t, got.UsedItems)
	assert.Empty(t, got.Note)
}

func TestAddEntry_Validation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry domain.DiaryEntry
	}{
		{name: "missing date", entry: domain.DiaryEntry{}},
		{name: "stress too high", entry: domain.DiaryEntry{Date: mustDate(t, "2024-01-01"), StressLevel: ptr(6)}},
		{name: "stress too low", entry: domain.DiaryEntry{Date: mustDate(t, "2024-01-01"), StressLevel: ptr(0)}},
		{name: "negative sleep", entry: domain.DiaryEntry{Date: mustDate(t, "2024-01-01"), SleepHours: ptr(-1.0)}},
		{name: "infinite sleep", entry: domain.DiaryEntry{Date: mustDate(t, "2024-01-01"), SleepHours: ptr(math.Inf(1))}},
	}

	for _, tt := range tests {
		_, err := s.AddEntry(ctx, tt.entry)
		assert.ErrorIs(t, err, domain.ErrValidation, tt.name)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestGetEntry_Errors(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetEntry(ctx, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = s.GetEntry(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	for _, id := range []string{"abc-1", "abc-2"} {
		_, err := s.AddEntry(ctx, domain.DiaryEntry{ID: id, Date: mustDate(t, "2024-01-01")})
		require.NoError(t, err)
	}
	_, err = s.GetEntry(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := s.GetEntry(ctx, "abc-2")
	require.NoError(t, err)
	assert.Equal(t, "abc-2", got.ID)

	for _, id := range []string{"_", "%", "abc_1", "abc%"} {
		_, err = s.GetEntry(ctx, id)
		assert.ErrorIs(t, err, domain.ErrNotFound, id)
	}
	assert.ErrorIs(t, s.DeleteEntry(ctx, "%"), domain.ErrNotFound)
}

func TestListEntries_Order(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, e := range []domain.DiaryEntry{
		{ID: "a", Date: mustDate(t, "2024-03-01"), CreatedAt: base},
		{ID: "b", Date: mustDate(t, "2024-03-03"), CreatedAt: base},
		{ID: "c", Date: mustDate(t, "2024-03-02"), CreatedAt: base},
		{ID: "d", Date: mustDate(t, "2024-03-02"), CreatedAt: base.Add(time.Minute)},
	} {
		_, err := s.AddEntry(ctx, e)
		require.NoError(t, err)
	}

	ids := func(entries []domain.DiaryEntry) []string {
		out := make([]string, len(entries))
		for i, e := range entries {
			out[i] = e.ID
		}
		return out
	}

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "d", "c", "a"}, ids(all))

	page, err := s.ListEntries(ctx, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"d", "c"}, ids(page))

	rest, err := s.ListEntries(ctx, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, ids(rest))
}

func TestSaveAll(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddEntry(ctx, domain.DiaryEntry{ID: "old", Date: mustDate(t, "2024-01-01")})
	require.NoError(t, err)

	err = s.SaveAll(ctx, []domain.DiaryEntry{
		{ID: "n1", Date: mustDate(t, "2024-02-01")},
		{Date: mustDate(t, "2024-02-02"), Symptoms: []string{"redness"}},
	})
	require.NoError(t, err)

	all, err := s.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []string{"redness"}, all[0].Symptoms)
	assert.NotEmpty(t, all[0].ID)
	assert.Equal(t, "n1", all[1].ID)

	// an invalid entry leaves the diary untouched
	err = s.SaveAll(ctx, []domain.DiaryEntry{{ID: "x", Date: mustDate(t, "2024-02-03")}, {ID: "bad"}})
	assert.ErrorIs(t, err, domain.ErrValidation)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.SaveAll(ctx, nil))
	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestDeleteEntry(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	added, err := s.AddEntry(ctx, domain.DiaryEntry{Date: mustDate(t, "2024-05-05")})
	require.NoError(t, err)

	require.NoError(t, s.DeleteEntry(ctx, added.ID[:6]))

	_, err = s.GetEntry(ctx, added.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = s.DeleteEntry(ctx, added.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchEntries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	for _, e := range []domain.DiaryEntry{
		{ID: "1", Date: mustDate(t, "2024-01-01"), Symptoms: []string{"dryness"}},
		{ID: "2", Date: mustDate(t, "2024-01-02"), UsedItems: []string{"ceramide cream"}},
		{ID: "3", Date: mustDate(t, "2024-01-03"), Note: "skin felt dry after the flight"},
		{ID: "4", Date: mustDate(t, "2024-01-04"), Symptoms: []string{"redness"}},
	} {
		_, err := s.AddEntry(ctx, e)
		require.NoError(t, err)
	}

	found, err := s.SearchEntries(ctx, "dry", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "3", found[0].ID)
	assert.Equal(t, "1", found[1].ID)

	found, err = s.SearchEntries(ctx, "cream", 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID)

	found, err = s.SearchEntries(ctx, "acne", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = s.SearchEntries(ctx, "dry", 1, 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)
}
