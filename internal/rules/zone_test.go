package rules

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T, name string) *Zone {
	t.Helper()
	p, err := Open(afero.NewMemMapFs(), Options{Kind: KindEmbedded, Version: "test"})
	require.NoError(t, err)
	z, err := p.LoadZone(name)
	require.NoError(t, err)
	return z
}

func wall(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC)
}

func TestTransitionAtNewYork(t *testing.T) {
	z := loadEmbedded(t, "America/New_York")

	var tests = []struct {
		name    string
		wall    time.Time
		found   bool
		gap     bool
		instant time.Time
	}{
		{name: "before spring forward", wall: wall(2024, time.March, 10, 1, 45)},
		{name: "gap start", wall: wall(2024, time.March, 10, 2, 0), found: true, gap: true, instant: wall(2024, time.March, 10, 7, 0)},
		{name: "gap middle", wall: wall(2024, time.March, 10, 2, 30), found: true, gap: true, instant: wall(2024, time.March, 10, 7, 0)},
		{name: "gap end", wall: wall(2024, time.March, 10, 3, 0)},
		{name: "before fall back", wall: wall(2024, time.November, 3, 0, 45)},
		{name: "overlap start", wall: wall(2024, time.November, 3, 1, 0), found: true, instant: wall(2024, time.November, 3, 6, 0)},
		{name: "overlap middle", wall: wall(2024, time.November, 3, 1, 30), found: true, instant: wall(2024, time.November, 3, 6, 0)},
		{name: "overlap end", wall: wall(2024, time.November, 3, 2, 0)},
		{name: "summer", wall: wall(2024, time.July, 1, 12, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, ok := z.TransitionAt(tt.wall)
			require.Equal(t, tt.found, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.instant, tr.Instant)
			assert.Equal(t, tt.gap, tr.IsGap())
			assert.Equal(t, !tt.gap, tr.IsOverlap())
		})
	}
}

func TestTransitionBoundaries(t *testing.T) {
	z := loadEmbedded(t, "America/New_York")

	tr, ok := z.TransitionAt(wall(2024, time.March, 10, 2, 15))
	require.True(t, ok)
	assert.Equal(t, -18000, tr.OffsetBefore)
	assert.Equal(t, -14400, tr.OffsetAfter)
	assert.Equal(t, wall(2024, time.March, 10, 2, 0), tr.DateTimeBefore())
	assert.Equal(t, wall(2024, time.March, 10, 3, 0), tr.DateTimeAfter())

	tr, ok = z.TransitionAt(wall(2024, time.November, 3, 1, 15))
	require.True(t, ok)
	assert.Equal(t, -14400, tr.OffsetBefore)
	assert.Equal(t, -18000, tr.OffsetAfter)
	assert.Equal(t, wall(2024, time.November, 3, 2, 0), tr.DateTimeBefore())
	assert.Equal(t, wall(2024, time.November, 3, 1, 0), tr.DateTimeAfter())
}

func TestTransitionAtHalfHourShift(t *testing.T) {
	z := loadEmbedded(t, "Australia/Lord_Howe")

	// Lord Howe springs forward by thirty minutes at 02:00 on the first
	// Sunday of October.
	tr, ok := z.TransitionAt(wall(2024, time.October, 6, 2, 15))
	require.True(t, ok)
	assert.True(t, tr.IsGap())
	assert.Equal(t, 30*60, tr.OffsetAfter-tr.OffsetBefore)

	_, ok = z.TransitionAt(wall(2024, time.October, 6, 2, 30))
	assert.False(t, ok)
}

func TestTransitionAtFixedZone(t *testing.T) {
	z := NewZone("Fixed", time.FixedZone("X", 3600))
	_, ok := z.TransitionAt(wall(2024, time.March, 10, 2, 30))
	assert.False(t, ok)
	assert.Empty(t, z.Transitions(wall(2000, 1, 1, 0, 0), wall(2030, 1, 1, 0, 0)))
}

func TestTransitionsInYear(t *testing.T) {
	z := loadEmbedded(t, "Europe/Paris")

	txs := z.Transitions(wall(2024, time.January, 1, 0, 0), wall(2025, time.January, 1, 0, 0))
	require.Len(t, txs, 2)
	assert.True(t, txs[0].IsGap())
	assert.Equal(t, wall(2024, time.March, 31, 1, 0), txs[0].Instant)
	assert.True(t, txs[1].IsOverlap())
	assert.Equal(t, wall(2024, time.October, 27, 1, 0), txs[1].Instant)
}

func TestTransitionCovers(t *testing.T) {
	gap := Transition{Instant: wall(2024, time.March, 10, 7, 0), OffsetBefore: -18000, OffsetAfter: -14400}
	assert.False(t, gap.Covers(wall(2024, time.March, 10, 1, 59)))
	assert.True(t, gap.Covers(wall(2024, time.March, 10, 2, 0)))
	assert.False(t, gap.Covers(wall(2024, time.March, 10, 3, 0)))

	same := Transition{Instant: wall(2024, time.March, 10, 7, 0), OffsetBefore: 0, OffsetAfter: 0}
	assert.False(t, same.IsGap())
	assert.False(t, same.IsOverlap())
	assert.False(t, same.Covers(wall(2024, time.March, 10, 7, 0)))
}
