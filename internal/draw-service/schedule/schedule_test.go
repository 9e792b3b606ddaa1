package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
)

func yangonTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(Timezone)
	require.NoError(t, err)
	ts, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	require.NoError(t, err)
	return ts
}

func TestSessionsPerGame(t *testing.T) {
	assert.Equal(t, []settlement.Session{settlement.Morning, settlement.Evening}, Sessions(settlement.TwoD))
	assert.Equal(t, []settlement.Session{settlement.Evening}, Sessions(settlement.ThreeD))
	assert.Equal(t, []settlement.Session{settlement.Evening}, Sessions(settlement.Thai))
	assert.Equal(t, []settlement.Session{settlement.Evening}, Sessions(settlement.Lao))
	assert.Nil(t, Sessions(settlement.GameType("4D")))
}

func TestDrawAt(t *testing.T) {
	at, err := DrawAt(settlement.TwoD, "2025-03-01", settlement.Morning)
	require.NoError(t, err)
	assert.Equal(t, yangonTime(t, "2025-03-01 12:01"), at)

	at, err = DrawAt(settlement.ThreeD, "2025-03-01", settlement.Evening)
	require.NoError(t, err)
	assert.Equal(t, yangonTime(t, "2025-03-01 16:30"), at)

	_, err = DrawAt(settlement.ThreeD, "2025-03-01", settlement.Morning)
	assert.Error(t, err)

	_, err = DrawAt(settlement.TwoD, "01/03/2025", settlement.Morning)
	assert.Error(t, err)
}

func TestNextRollsOverSessionsAndDays(t *testing.T) {
	// before the morning draw: next 2D slot is today's MORNING
	d, err := Next(settlement.TwoD, yangonTime(t, "2025-03-01 09:00"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", d.DrawDate)
	assert.Equal(t, settlement.Morning, d.DrawSession)

	// between draws: next 2D slot is today's EVENING
	d, err = Next(settlement.TwoD, yangonTime(t, "2025-03-01 13:00"))
	require.NoError(t, err)
	assert.Equal(t, settlement.Evening, d.DrawSession)

	// after the evening draw: roll over to tomorrow morning
	d, err = Next(settlement.TwoD, yangonTime(t, "2025-03-01 17:00"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", d.DrawDate)
	assert.Equal(t, settlement.Morning, d.DrawSession)

	// single-session games roll straight to tomorrow evening
	d, err = Next(settlement.Lao, yangonTime(t, "2025-03-01 17:00"))
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", d.DrawDate)
	assert.Equal(t, settlement.Evening, d.DrawSession)
}

func TestUpcomingSortedSoonestFirst(t *testing.T) {
	draws := Upcoming(yangonTime(t, "2025-03-01 09:00"))
	require.Len(t, draws, 4)
	assert.Equal(t, settlement.TwoD, draws[0].GameType) // 12:01 beats the 16:30 pack
	for i := 1; i < len(draws); i++ {
		assert.False(t, draws[i].DrawsAt.Before(draws[i-1].DrawsAt))
	}
}
