package schedule

import (
	"fmt"
	"time"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
)

// All draw times are wall-clock times in Yangon, regardless of where
// the services run. 2D follows the Thai stock exchange sessions (12:01
// and 16:30); 3D, THAI and LAO draw once, in the evening.
const Timezone = "Asia/Yangon"

var yangon = mustLoad(Timezone)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Errorf("load timezone %s: %w", name, err))
	}
	return loc
}

type drawTime struct {
	hour, min int
}

var drawTimes = map[settlement.GameType]map[settlement.Session]drawTime{
	settlement.TwoD: {
		settlement.Morning: {12, 1},
		settlement.Evening: {16, 30},
	},
	settlement.ThreeD: {settlement.Evening: {16, 30}},
	settlement.Thai:   {settlement.Evening: {16, 30}},
	settlement.Lao:    {settlement.Evening: {16, 30}},
}

// Sessions returns the draw sessions a game runs each day, in draw order.
func Sessions(game settlement.GameType) []settlement.Session {
	if game == settlement.TwoD {
		return []settlement.Session{settlement.Morning, settlement.Evening}
	}
	if _, ok := drawTimes[game]; !ok {
		return nil
	}
	return []settlement.Session{settlement.Evening}
}

// DrawAt returns the draw instant of (game, drawDate, session) in Yangon
// time. Betting closes at this instant.
func DrawAt(game settlement.GameType, drawDate string, session settlement.Session) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", drawDate, yangon)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse draw date %q: %w", drawDate, err)
	}
	times, ok := drawTimes[game]
	if !ok {
		return time.Time{}, settlement.ErrUnknownGame
	}
	dt, ok := times[session]
	if !ok {
		return time.Time{}, fmt.Errorf("game %s has no %s draw", game, session)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), dt.hour, dt.min, 0, 0, yangon), nil
}

// Draw is one upcoming draw slot.
type Draw struct {
	GameType    settlement.GameType `json:"game_type"`
	DrawDate    string              `json:"draw_date"`
	DrawSession settlement.Session  `json:"draw_session"`
	DrawsAt     time.Time           `json:"draws_at"`
}

// Next returns the first draw of the game strictly after now.
func Next(game settlement.GameType, now time.Time) (Draw, error) {
	if _, ok := drawTimes[game]; !ok {
		return Draw{}, settlement.ErrUnknownGame
	}
	local := now.In(yangon)
	// Look at today and tomorrow; at least one slot is always ahead.
	for _, dayOffset := range []int{0, 1} {
		date := local.AddDate(0, 0, dayOffset).Format("2006-01-02")
		for _, sess := range Sessions(game) {
			at, err := DrawAt(game, date, sess)
			if err != nil {
				return Draw{}, err
			}
			if at.After(now) {
				return Draw{GameType: game, DrawDate: date, DrawSession: sess, DrawsAt: at}, nil
			}
		}
	}
	return Draw{}, fmt.Errorf("no upcoming draw for %s", game)
}

// Upcoming lists the next draws of every game, soonest first.
func Upcoming(now time.Time) []Draw {
	games := []settlement.GameType{settlement.TwoD, settlement.ThreeD, settlement.Thai, settlement.Lao}
	out := make([]Draw, 0, len(games))
	for _, g := range games {
		d, err := Next(g, now)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	// small fixed slice, insertion sort is fine
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].DrawsAt.Before(out[j-1].DrawsAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
