package repo

import "time"

// Bet is the Postgres model of a wager.
type Bet struct {
	ID          string
	UserID      string
	GameType    string
	Method      string
	Number      string
	AmountKyat  int64
	Status      string
	PayoutKyat  int64
	DrawDate    string // "2006-01-02"
	DrawSession string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
