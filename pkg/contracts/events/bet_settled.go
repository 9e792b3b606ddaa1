package events

import "time"

// Event emitted by the settlement-worker after a bet reaches a terminal status.
type BetSettled struct {
	BetID         string    `json:"bet_id"`
	UserID        string    `json:"user_id"`
	ResultID      string    `json:"result_id"`
	GameType      string    `json:"game_type"`
	Status        string    `json:"status"` // "WON" | "LOST" | "SETTLEMENT_FAILED"
	WinningNumber string    `json:"winning_number"`
	PayoutKyat    int64     `json:"payout_kyat"`
	Ts            time.Time `json:"ts"`
}
