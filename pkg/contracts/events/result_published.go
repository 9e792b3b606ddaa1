package events

import "time"

// Event emitted by draw-service when an operator publishes a winning number.
// Consumed by the settlement-worker to settle all pending bets of the draw.
type ResultPublished struct {
	ResultID      string    `json:"result_id"`
	GameType      string    `json:"game_type"`    // "2D" | "3D" | "THAI" | "LAO"
	DrawDate      string    `json:"draw_date"`    // "2006-01-02"
	DrawSession   string    `json:"draw_session"` // "MORNING" | "EVENING"
	WinningNumber string    `json:"winning_number"`
	PublishedBy   string    `json:"published_by,omitempty"`
	Ts            time.Time `json:"ts"`
}
