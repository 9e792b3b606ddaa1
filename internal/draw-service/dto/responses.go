package dto

type SessionResponse struct {
	GameType    string `json:"game_type"`
	DrawDate    string `json:"draw_date"`
	DrawSession string `json:"draw_session"`
	Status      string `json:"status"` // OPEN | CLOSED
	ClosesAt    string `json:"closes_at"`
}

type ResultResponse struct {
	ResultID      string `json:"result_id"`
	GameType      string `json:"game_type"`
	DrawDate      string `json:"draw_date"`
	DrawSession   string `json:"draw_session"`
	WinningNumber string `json:"winning_number"`
	PublishedBy   string `json:"published_by,omitempty"`
	PublishedAt   string `json:"published_at"`
}

// DrawStatsResponse aggregates the bets of one draw by status, for the
// operator dashboard after settlement.
type DrawStatsResponse struct {
	GameType         string `json:"game_type"`
	DrawDate         string `json:"draw_date"`
	DrawSession      string `json:"draw_session"`
	TotalBets        int64  `json:"total_bets"`
	Pending          int64  `json:"pending"`
	Won              int64  `json:"won"`
	Lost             int64  `json:"lost"`
	Cancelled        int64  `json:"cancelled"`
	SettlementFailed int64  `json:"settlement_failed"`
	TotalStakedKyat  int64  `json:"total_staked_kyat"`
	TotalPaidKyat    int64  `json:"total_paid_kyat"`
}
