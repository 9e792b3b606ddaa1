package dto

type PlaceBetRequest struct {
	UserID      string `json:"userId"`
	GameType    string `json:"game_type"`    // "2D" | "3D" | "THAI" | "LAO"
	Method      string `json:"method"`       // "STRAIGHT" | "POWER" | ...
	Number      string `json:"number"`       // digit string, length per game/method
	AmountKyat  int64  `json:"amount_kyat"`
	DrawDate    string `json:"draw_date"`    // "2006-01-02"
	DrawSession string `json:"draw_session"` // "MORNING" | "EVENING"
}

type CancelBetRequest struct {
	UserID string `json:"userId"`
}
