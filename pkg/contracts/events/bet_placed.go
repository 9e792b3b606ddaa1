package events

type BetPlaced struct {
	BetID       string `json:"bet_id"`
	UserID      string `json:"user_id"`
	GameType    string `json:"game_type"`
	Method      string `json:"method"`
	Number      string `json:"number"`
	AmountKyat  int64  `json:"amount_kyat"`
	DrawDate    string `json:"draw_date"`
	DrawSession string `json:"draw_session"`
	ReservedRef string `json:"reserved_ref"` // external_ref used on the wallet reservation (betID)
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
