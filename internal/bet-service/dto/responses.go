package dto

type PlaceBetResponse struct {
	BetID               string `json:"betId"`
	Status              string `json:"status"`
	PotentialPayoutKyat int64  `json:"potential_payout_kyat"`
}

type BetResponse struct {
	BetID       string `json:"betId"`
	GameType    string `json:"game_type"`
	Method      string `json:"method"`
	Number      string `json:"number"`
	AmountKyat  int64  `json:"amount_kyat"`
	Status      string `json:"status"`
	PayoutKyat  int64  `json:"payout_kyat,omitempty"`
	DrawDate    string `json:"draw_date"`
	DrawSession string `json:"draw_session"`
}

type CancelBetResponse struct {
	BetID  string `json:"betId"`
	Status string `json:"status"`
}
