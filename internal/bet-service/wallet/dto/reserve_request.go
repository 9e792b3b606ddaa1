package dto

type ReserveRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	ExternalRef string `json:"external_ref"` // betId
}

type RefundRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}
