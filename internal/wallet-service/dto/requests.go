package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	ExternalRef string `json:"external_ref,omitempty"` // ex: deposit proof reference
}

type WithdrawRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	ExternalRef string `json:"external_ref,omitempty"`
}

type ReserveRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	ExternalRef string `json:"external_ref"` // ex: betId
}

type CommitRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

type RefundRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountKyat  int64  `json:"amount_kyat"`
	Reason      string `json:"reason,omitempty"`
	ExternalRef string `json:"external_ref"` // idempotency key, ex: "win:<betId>"
}
