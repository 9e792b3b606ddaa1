package dto

type WalletResponse struct {
	UserID      string `json:"userId"`
	WalletID    string `json:"walletId"`
	BalanceKyat int64  `json:"balance_kyat"`
}

type ReservationResponse struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type CreditResponse struct {
	UserID      string `json:"userId"`
	BalanceKyat int64  `json:"balance_kyat"`
	Status      string `json:"status"`
}
