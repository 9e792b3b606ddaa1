package http

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/wallet-service/dto"
)

// Repo defines the wallet operations the HTTP handler needs.
type Repo interface {
	GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	Withdraw(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error)
	Reserve(ctx context.Context, userID string, amount int64, externalRef string) (reservationID string, err error)
	Commit(ctx context.Context, userID, externalRef string) error
	Refund(ctx context.Context, userID, externalRef string) error
	Credit(ctx context.Context, userID string, amount int64, reason, externalRef string) (newBalance int64, err error)
}

// Server exposes the wallet HTTP API.
type Server struct {
	log  *zap.Logger
	repo Repo
}

func NewServer(log *zap.Logger, repo Repo) *Server { return &Server{log: log, repo: repo} }

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/wallet", s.getWallet)         // GET ?userId=...
	mux.HandleFunc("/wallet/deposit", s.deposit)   // POST
	mux.HandleFunc("/wallet/withdraw", s.withdraw) // POST
	mux.HandleFunc("/wallet/reserve", s.reserve)   // POST
	mux.HandleFunc("/wallet/commit", s.commit)     // POST
	mux.HandleFunc("/wallet/refund", s.refund)     // POST
	mux.HandleFunc("/wallet/credit", s.credit)     // POST (settlement payouts)
	return mux
}

// getWallet returns (or creates) the user's wallet and balance.
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: userID, WalletID: walletID, BalanceKyat: bal})
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountKyat <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.Deposit(r.Context(), req.UserID, req.AmountKyat, req.ExternalRef)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: req.UserID, WalletID: walletID, BalanceKyat: bal})
}

func (s *Server) withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountKyat <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	walletID, bal, err := s.repo.Withdraw(r.Context(), req.UserID, req.AmountKyat, req.ExternalRef)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, dto.WalletResponse{UserID: req.UserID, WalletID: walletID, BalanceKyat: bal})
}

// reserve blocks a stake for a bet being placed.
func (s *Server) reserve(w http.ResponseWriter, r *http.Request) {
	var req dto.ReserveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountKyat <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	resID, err := s.repo.Reserve(r.Context(), req.UserID, req.AmountKyat, req.ExternalRef)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "wallet not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, dto.ReservationResponse{ReservationID: resID, Status: "PENDING"})
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	var req dto.CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Commit(r.Context(), req.UserID, req.ExternalRef); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"COMMITTED"}`))
}

func (s *Server) refund(w http.ResponseWriter, r *http.Request) {
	var req dto.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if err := s.repo.Refund(r.Context(), req.UserID, req.ExternalRef); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"REFUNDED"}`))
}

// credit pays winnings; repeated calls with the same external_ref are
// deduplicated by the repository.
func (s *Server) credit(w http.ResponseWriter, r *http.Request) {
	var req dto.CreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.AmountKyat <= 0 || req.ExternalRef == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	bal, err := s.repo.Credit(r.Context(), req.UserID, req.AmountKyat, req.Reason, req.ExternalRef)
	if err != nil {
		s.log.Error("credit failed", zap.String("userId", req.UserID), zap.String("ref", req.ExternalRef), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, dto.CreditResponse{UserID: req.UserID, BalanceKyat: bal, Status: "CREDITED"})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
