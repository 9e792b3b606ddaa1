package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/bet-service/dto"
	"github.com/mm2d3d/lottery-platform/internal/bet-service/repo"
	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// Repo is the bet persistence contract of the HTTP layer.
type Repo interface {
	CreatePending(ctx context.Context, b *repo.Bet) (string, error)
	Get(ctx context.Context, betID string) (*repo.Bet, error)
	ListByUser(ctx context.Context, userID, status string, limit int) ([]repo.Bet, error)
	CancelPending(ctx context.Context, betID, userID string) (bool, error)
}

// Wallet reserves and refunds stakes via wallet-service.
type Wallet interface {
	Reserve(ctx context.Context, userID string, kyat int64, externalRef string) (string, error)
	Refund(ctx context.Context, userID, externalRef string) error
}

// Sessions answers whether the draw is still accepting bets.
type Sessions interface {
	IsOpen(ctx context.Context, game, drawDate, session string) (bool, error)
}

type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

type Server struct {
	log      *zap.Logger
	rules    settlement.Rules
	repo     Repo
	wallet   Wallet
	sessions Sessions
	publ     Publisher
}

func NewServer(log *zap.Logger, rules settlement.Rules, r Repo, w Wallet, s Sessions, p Publisher) *Server {
	return &Server{log: log, rules: rules, repo: r, wallet: w, sessions: s, publ: p}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/bets", s.betsCollection) // POST place, GET ?userId=...
	mux.HandleFunc("/bets/", s.betsItem)      // GET /bets/{id}, POST /bets/{id}/cancel
	return mux
}

func (s *Server) betsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.placeBet(w, r)
	case http.MethodGet:
		s.listBets(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) betsItem(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bets/")
	if rest == "" {
		http.Error(w, "betId required", http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodPost && strings.HasSuffix(rest, "/cancel") {
		s.cancelBet(w, r, strings.TrimSuffix(rest, "/cancel"))
		return
	}
	if r.Method == http.MethodGet && !strings.Contains(rest, "/") {
		s.getBet(w, r, rest)
		return
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" || req.GameType == "" || req.Method == "" || req.Number == "" || req.AmountKyat <= 0 {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", req.DrawDate); err != nil {
		http.Error(w, "bad draw_date", http.StatusBadRequest)
		return
	}
	session := settlement.Session(req.DrawSession)
	if session != settlement.Morning && session != settlement.Evening {
		http.Error(w, "bad draw_session", http.StatusBadRequest)
		return
	}

	// 1) Stake, number format and method validation against the payout rules
	bet := settlement.Bet{
		UserID:      req.UserID,
		GameType:    settlement.GameType(req.GameType),
		Method:      settlement.Method(req.Method),
		Number:      req.Number,
		AmountKyat:  req.AmountKyat,
		Status:      settlement.StatusPending,
		DrawDate:    req.DrawDate,
		DrawSession: session,
	}
	if err := s.rules.ValidateBet(bet); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, settlement.ErrUnknownGame) || errors.Is(err, settlement.ErrUnknownMethod) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	mult, err := s.rules.Multiplier(bet.GameType, bet.Method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// 2) The draw must still be accepting bets
	open, err := s.sessions.IsOpen(r.Context(), req.GameType, req.DrawDate, req.DrawSession)
	if err != nil {
		http.Error(w, "session lookup failed", http.StatusInternalServerError)
		return
	}
	if !open {
		http.Error(w, "session closed", http.StatusConflict)
		return
	}

	// 3) Reserve the stake before the bet exists (external_ref = betID).
	// Ordering matters here: a crash after a reservation leaves an
	// orphan hold the wallet can refund, while a crash after an
	// unfunded PENDING row would leave a bet settlement will pay.
	betID := uuid.NewString()
	if _, err := s.wallet.Reserve(r.Context(), req.UserID, req.AmountKyat, betID); err != nil {
		http.Error(w, "wallet reserve failed", http.StatusConflict)
		return
	}

	// 4) Create the PENDING bet under the reserved id; if the insert
	// fails the reservation is released
	if _, err := s.repo.CreatePending(r.Context(), &repo.Bet{
		ID:          betID,
		UserID:      req.UserID,
		GameType:    req.GameType,
		Method:      req.Method,
		Number:      req.Number,
		AmountKyat:  req.AmountKyat,
		DrawDate:    req.DrawDate,
		DrawSession: req.DrawSession,
	}); err != nil {
		if rerr := s.wallet.Refund(r.Context(), req.UserID, betID); rerr != nil {
			s.log.Error("refund after failed create", zap.String("betId", betID), zap.Error(rerr))
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// 5) Publish bet_placed
	_ = s.publ.PublishBetPlaced(r.Context(), events.BetPlaced{
		BetID:       betID,
		UserID:      req.UserID,
		GameType:    req.GameType,
		Method:      req.Method,
		Number:      req.Number,
		AmountKyat:  req.AmountKyat,
		DrawDate:    req.DrawDate,
		DrawSession: req.DrawSession,
		ReservedRef: betID,
	})

	writeJSON(w, dto.PlaceBetResponse{
		BetID:               betID,
		Status:              string(settlement.StatusPending),
		PotentialPayoutKyat: req.AmountKyat * mult,
	})
}

func (s *Server) getBet(w http.ResponseWriter, r *http.Request, betID string) {
	b, err := s.repo.Get(r.Context(), betID)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, toBetResponse(b))
}

func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}
	status := r.URL.Query().Get("status")

	bets, err := s.repo.ListByUser(r.Context(), userID, status, 100)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for i := range bets {
		out = append(out, toBetResponse(&bets[i]))
	}
	writeJSON(w, out)
}

// cancelBet resolves the race against settlement with the same
// conditional-update-on-PENDING discipline the worker uses: whichever
// side sees PENDING first wins, the other becomes a no-op.
func (s *Server) cancelBet(w http.ResponseWriter, r *http.Request, betID string) {
	var req dto.CancelBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "userId required", http.StatusBadRequest)
		return
	}

	ok, err := s.repo.CancelPending(r.Context(), betID, req.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "bet is not pending", http.StatusConflict)
		return
	}

	// Refund is idempotent in wallet-service; a failure here leaves the
	// reservation PENDING and retriable, never a double refund.
	if err := s.wallet.Refund(r.Context(), req.UserID, betID); err != nil {
		s.log.Error("refund after cancel", zap.String("betId", betID), zap.Error(err))
	}

	writeJSON(w, dto.CancelBetResponse{BetID: betID, Status: string(settlement.StatusCancelled)})
}

func toBetResponse(b *repo.Bet) dto.BetResponse {
	return dto.BetResponse{
		BetID:       b.ID,
		GameType:    b.GameType,
		Method:      b.Method,
		Number:      b.Number,
		AmountKyat:  b.AmountKyat,
		Status:      b.Status,
		PayoutKyat:  b.PayoutKyat,
		DrawDate:    b.DrawDate,
		DrawSession: b.DrawSession,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
