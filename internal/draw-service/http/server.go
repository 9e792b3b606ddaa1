package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/draw-service/dto"
	"github.com/mm2d3d/lottery-platform/internal/draw-service/repo"
	"github.com/mm2d3d/lottery-platform/internal/draw-service/schedule"
	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// Repo is the draw persistence contract of the HTTP layer.
type Repo interface {
	OpenSession(ctx context.Context, game, drawDate, session string, closesAt time.Time) error
	CloseSession(ctx context.Context, game, drawDate, session string) (bool, error)
	GetSession(ctx context.Context, game, drawDate, session string) (*dto.SessionResponse, error)
	InsertResult(ctx context.Context, game, drawDate, session, winningNumber, publishedBy string) (string, error)
	GetResult(ctx context.Context, game, drawDate, session string) (*dto.ResultResponse, error)
	ListResults(ctx context.Context, game string, limit int) ([]dto.ResultResponse, error)
	DrawStats(ctx context.Context, game, drawDate, session string) (*dto.DrawStatsResponse, error)
}

// Cache keeps the session-open flags bet-service reads and a read cache
// of published results.
type Cache interface {
	GetResult(ctx context.Context, game, drawDate, session string, dst any) (bool, error)
	SetResult(ctx context.Context, game, drawDate, session string, v any) error
	SetSessionOpen(ctx context.Context, game, drawDate, session string, until time.Duration) error
	SetSessionClosed(ctx context.Context, game, drawDate, session string) error
}

type Publisher interface {
	PublishResultPublished(ctx context.Context, e events.ResultPublished) error
}

// API exposes the draw lifecycle: session windows, result publication
// and read endpoints for results, schedule and per-draw stats.
type API struct {
	Log   *zap.Logger
	Rules settlement.Rules
	Repo  Repo
	Cache Cache
	Publ  Publisher
	WS    http.HandlerFunc // websocket hub endpoint

	// Now is swappable in tests.
	Now func() time.Time
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/v1/draws/schedule", a.getSchedule)

	r.Post("/v1/sessions/open", a.openSession)
	r.Post("/v1/sessions/close", a.closeSession)
	r.Get("/v1/sessions/{game}/{date}/{session}", a.getSession)

	r.Post("/v1/results", a.publishResult)
	r.Get("/v1/results", a.listResults)
	r.Get("/v1/results/{game}/{date}/{session}", a.getResult)

	r.Get("/v1/stats/{game}/{date}/{session}", a.getStats)

	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (a *API) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// validateDraw checks the (game, date, session) triple against the
// schedule and returns the draw instant.
func (a *API) validateDraw(game, drawDate, session string) (time.Time, error) {
	return schedule.DrawAt(settlement.GameType(game), drawDate, settlement.Session(session))
}

func (a *API) getSchedule(w http.ResponseWriter, r *http.Request) {
	if game := r.URL.Query().Get("game"); game != "" {
		d, err := schedule.Next(settlement.GameType(game), a.now())
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, []schedule.Draw{d})
		return
	}
	writeJSON(w, http.StatusOK, schedule.Upcoming(a.now()))
}

func (a *API) openSession(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	drawsAt, err := a.validateDraw(req.GameType, req.DrawDate, req.DrawSession)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !drawsAt.After(a.now()) {
		writeError(w, http.StatusConflict, "draw time already passed")
		return
	}

	if err := a.Repo.OpenSession(r.Context(), req.GameType, req.DrawDate, req.DrawSession, drawsAt); err != nil {
		if errors.Is(err, repo.ErrResultExists) {
			writeError(w, http.StatusConflict, "result already published")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// flag expires exactly at the betting deadline
	if err := a.Cache.SetSessionOpen(r.Context(), req.GameType, req.DrawDate, req.DrawSession, drawsAt.Sub(a.now())); err != nil {
		a.Log.Warn("session flag set failed", zap.Error(err))
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		GameType:    req.GameType,
		DrawDate:    req.DrawDate,
		DrawSession: req.DrawSession,
		Status:      "OPEN",
		ClosesAt:    drawsAt.UTC().Format(time.RFC3339),
	})
}

func (a *API) closeSession(w http.ResponseWriter, r *http.Request) {
	var req dto.CloseSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	closed, err := a.Repo.CloseSession(r.Context(), req.GameType, req.DrawDate, req.DrawSession)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := a.Cache.SetSessionClosed(r.Context(), req.GameType, req.DrawDate, req.DrawSession); err != nil {
		a.Log.Warn("session flag clear failed", zap.Error(err))
	}
	if !closed {
		writeError(w, http.StatusConflict, "session not open")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := a.Repo.GetSession(r.Context(),
		chi.URLParam(r, "game"), chi.URLParam(r, "date"), chi.URLParam(r, "session"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// publishResult fixes a draw's winning number. The number is validated
// against the game's canonical length, the session is closed in the same
// transaction, and the result event goes out on Kafka for settlement.
func (a *API) publishResult(w http.ResponseWriter, r *http.Request) {
	var req dto.PublishResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	if _, err := a.validateDraw(req.GameType, req.DrawDate, req.DrawSession); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.Rules.ValidateResult(settlement.GameType(req.GameType), req.WinningNumber); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, settlement.ErrUnknownGame) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	resultID, err := a.Repo.InsertResult(r.Context(),
		req.GameType, req.DrawDate, req.DrawSession, req.WinningNumber, req.PublishedBy)
	if err != nil {
		if errors.Is(err, repo.ErrResultExists) {
			writeError(w, http.StatusConflict, "result already published for this draw")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := a.Cache.SetSessionClosed(r.Context(), req.GameType, req.DrawDate, req.DrawSession); err != nil {
		a.Log.Warn("session flag clear failed", zap.Error(err))
	}

	ev := events.ResultPublished{
		ResultID:      resultID,
		GameType:      req.GameType,
		DrawDate:      req.DrawDate,
		DrawSession:   req.DrawSession,
		WinningNumber: req.WinningNumber,
		PublishedBy:   req.PublishedBy,
		Ts:            a.now(),
	}
	if err := a.Publ.PublishResultPublished(r.Context(), ev); err != nil {
		// The result row exists; settlement will not start until the
		// event reaches Kafka. Surface the failure so the operator
		// republishes via settlementctl.
		a.Log.Error("result_published emit failed", zap.String("resultId", resultID), zap.Error(err))
		writeError(w, http.StatusBadGateway, "result stored but event publish failed")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ResultResponse{
		ResultID:      resultID,
		GameType:      req.GameType,
		DrawDate:      req.DrawDate,
		DrawSession:   req.DrawSession,
		WinningNumber: req.WinningNumber,
		PublishedBy:   req.PublishedBy,
		PublishedAt:   ev.Ts.UTC().Format(time.RFC3339),
	})
}

func (a *API) getResult(w http.ResponseWriter, r *http.Request) {
	game := chi.URLParam(r, "game")
	date := chi.URLParam(r, "date")
	session := chi.URLParam(r, "session")

	var cached dto.ResultResponse
	if ok, _ := a.Cache.GetResult(r.Context(), game, date, session, &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	res, err := a.Repo.GetResult(r.Context(), game, date, session)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = a.Cache.SetResult(r.Context(), game, date, session, res)
	writeJSON(w, http.StatusOK, res)
}

func (a *API) listResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.Repo.ListResults(r.Context(), r.URL.Query().Get("game"), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if results == nil {
		results = []dto.ResultResponse{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Repo.DrawStats(r.Context(),
		chi.URLParam(r, "game"), chi.URLParam(r, "date"), chi.URLParam(r, "session"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
