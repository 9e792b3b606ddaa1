package settler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// BetRepo is the persistence contract the settler needs. Every status
// transition out of PENDING must be conditional on the row still being
// PENDING, which is what makes re-runs and concurrent cancellation safe.
type BetRepo interface {
	// ListPending returns PENDING bets of the draw ordered by id,
	// starting after afterID ("" for the first page).
	ListPending(ctx context.Context, game settlement.GameType, drawDate string, session settlement.Session, afterID string, limit int) ([]settlement.Bet, error)

	// SettleFromPending flips PENDING -> newStatus and stores the payout.
	// Returns false when the bet is no longer PENDING.
	SettleFromPending(ctx context.Context, betID string, newStatus settlement.Status, payoutKyat int64) (bool, error)

	// MarkSettlementFailed flips WON -> SETTLEMENT_FAILED after a credit
	// failure, parking the bet for manual reconciliation.
	MarkSettlementFailed(ctx context.Context, betID string, reason string) error

	// RecordTransition appends an audit row. Failures are logged, not fatal.
	RecordTransition(ctx context.Context, betID string, from, to settlement.Status, reason string) error
}

// Ledger is the wallet contract. Credit must be idempotent on the
// idempotency key so a retried settlement never double-pays.
type Ledger interface {
	Credit(ctx context.Context, userID string, amountKyat int64, reason, idempotencyKey string) error
	CommitStake(ctx context.Context, userID, externalRef string) error
}

// Notifier publishes per-bet settlement events. Best effort.
type Notifier interface {
	PublishBetSettled(ctx context.Context, ev events.BetSettled) error
}

// Entry is one bet's line in the settlement report.
type Entry struct {
	BetID      string            `json:"bet_id"`
	UserID     string            `json:"user_id"`
	Status     settlement.Status `json:"status,omitempty"`
	PayoutKyat int64             `json:"payout_kyat"`
	Error      string            `json:"error,omitempty"`
}

// Report summarizes one settleDraw invocation for the operator.
type Report struct {
	ResultID      string  `json:"result_id"`
	Won           int     `json:"won"`
	Lost          int     `json:"lost"`
	Skipped       int     `json:"skipped"` // concurrently cancelled or already settled
	Failed        int     `json:"failed"`  // evaluation or credit failures
	TotalPaidKyat int64   `json:"total_paid_kyat"`
	Entries       []Entry `json:"entries"`

	// Cursor is the last processed bet id when the per-invocation cap
	// was hit; empty when the draw was fully settled.
	Cursor string `json:"cursor,omitempty"`
}

// Settler drives settlement of a whole draw: list PENDING bets, evaluate
// each with the pure engine, transition status exactly once and credit
// winners. Per-bet failures land in the report; they never abort the batch.
type Settler struct {
	log      *zap.Logger
	engine   *settlement.Engine
	repo     BetRepo
	ledger   Ledger
	notifier Notifier // optional
	batch    int
}

func New(log *zap.Logger, engine *settlement.Engine, repo BetRepo, ledger Ledger, notifier Notifier, batchSize int) *Settler {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &Settler{log: log, engine: engine, repo: repo, ledger: ledger, notifier: notifier, batch: batchSize}
}

// SettleDraw settles every PENDING bet of the result's draw. maxBets
// bounds the work of one invocation (0 = unbounded); when the cap is
// hit the report carries a resumable cursor.
//
// The whole call is retriable: bets already settled are filtered out by
// the PENDING listing and guarded again by the conditional update, so a
// re-run after partial failure affects only what is still PENDING.
func (s *Settler) SettleDraw(ctx context.Context, result settlement.DrawResult, maxBets int) (Report, error) {
	report := Report{ResultID: result.ID}

	afterID := ""
	processed := 0
	for {
		limit := s.batch
		if maxBets > 0 && maxBets-processed < limit {
			limit = maxBets - processed
		}
		if limit == 0 {
			report.Cursor = afterID
			return report, nil
		}

		bets, err := s.repo.ListPending(ctx, result.GameType, result.DrawDate, result.DrawSession, afterID, limit)
		if err != nil {
			return report, fmt.Errorf("list pending bets: %w", err)
		}
		if len(bets) == 0 {
			return report, nil
		}

		for i := range bets {
			if err := ctx.Err(); err != nil {
				report.Cursor = afterID
				return report, err
			}
			s.settleOne(ctx, &report, bets[i], result)
			afterID = bets[i].ID
			processed++
		}

		if len(bets) < limit {
			return report, nil
		}
	}
}

func (s *Settler) settleOne(ctx context.Context, report *Report, bet settlement.Bet, result settlement.DrawResult) {
	out, err := s.engine.Evaluate(bet, result)
	if err != nil {
		// UnknownMethod and malformed numbers are configuration or
		// integrity faults. The bet stays PENDING and is surfaced to the
		// operator; guessing a payout here is the one thing we must not do.
		s.log.Error("bet evaluation failed",
			zap.String("betId", bet.ID),
			zap.String("game", string(bet.GameType)),
			zap.String("method", string(bet.Method)),
			zap.Error(err),
		)
		report.Failed++
		report.Entries = append(report.Entries, Entry{BetID: bet.ID, UserID: bet.UserID, Status: bet.Status, Error: err.Error()})
		return
	}

	newStatus := settlement.StatusLost
	if out.Won {
		newStatus = settlement.StatusWon
	}

	ok, err := s.repo.SettleFromPending(ctx, bet.ID, newStatus, out.PayoutKyat)
	if err != nil {
		report.Failed++
		report.Entries = append(report.Entries, Entry{BetID: bet.ID, UserID: bet.UserID, Status: bet.Status, Error: err.Error()})
		return
	}
	if !ok {
		// Lost the race against cancellation or an earlier run. Not an
		// error; counted separately so the operator can see it.
		s.log.Info("settlement conflict, bet no longer pending", zap.String("betId", bet.ID))
		report.Skipped++
		report.Entries = append(report.Entries, Entry{BetID: bet.ID, UserID: bet.UserID})
		return
	}

	if err := s.repo.RecordTransition(ctx, bet.ID, settlement.StatusPending, newStatus, "draw "+result.ID); err != nil {
		s.log.Warn("bet transition audit insert", zap.String("betId", bet.ID), zap.Error(err))
	}

	// The stake reservation is definitively spent once the bet settles.
	if err := s.ledger.CommitStake(ctx, bet.UserID, bet.ID); err != nil {
		s.log.Warn("stake commit", zap.String("betId", bet.ID), zap.Error(err))
	}

	entry := Entry{BetID: bet.ID, UserID: bet.UserID, Status: newStatus, PayoutKyat: out.PayoutKyat}

	if out.Won {
		// Idempotency key derived from the bet id: the ledger dedupes a
		// repeated credit if we crash between the flip and this call's ack.
		if err := s.ledger.Credit(ctx, bet.UserID, out.PayoutKyat, "win:"+result.ID, "win:"+bet.ID); err != nil {
			s.log.Error("payout credit failed, parking bet for reconciliation",
				zap.String("betId", bet.ID),
				zap.Int64("payoutKyat", out.PayoutKyat),
				zap.Error(err),
			)
			if merr := s.repo.MarkSettlementFailed(ctx, bet.ID, err.Error()); merr != nil {
				s.log.Error("mark settlement failed", zap.String("betId", bet.ID), zap.Error(merr))
			}
			if aerr := s.repo.RecordTransition(ctx, bet.ID, settlement.StatusWon, settlement.StatusSettlementFailed, err.Error()); aerr != nil {
				s.log.Warn("bet transition audit insert", zap.String("betId", bet.ID), zap.Error(aerr))
			}
			entry.Status = settlement.StatusSettlementFailed
			entry.Error = err.Error()
			report.Failed++
			report.Entries = append(report.Entries, entry)
			s.notify(ctx, bet, result, settlement.StatusSettlementFailed, out.PayoutKyat)
			return
		}
		report.Won++
		report.TotalPaidKyat += out.PayoutKyat
	} else {
		report.Lost++
	}

	report.Entries = append(report.Entries, entry)
	s.notify(ctx, bet, result, newStatus, out.PayoutKyat)
}

func (s *Settler) notify(ctx context.Context, bet settlement.Bet, result settlement.DrawResult, status settlement.Status, payout int64) {
	if s.notifier == nil {
		return
	}
	ev := events.BetSettled{
		BetID:         bet.ID,
		UserID:        bet.UserID,
		ResultID:      result.ID,
		GameType:      string(bet.GameType),
		Status:        string(status),
		WinningNumber: result.WinningNumber,
		PayoutKyat:    payout,
		Ts:            time.Now(),
	}
	if err := s.notifier.PublishBetSettled(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		s.log.Warn("bet_settled publish", zap.String("betId", bet.ID), zap.Error(err))
	}
}
