package settler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
	"github.com/mm2d3d/lottery-platform/pkg/contracts/events"
)

// mockBetRepo keeps bets in memory and honours the conditional-update
// discipline the real Postgres repo implements.
type mockBetRepo struct {
	mu          sync.Mutex
	bets        map[string]*settlement.Bet
	transitions []string
}

func newMockBetRepo(bets ...settlement.Bet) *mockBetRepo {
	m := &mockBetRepo{bets: make(map[string]*settlement.Bet)}
	for i := range bets {
		b := bets[i]
		m.bets[b.ID] = &b
	}
	return m
}

func (m *mockBetRepo) ListPending(_ context.Context, game settlement.GameType, drawDate string, session settlement.Session, afterID string, limit int) ([]settlement.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []string
	for id, b := range m.bets {
		if b.Status == settlement.StatusPending && b.GameType == game && b.DrawDate == drawDate && b.DrawSession == session && id > afterID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]settlement.Bet, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.bets[id])
	}
	return out, nil
}

func (m *mockBetRepo) SettleFromPending(_ context.Context, betID string, newStatus settlement.Status, payoutKyat int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bets[betID]
	if !ok || b.Status != settlement.StatusPending {
		return false, nil
	}
	b.Status = newStatus
	_ = payoutKyat
	return true, nil
}

func (m *mockBetRepo) MarkSettlementFailed(_ context.Context, betID string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bets[betID]; ok && b.Status == settlement.StatusWon {
		b.Status = settlement.StatusSettlementFailed
	}
	return nil
}

func (m *mockBetRepo) RecordTransition(_ context.Context, betID string, from, to settlement.Status, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, betID+":"+string(from)+"->"+string(to))
	return nil
}

func (m *mockBetRepo) status(betID string) settlement.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bets[betID].Status
}

// mockLedger dedupes credits by idempotency key and can fail on demand.
type mockLedger struct {
	mu          sync.Mutex
	credited    map[string]int64 // idempotency key -> amount
	failCredits bool
}

func newMockLedger() *mockLedger { return &mockLedger{credited: make(map[string]int64)} }

func (m *mockLedger) Credit(_ context.Context, _ string, amountKyat int64, _, idempotencyKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCredits {
		return errors.New("wallet unavailable")
	}
	if _, seen := m.credited[idempotencyKey]; seen {
		return nil // deduplicated
	}
	m.credited[idempotencyKey] = amountKyat
	return nil
}

func (m *mockLedger) CommitStake(context.Context, string, string) error { return nil }

func (m *mockLedger) totalCredited() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, v := range m.credited {
		sum += v
	}
	return sum
}

type mockNotifier struct {
	mu     sync.Mutex
	events []events.BetSettled
}

func (m *mockNotifier) PublishBetSettled(_ context.Context, ev events.BetSettled) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func drawBet(id, number string, amount int64) settlement.Bet {
	return settlement.Bet{
		ID:          id,
		UserID:      "user-" + id,
		GameType:    settlement.TwoD,
		Method:      settlement.Straight,
		Number:      number,
		AmountKyat:  amount,
		Status:      settlement.StatusPending,
		DrawDate:    "2025-03-01",
		DrawSession: settlement.Evening,
	}
}

func twoDResult(winning string) settlement.DrawResult {
	return settlement.DrawResult{
		ID:            "res-1",
		GameType:      settlement.TwoD,
		DrawDate:      "2025-03-01",
		DrawSession:   settlement.Evening,
		WinningNumber: winning,
	}
}

func newSettler(repo BetRepo, ledger Ledger, notifier Notifier) *Settler {
	return New(zap.NewNop(), settlement.NewEngine(settlement.DefaultRules()), repo, ledger, notifier, 2)
}

func TestSettleDrawWinsAndLosses(t *testing.T) {
	repo := newMockBetRepo(
		drawBet("b1", "47", 1000),
		drawBet("b2", "48", 500),
		drawBet("b3", "47", 2000),
	)
	ledger := newMockLedger()
	notifier := &mockNotifier{}
	s := newSettler(repo, ledger, notifier)

	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Won)
	assert.Equal(t, 1, report.Lost)
	assert.Equal(t, 0, report.Skipped)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, int64(1000*85+2000*85), report.TotalPaidKyat)
	assert.Empty(t, report.Cursor)

	assert.Equal(t, settlement.StatusWon, repo.status("b1"))
	assert.Equal(t, settlement.StatusLost, repo.status("b2"))
	assert.Equal(t, settlement.StatusWon, repo.status("b3"))
	assert.Equal(t, report.TotalPaidKyat, ledger.totalCredited())
	assert.Len(t, notifier.events, 3)
}

func TestSettleDrawIsIdempotent(t *testing.T) {
	repo := newMockBetRepo(
		drawBet("b1", "47", 1000),
		drawBet("b2", "48", 500),
	)
	ledger := newMockLedger()
	s := newSettler(repo, ledger, nil)

	first, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)
	require.Equal(t, 1, first.Won)

	// second run must be a no-op: nothing is PENDING anymore
	second, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Won+second.Lost+second.Skipped+second.Failed)

	// total credited across both runs equals a single run's payout
	assert.Equal(t, first.TotalPaidKyat, ledger.totalCredited())
}

func TestSettleDrawSkipsConcurrentlyCancelled(t *testing.T) {
	cancelled := drawBet("b1", "47", 1000)
	repo := newMockBetRepo(cancelled, drawBet("b2", "47", 500))
	ledger := newMockLedger()
	s := newSettler(repo, ledger, nil)

	// simulate a cancellation racing the settlement listing: the repo
	// returns the bet but the conditional update then sees CANCELLED
	repo.bets["b1"].Status = settlement.StatusCancelled
	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Won)
	assert.Equal(t, 0, report.Skipped) // cancelled bet already filtered by listing
	assert.Equal(t, settlement.StatusCancelled, repo.status("b1"))
	assert.Equal(t, int64(500*85), ledger.totalCredited())
}

func TestSettleDrawConflictOnConditionalUpdate(t *testing.T) {
	repo := newMockBetRepo(drawBet("b1", "47", 1000))
	ledger := newMockLedger()
	s := newSettler(&racingRepo{mockBetRepo: repo}, ledger, nil)

	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 0, report.Won)
	assert.Zero(t, ledger.totalCredited())
}

// racingRepo cancels the bet between the listing and the conditional
// update, the exact window the PENDING guard must close.
type racingRepo struct {
	*mockBetRepo
}

func (r *racingRepo) ListPending(ctx context.Context, game settlement.GameType, drawDate string, session settlement.Session, afterID string, limit int) ([]settlement.Bet, error) {
	bets, err := r.mockBetRepo.ListPending(ctx, game, drawDate, session, afterID, limit)
	for i := range bets {
		r.mockBetRepo.bets[bets[i].ID].Status = settlement.StatusCancelled
	}
	return bets, err
}

func TestSettleDrawCreditFailureParksBet(t *testing.T) {
	repo := newMockBetRepo(
		drawBet("b1", "47", 1000),
		drawBet("b2", "48", 500),
	)
	ledger := newMockLedger()
	ledger.failCredits = true
	s := newSettler(repo, ledger, nil)

	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)

	// winner's credit failed after the status flip: terminal sub-state,
	// never silently retried, never back to PENDING
	assert.Equal(t, 0, report.Won)
	assert.Equal(t, 1, report.Lost)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, settlement.StatusSettlementFailed, repo.status("b1"))
	assert.Zero(t, ledger.totalCredited())

	// a re-run doesn't touch the parked bet
	again, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Won+again.Lost+again.Skipped+again.Failed)
}

func TestSettleDrawEvaluationFailureLeavesBetPending(t *testing.T) {
	bad := drawBet("b1", "47", 1000)
	bad.Method = settlement.Method("JACKPOT")
	repo := newMockBetRepo(bad, drawBet("b2", "47", 500))
	ledger := newMockLedger()
	s := newSettler(repo, ledger, nil)

	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)

	// one bad bet must not block settlement of the rest of the draw
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Won)
	assert.Equal(t, settlement.StatusPending, repo.status("b1"))
	assert.Equal(t, settlement.StatusWon, repo.status("b2"))
}

func TestSettleDrawHonoursMaxBetsCap(t *testing.T) {
	repo := newMockBetRepo(
		drawBet("b1", "47", 100),
		drawBet("b2", "47", 100),
		drawBet("b3", "47", 100),
		drawBet("b4", "47", 100),
		drawBet("b5", "47", 100),
	)
	ledger := newMockLedger()
	s := newSettler(repo, ledger, nil)

	report, err := s.SettleDraw(context.Background(), twoDResult("47"), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Won)
	assert.Equal(t, "b3", report.Cursor)

	// resuming settles the remainder; idempotence keeps totals right
	rest, err := s.SettleDraw(context.Background(), twoDResult("47"), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, rest.Won)
	assert.Empty(t, rest.Cursor)
	assert.Equal(t, int64(5*100*85), ledger.totalCredited())
}
