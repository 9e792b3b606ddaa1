package repo

import (
	"context"
	"database/sql"

	"github.com/mm2d3d/lottery-platform/internal/settlement"
)

// Postgres implements the settler's bet persistence over database/sql.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// listPendingQuery builds the page query. bets.id is uuid, so the
// empty first-page cursor must never reach the id comparison: Postgres
// coerces the parameter to uuid and refuses '' (22P02). The first page
// therefore carries no cursor clause at all.
func listPendingQuery(game settlement.GameType, drawDate string, session settlement.Session, afterID string, limit int) (string, []any) {
	if afterID == "" {
		return `
		SELECT id, user_id, game_type, method, number, amount_kyat, status, to_char(draw_date,'YYYY-MM-DD'), draw_session
		FROM bets
		WHERE status='PENDING' AND game_type=$1 AND draw_date=$2 AND draw_session=$3
		ORDER BY id
		LIMIT $4`, []any{game, drawDate, session, limit}
	}
	return `
		SELECT id, user_id, game_type, method, number, amount_kyat, status, to_char(draw_date,'YYYY-MM-DD'), draw_session
		FROM bets
		WHERE status='PENDING' AND game_type=$1 AND draw_date=$2 AND draw_session=$3 AND id > $4
		ORDER BY id
		LIMIT $5`, []any{game, drawDate, session, afterID, limit}
}

// ListPending pages through PENDING bets of one draw, ordered by id so
// the settler can resume from a cursor.
func (p *Postgres) ListPending(ctx context.Context, game settlement.GameType, drawDate string, session settlement.Session, afterID string, limit int) ([]settlement.Bet, error) {
	query, args := listPendingQuery(game, drawDate, session, afterID, limit)
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []settlement.Bet
	for rows.Next() {
		var b settlement.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.GameType, &b.Method, &b.Number, &b.AmountKyat, &b.Status, &b.DrawDate, &b.DrawSession); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SettleFromPending is the single conditional update that makes
// settlement at-most-once: it only fires while the row is still PENDING.
func (p *Postgres) SettleFromPending(ctx context.Context, betID string, newStatus settlement.Status, payoutKyat int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$1, payout_kyat=$2, updated_at=NOW()
		WHERE id=$3 AND status='PENDING'`,
		newStatus, payoutKyat, betID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// MarkSettlementFailed parks a WON bet whose payout credit failed.
// Guarded on WON so a concurrent manual resolution is not overwritten.
func (p *Postgres) MarkSettlementFailed(ctx context.Context, betID string, reason string) error {
	_, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status='SETTLEMENT_FAILED', failure_reason=$1, updated_at=NOW()
		WHERE id=$2 AND status='WON'`,
		reason, betID,
	)
	return err
}

func (p *Postgres) RecordTransition(ctx context.Context, betID string, from, to settlement.Status, reason string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bet_transitions (bet_id, old_status, new_status, reason, created_at)
		VALUES ($1,$2,$3,$4,NOW())`,
		betID, from, to, reason,
	)
	return err
}
