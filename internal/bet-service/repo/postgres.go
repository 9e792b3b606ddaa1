package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implements bet persistence.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreatePending inserts a new bet with status PENDING. The handler
// assigns the id up front so the wallet reservation can reference it
// before the row exists; a zero id gets one generated here.
func (p *Postgres) CreatePending(ctx context.Context, b *Bet) (string, error) {
	id := b.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,game_type,method,number,amount_kyat,status,draw_date,draw_session)
		VALUES ($1,$2,$3,$4,$5,$6,'PENDING',$7,$8)`,
		id, b.UserID, b.GameType, b.Method, b.Number, b.AmountKyat, b.DrawDate, b.DrawSession,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get returns one bet by id.
func (p *Postgres) Get(ctx context.Context, betID string) (*Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, game_type, method, number, amount_kyat, status, payout_kyat,
		       to_char(draw_date,'YYYY-MM-DD'), draw_session, created_at, updated_at
		FROM bets WHERE id=$1`, betID).
		Scan(&b.ID, &b.UserID, &b.GameType, &b.Method, &b.Number, &b.AmountKyat, &b.Status, &b.PayoutKyat,
			&b.DrawDate, &b.DrawSession, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns a user's bets newest first, optionally filtered by status.
func (p *Postgres) ListByUser(ctx context.Context, userID, status string, limit int) ([]Bet, error) {
	const q = `
		SELECT id, user_id, game_type, method, number, amount_kyat, status, payout_kyat,
		       to_char(draw_date,'YYYY-MM-DD'), draw_session, created_at, updated_at
		FROM bets
		WHERE user_id=$1 AND ($2 = '' OR status=$2)
		ORDER BY created_at DESC
		LIMIT $3`
	rows, err := p.db.QueryContext(ctx, q, userID, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.GameType, &b.Method, &b.Number, &b.AmountKyat, &b.Status, &b.PayoutKyat,
			&b.DrawDate, &b.DrawSession, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// CancelPending flips PENDING -> CANCELLED for the owning user. The
// PENDING guard makes cancellation lose cleanly against settlement.
func (p *Postgres) CancelPending(ctx context.Context, betID, userID string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status='CANCELLED', updated_at=NOW()
		WHERE id=$1 AND user_id=$2 AND status='PENDING'`,
		betID, userID,
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
