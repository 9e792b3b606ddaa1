package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mm2d3d/lottery-platform/internal/draw-service/dto"
)

var (
	// ErrResultExists signals the UNIQUE(game_type, draw_date,
	// draw_session) constraint: a published result is immutable and a
	// second publish for the same draw is rejected, never overwritten.
	ErrResultExists = errors.New("result already published for this draw")
	ErrNotFound     = errors.New("not found")
)

type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// OpenSession creates or reopens the betting window of a draw. Reopening
// is only possible while no result exists for the draw.
func (p *Postgres) OpenSession(ctx context.Context, game, drawDate, session string, closesAt time.Time) error {
	var n int
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(1) FROM draw_results
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3`,
		game, drawDate, session,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrResultExists
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO lottery_sessions (id, game_type, draw_date, draw_session, status, closes_at)
		VALUES ($1, $2, $3, $4, 'OPEN', $5)
		ON CONFLICT (game_type, draw_date, draw_session)
		DO UPDATE SET status='OPEN', closes_at=EXCLUDED.closes_at`,
		uuid.NewString(), game, drawDate, session, closesAt,
	)
	return err
}

// CloseSession flips OPEN -> CLOSED. Returns false when the session was
// already closed or never opened.
func (p *Postgres) CloseSession(ctx context.Context, game, drawDate, session string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE lottery_sessions SET status='CLOSED'
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3 AND status='OPEN'`,
		game, drawDate, session,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (p *Postgres) GetSession(ctx context.Context, game, drawDate, session string) (*dto.SessionResponse, error) {
	var out dto.SessionResponse
	var closesAt time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT game_type, to_char(draw_date,'YYYY-MM-DD'), draw_session, status, closes_at
		FROM lottery_sessions
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3`,
		game, drawDate, session,
	).Scan(&out.GameType, &out.DrawDate, &out.DrawSession, &out.Status, &closesAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.ClosesAt = closesAt.UTC().Format(time.RFC3339)
	return &out, nil
}

// InsertResult stores a published winning number. The draw's betting
// session is closed in the same transaction so no bet can slip in after
// the number is known.
func (p *Postgres) InsertResult(ctx context.Context, game, drawDate, session, winningNumber, publishedBy string) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO draw_results (id, game_type, draw_date, draw_session, winning_number, published_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, game, drawDate, session, winningNumber, publishedBy,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return "", ErrResultExists
		}
		return "", err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE lottery_sessions SET status='CLOSED'
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3 AND status='OPEN'`,
		game, drawDate, session,
	); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

func (p *Postgres) GetResult(ctx context.Context, game, drawDate, session string) (*dto.ResultResponse, error) {
	var out dto.ResultResponse
	var publishedBy sql.NullString
	var publishedAt time.Time
	err := p.db.QueryRowContext(ctx, `
		SELECT id, game_type, to_char(draw_date,'YYYY-MM-DD'), draw_session, winning_number, published_by, published_at
		FROM draw_results
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3`,
		game, drawDate, session,
	).Scan(&out.ResultID, &out.GameType, &out.DrawDate, &out.DrawSession,
		&out.WinningNumber, &publishedBy, &publishedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	out.PublishedBy = publishedBy.String
	out.PublishedAt = publishedAt.UTC().Format(time.RFC3339)
	return &out, nil
}

func (p *Postgres) ListResults(ctx context.Context, game string, limit int) ([]dto.ResultResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, game_type, to_char(draw_date,'YYYY-MM-DD'), draw_session, winning_number, published_by, published_at
		FROM draw_results
		WHERE ($1 = '' OR game_type = $1)
		ORDER BY published_at DESC
		LIMIT $2`,
		game, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dto.ResultResponse
	for rows.Next() {
		var r dto.ResultResponse
		var publishedBy sql.NullString
		var publishedAt time.Time
		if err := rows.Scan(&r.ResultID, &r.GameType, &r.DrawDate, &r.DrawSession,
			&r.WinningNumber, &publishedBy, &publishedAt); err != nil {
			return nil, err
		}
		r.PublishedBy = publishedBy.String
		r.PublishedAt = publishedAt.UTC().Format(time.RFC3339)
		out = append(out, r)
	}
	return out, rows.Err()
}

// DrawStats aggregates bets of one draw by status.
func (p *Postgres) DrawStats(ctx context.Context, game, drawDate, session string) (*dto.DrawStatsResponse, error) {
	out := dto.DrawStatsResponse{GameType: game, DrawDate: drawDate, DrawSession: session}
	err := p.db.QueryRowContext(ctx, `
		SELECT COUNT(1),
		       COUNT(1) FILTER (WHERE status='PENDING'),
		       COUNT(1) FILTER (WHERE status='WON'),
		       COUNT(1) FILTER (WHERE status='LOST'),
		       COUNT(1) FILTER (WHERE status='CANCELLED'),
		       COUNT(1) FILTER (WHERE status='SETTLEMENT_FAILED'),
		       COALESCE(SUM(amount_kyat) FILTER (WHERE status <> 'CANCELLED'), 0),
		       COALESCE(SUM(payout_kyat) FILTER (WHERE status='WON'), 0)
		FROM bets
		WHERE game_type=$1 AND draw_date=$2 AND draw_session=$3`,
		game, drawDate, session,
	).Scan(&out.TotalBets, &out.Pending, &out.Won, &out.Lost,
		&out.Cancelled, &out.SettlementFailed, &out.TotalStakedKyat, &out.TotalPaidKyat)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
