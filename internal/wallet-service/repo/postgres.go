package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

// Postgres implements wallet operations. Every mutation runs in a
// transaction with a FOR UPDATE lock on the wallet row and leaves a
// ledger entry; balances are only ever changed by relative increments.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
)

// GetOrCreateWallet returns the user's wallet id and balance, creating
// the wallet on first touch.
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (walletID string, balance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var bal int64
	err = tx.QueryRowContext(ctx, `SELECT id, balance_kyat FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal)
	if err == sql.ErrNoRows {
		// Two requests can both miss the SELECT on first touch, so the
		// insert defers to whichever one lands first and re-reads.
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_kyat, version) VALUES($1,$2,0,1)
			 ON CONFLICT (user_id) DO NOTHING`,
			uuid.New().String(), userID); err != nil {
			return "", 0, err
		}
		if err = tx.QueryRowContext(ctx, `SELECT id, balance_kyat FROM wallets WHERE user_id=$1`, userID).Scan(&id, &bal); err != nil {
			return "", 0, err
		}
	} else if err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}

	return id, bal, nil
}

// Deposit increments the balance and records the operation in the ledger.
func (p *Postgres) Deposit(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_kyat = balance_kyat + $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description) VALUES($1,'DEPOSIT',$2,$3)`,
		id, amount, "deposit:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_kyat FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Withdraw decrements the balance after checking funds.
func (p *Postgres) Withdraw(ctx context.Context, userID string, amount int64, externalRef string) (walletID string, newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()

	var id string
	var balance int64
	if err = tx.QueryRowContext(ctx, `SELECT id, balance_kyat FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&id, &balance); err != nil {
		return "", 0, err
	}

	if balance < amount {
		return "", 0, ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_kyat = balance_kyat - $1, version = version + 1 WHERE id=$2`, amount, id); err != nil {
		return "", 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description) VALUES($1,'WITHDRAW',$2,$3)`,
		id, amount, "withdraw:"+externalRef); err != nil {
		return "", 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_kyat FROM wallets WHERE id=$1`, id).Scan(&newBalance); err != nil {
		return "", 0, err
	}

	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return id, newBalance, nil
}

// Reserve blocks a stake: creates a PENDING reservation and debits the
// balance. Idempotent per (wallet_id, external_ref).
func (p *Postgres) Reserve(ctx context.Context, userID string, amount int64, externalRef string) (reservationID string, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var walletID string
	var balance int64
	if err = tx.QueryRowContext(ctx, `SELECT id, balance_kyat FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID, &balance); err != nil {
		return "", err
	}

	// idempotency: existing reservation for the same external_ref wins
	var exists string
	err = tx.QueryRowContext(ctx, `SELECT id FROM wallet_reservations WHERE wallet_id=$1 AND external_ref=$2`, walletID, externalRef).Scan(&exists)
	if err == nil {
		return exists, nil
	} else if err != sql.ErrNoRows {
		return "", err
	}

	if balance < amount {
		return "", ErrInsufficientFunds
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_kyat = balance_kyat - $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return "", err
	}

	reservationID = uuid.New().String()
	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_reservations(id, wallet_id, external_ref, amount_kyat, status) VALUES($1,$2,$3,$4,'PENDING')`,
		reservationID, walletID, externalRef, amount); err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description, related_bet_id)
		VALUES($1,'RESERVE',$2,$3,$4)`,
		walletID, amount, "reserve:"+externalRef, externalRef); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}

	return reservationID, nil
}

// Commit marks a reservation as definitively spent. Idempotent: a
// non-PENDING reservation is left alone.
func (p *Postgres) Commit(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, resID string
	var status string
	var amount int64

	if err = tx.QueryRowContext(ctx, `
		SELECT wr.id, wr.wallet_id, wr.amount_kyat, wr.status
		FROM wallet_reservations wr
		JOIN wallets w ON w.id = wr.wallet_id
		WHERE w.user_id=$1 AND wr.external_ref=$2
		FOR UPDATE`, userID, externalRef).Scan(&resID, &walletID, &amount, &status); err != nil {
		return ErrNotFound
	}

	if status != "PENDING" {
		return nil
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_reservations SET status='COMMITTED' WHERE id=$1`, resID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description)
		VALUES($1,'DEBIT',$2,$3)`, walletID, amount, "commit:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Refund undoes a PENDING reservation, returning the stake. Idempotent.
func (p *Postgres) Refund(ctx context.Context, userID, externalRef string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var walletID, resID string
	var status string
	var amount int64

	if err = tx.QueryRowContext(ctx, `
		SELECT wr.id, wr.wallet_id, wr.amount_kyat, wr.status
		FROM wallet_reservations wr
		JOIN wallets w ON w.id = wr.wallet_id
		WHERE w.user_id=$1 AND wr.external_ref=$2
		FOR UPDATE`, userID, externalRef).Scan(&resID, &walletID, &amount, &status); err != nil {
		return ErrNotFound
	}

	if status != "PENDING" {
		return nil
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_kyat = balance_kyat + $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallet_reservations SET status='REFUNDED' WHERE id=$1`, resID); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description)
		VALUES($1,'REFUND',$2,$3)`, walletID, amount, "refund:"+externalRef); err != nil {
		return err
	}

	return tx.Commit()
}

// Credit pays winnings into the wallet. Idempotent per external_ref:
// the settlement worker may retry after a partial failure and the
// ledger check guarantees the payout lands at most once.
func (p *Postgres) Credit(ctx context.Context, userID string, amount int64, reason, externalRef string) (newBalance int64, err error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var walletID string
	if err = tx.QueryRowContext(ctx, `SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID); err != nil {
		return 0, err
	}

	// dedupe on (wallet_id, external_ref) for CREDIT entries
	var already int64
	err = tx.QueryRowContext(ctx, `
		SELECT amount_kyat FROM wallet_ledger
		WHERE wallet_id=$1 AND operation_type='CREDIT' AND external_ref=$2`,
		walletID, externalRef).Scan(&already)
	if err == nil {
		if err = tx.QueryRowContext(ctx, `SELECT balance_kyat FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
			return 0, err
		}
		return newBalance, tx.Commit()
	} else if err != sql.ErrNoRows {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `UPDATE wallets SET balance_kyat = balance_kyat + $1, version = version + 1 WHERE id=$2`, amount, walletID); err != nil {
		return 0, err
	}

	if _, err = tx.ExecContext(ctx, `INSERT INTO wallet_ledger(wallet_id, operation_type, amount_kyat, description, external_ref)
		VALUES($1,'CREDIT',$2,$3,$4)`, walletID, amount, reason, externalRef); err != nil {
		return 0, err
	}

	if err = tx.QueryRowContext(ctx, `SELECT balance_kyat FROM wallets WHERE id=$1`, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	return newBalance, tx.Commit()
}
