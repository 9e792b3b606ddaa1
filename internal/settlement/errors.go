package settlement

import "errors"

var (
	// ErrUnknownMethod means the (game, method) pair has no configured
	// multiplier. Evaluation fails instead of guessing a payout.
	ErrUnknownMethod = errors.New("unknown game/method pair")

	// ErrInvalidNumberFormat means a bet or winning number has the wrong
	// digit length or contains non-digit characters.
	ErrInvalidNumberFormat = errors.New("invalid number format")

	// ErrAmountOutOfRange means the stake is outside [minBet, maxBet].
	ErrAmountOutOfRange = errors.New("bet amount out of range")

	// ErrDrawMismatch means the bet does not belong to the given draw.
	ErrDrawMismatch = errors.New("bet does not match draw")

	// ErrNotPending means the bet already reached a terminal status.
	ErrNotPending = errors.New("bet is not pending")

	ErrUnknownGame = errors.New("unknown game type")
)
