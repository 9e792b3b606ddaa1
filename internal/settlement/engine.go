package settlement

import "fmt"

// Engine decides bet outcomes against published draw results. It is a
// pure computation over in-memory values; all persistence lives in the
// orchestrator that drives it.
type Engine struct {
	rules Rules
}

func NewEngine(rules Rules) *Engine { return &Engine{rules: rules} }

func (e *Engine) Rules() Rules { return e.rules }

// Evaluate applies the match rule of the bet's (game, method) pair to
// the winning number and computes the payout with integer arithmetic.
// It has no side effects and is deterministic for a given input.
func (e *Engine) Evaluate(b Bet, r DrawResult) (Outcome, error) {
	if b.Status != StatusPending {
		return Outcome{}, fmt.Errorf("bet %s status %s: %w", b.ID, b.Status, ErrNotPending)
	}
	if b.GameType != r.GameType || b.DrawDate != r.DrawDate || b.DrawSession != r.DrawSession {
		return Outcome{}, fmt.Errorf("bet %s vs result %s/%s/%s: %w", b.ID, r.GameType, r.DrawDate, r.DrawSession, ErrDrawMismatch)
	}

	gr, err := e.rules.Game(b.GameType)
	if err != nil {
		return Outcome{}, err
	}
	if len(r.WinningNumber) != gr.ResultLength || !isDigits(r.WinningNumber) {
		return Outcome{}, fmt.Errorf("winning number %q for %s: %w", r.WinningNumber, r.GameType, ErrInvalidNumberFormat)
	}

	wantLen, err := e.rules.BetNumberLength(b.GameType, b.Method)
	if err != nil {
		return Outcome{}, err
	}
	// Malformed bet numbers should have been rejected at creation time.
	// Seeing one here is an integrity violation, not a losing bet.
	if len(b.Number) != wantLen || !isDigits(b.Number) {
		return Outcome{}, fmt.Errorf("bet %s number %q: %w", b.ID, b.Number, ErrInvalidNumberFormat)
	}

	mult, err := e.rules.Multiplier(b.GameType, b.Method)
	if err != nil {
		return Outcome{}, err
	}

	won, err := matches(b.GameType, b.Method, b.Number, r.WinningNumber)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Won: won, Multiplier: mult}
	if won {
		out.PayoutKyat = b.AmountKyat * mult
	}
	return out, nil
}

// matches implements the digit-comparison rule per (game, method).
func matches(game GameType, method Method, number, winning string) (bool, error) {
	switch method {
	case Straight:
		// 2D compares against the last two digits, 3D against the full
		// 3-digit number; both reduce to a suffix of the bet's length.
		return number == lastN(winning, len(number)), nil

	case Power:
		switch game {
		case TwoD:
			drawn := lastN(winning, 2)
			return number == drawn || reverseDigits(number) == drawn, nil
		case ThreeD:
			return isPermutation(number, winning), nil
		}
		return false, fmt.Errorf("game %s method %s: %w", game, method, ErrUnknownMethod)

	case Break:
		drawn := lastN(winning, len(number))
		return digitSum(number)%10 == digitSum(drawn)%10, nil

	case First2:
		return number == firstN(winning, 2), nil
	case Last2:
		return number == lastN(winning, 2), nil
	case First3:
		return number == firstN(winning, 3), nil
	case Last3:
		return number == lastN(winning, 3), nil
	}
	return false, fmt.Errorf("method %q: %w", method, ErrUnknownMethod)
}

func firstN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func reverseDigits(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func digitSum(s string) int {
	sum := 0
	for i := 0; i < len(s); i++ {
		sum += int(s[i] - '0')
	}
	return sum
}

func isPermutation(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	var count [10]int
	for i := 0; i < len(a); i++ {
		count[a[i]-'0']++
		count[b[i]-'0']--
	}
	for _, c := range count {
		if c != 0 {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
