package settlement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pendingBet(game GameType, method Method, number string, amount int64) Bet {
	return Bet{
		ID:          "bet-1",
		UserID:      "user-1",
		GameType:    game,
		Method:      method,
		Number:      number,
		AmountKyat:  amount,
		Status:      StatusPending,
		DrawDate:    "2025-03-01",
		DrawSession: Evening,
	}
}

func resultFor(b Bet, winning string) DrawResult {
	return DrawResult{
		ID:            "result-1",
		GameType:      b.GameType,
		DrawDate:      b.DrawDate,
		DrawSession:   b.DrawSession,
		WinningNumber: winning,
	}
}

func TestEvaluateTwoDStraight(t *testing.T) {
	e := NewEngine(DefaultRules())

	b := pendingBet(TwoD, Straight, "47", 1000)
	out, err := e.Evaluate(b, resultFor(b, "47"))
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, int64(85000), out.PayoutKyat)

	out, err = e.Evaluate(b, resultFor(b, "48"))
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.Equal(t, int64(0), out.PayoutKyat)
}

func TestEvaluateThreeDFirst3(t *testing.T) {
	e := NewEngine(DefaultRules())

	b := pendingBet(ThreeD, First3, "123", 500)
	out, err := e.Evaluate(b, resultFor(b, "123"))
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, int64(250000), out.PayoutKyat)

	out, err = e.Evaluate(b, resultFor(b, "124"))
	require.NoError(t, err)
	assert.False(t, out.Won)
	assert.Equal(t, int64(0), out.PayoutKyat)
}

func TestEvaluateLaoLast2(t *testing.T) {
	e := NewEngine(DefaultRules())

	b := pendingBet(Lao, Last2, "56", 2000)
	out, err := e.Evaluate(b, resultFor(b, "123456"))
	require.NoError(t, err)
	assert.True(t, out.Won)
	assert.Equal(t, int64(170000), out.PayoutKyat)
}

func TestEvaluateMatchRules(t *testing.T) {
	e := NewEngine(DefaultRules())

	tests := []struct {
		name    string
		game    GameType
		method  Method
		number  string
		winning string
		won     bool
	}{
		{"3d straight hit", ThreeD, Straight, "257", "257", true},
		{"3d straight miss", ThreeD, Straight, "257", "258", false},
		{"3d last3 equals straight", ThreeD, Last3, "257", "257", true},
		{"2d power reverse hit", TwoD, Power, "47", "74", true},
		{"2d power straight hit", TwoD, Power, "47", "47", true},
		{"2d power miss", TwoD, Power, "47", "48", false},
		{"3d power permutation hit", ThreeD, Power, "123", "312", true},
		{"3d power permutation miss", ThreeD, Power, "123", "124", false},
		{"2d break hit", TwoD, Break, "19", "28", true}, // both digit sums end in 0
		{"2d break miss", TwoD, Break, "19", "29", false},
		{"3d break hit", ThreeD, Break, "100", "010", true},
		{"thai first2 hit", Thai, First2, "12", "123456", true},
		{"thai first2 miss", Thai, First2, "34", "123456", false},
		{"thai last3 hit", Thai, Last3, "456", "123456", true},
		{"lao first3 hit", Lao, First3, "123", "123456", true},
		{"lao first3 miss", Lao, First3, "456", "123456", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := pendingBet(tc.game, tc.method, tc.number, 1000)
			out, err := e.Evaluate(b, resultFor(b, tc.winning))
			require.NoError(t, err)
			assert.Equal(t, tc.won, out.Won)
		})
	}
}

func TestEvaluatePayoutRoundTrip(t *testing.T) {
	e := NewEngine(DefaultRules())

	// payout / multiplier must reproduce the stake exactly
	for _, amount := range []int64{100, 777, 12345, 50000} {
		b := pendingBet(Thai, First3, "123", amount)
		out, err := e.Evaluate(b, resultFor(b, "123456"))
		require.NoError(t, err)
		require.True(t, out.Won)
		assert.Equal(t, amount, out.PayoutKyat/out.Multiplier)
	}
}

func TestEvaluateUnknownMethod(t *testing.T) {
	e := NewEngine(DefaultRules())

	// THAI has no STRAIGHT entry; evaluation must fail, never default
	b := pendingBet(Thai, Straight, "123456", 1000)
	_, err := e.Evaluate(b, resultFor(b, "123456"))
	assert.ErrorIs(t, err, ErrUnknownMethod)

	b = pendingBet(TwoD, Method("JACKPOT"), "47", 1000)
	_, err = e.Evaluate(b, resultFor(b, "47"))
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestEvaluateRejectsNonPending(t *testing.T) {
	e := NewEngine(DefaultRules())

	b := pendingBet(TwoD, Straight, "47", 1000)
	r := resultFor(b, "47")
	for _, st := range []Status{StatusWon, StatusLost, StatusCancelled, StatusSettlementFailed} {
		b.Status = st
		_, err := e.Evaluate(b, r)
		assert.ErrorIs(t, err, ErrNotPending, "status %s", st)
	}
}

func TestEvaluateRejectsDrawMismatch(t *testing.T) {
	e := NewEngine(DefaultRules())
	b := pendingBet(TwoD, Straight, "47", 1000)

	r := resultFor(b, "47")
	r.DrawDate = "2025-03-02"
	_, err := e.Evaluate(b, r)
	assert.ErrorIs(t, err, ErrDrawMismatch)

	r = resultFor(b, "47")
	r.DrawSession = Morning
	_, err = e.Evaluate(b, r)
	assert.ErrorIs(t, err, ErrDrawMismatch)

	r = resultFor(b, "47")
	r.GameType = ThreeD
	_, err = e.Evaluate(b, r)
	assert.ErrorIs(t, err, ErrDrawMismatch)
}

func TestEvaluateRejectsBadNumbers(t *testing.T) {
	e := NewEngine(DefaultRules())

	b := pendingBet(TwoD, Straight, "4a", 1000)
	_, err := e.Evaluate(b, resultFor(b, "47"))
	assert.ErrorIs(t, err, ErrInvalidNumberFormat)

	b = pendingBet(TwoD, Straight, "470", 1000)
	_, err = e.Evaluate(b, resultFor(b, "47"))
	assert.ErrorIs(t, err, ErrInvalidNumberFormat)

	// winning number of the wrong canonical length
	b = pendingBet(ThreeD, Straight, "123", 1000)
	_, err = e.Evaluate(b, resultFor(b, "123456"))
	assert.ErrorIs(t, err, ErrInvalidNumberFormat)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := NewEngine(DefaultRules())
	b := pendingBet(Lao, Last2, "56", 2000)
	r := resultFor(b, "123456")

	first, err := e.Evaluate(b, r)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		out, err := e.Evaluate(b, r)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
}

func TestHelperSlices(t *testing.T) {
	assert.Equal(t, "12", firstN("123456", 2))
	assert.Equal(t, "56", lastN("123456", 2))
	assert.Equal(t, "123", firstN("123", 3))
	assert.Equal(t, "123", lastN("123", 3))
	assert.Equal(t, "74", reverseDigits("47"))
	assert.Equal(t, 10, digitSum("19"))
	assert.True(t, isPermutation("123", "312"))
	assert.False(t, isPermutation("112", "122"))
}

func TestErrorsUnwrap(t *testing.T) {
	e := NewEngine(DefaultRules())
	b := pendingBet(Thai, Straight, "12", 1000)
	_, err := e.Evaluate(b, resultFor(b, "123456"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}
