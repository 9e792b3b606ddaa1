package settlement

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesValidate(t *testing.T) {
	require.NoError(t, DefaultRules().Validate())
}

func TestDefaultMultipliers(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		game   GameType
		method Method
		want   int64
	}{
		{TwoD, Straight, 85},
		{TwoD, Power, 80},
		{TwoD, Break, 75},
		{ThreeD, Straight, 500},
		{ThreeD, Power, 450},
		{ThreeD, Break, 400},
		{Thai, First2, 85},
		{Thai, Last3, 500},
		{Lao, Last2, 85},
		{Lao, First3, 500},
	}
	for _, tc := range tests {
		got, err := r.Multiplier(tc.game, tc.method)
		require.NoError(t, err, "%s/%s", tc.game, tc.method)
		assert.Equal(t, tc.want, got, "%s/%s", tc.game, tc.method)
	}
}

func TestMultiplierMissFailsLoudly(t *testing.T) {
	r := DefaultRules()

	_, err := r.Multiplier(TwoD, First3)
	assert.ErrorIs(t, err, ErrUnknownMethod)

	_, err = r.Multiplier(GameType("4D"), Straight)
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestBetNumberLength(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		game   GameType
		method Method
		want   int
	}{
		{TwoD, Straight, 2},
		{TwoD, Power, 2},
		{ThreeD, Straight, 3},
		{ThreeD, Last3, 3},
		{Thai, First2, 2},
		{Thai, Last3, 3},
		{Lao, Last2, 2},
	}
	for _, tc := range tests {
		got, err := r.BetNumberLength(tc.game, tc.method)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s/%s", tc.game, tc.method)
	}
}

func TestValidateBet(t *testing.T) {
	r := DefaultRules()

	ok := Bet{GameType: TwoD, Method: Straight, Number: "07", AmountKyat: 100}
	require.NoError(t, r.ValidateBet(ok))

	tests := []struct {
		name string
		bet  Bet
		want error
	}{
		{"short number", Bet{GameType: ThreeD, Method: Straight, Number: "12", AmountKyat: 1000}, ErrInvalidNumberFormat},
		{"long number", Bet{GameType: TwoD, Method: Straight, Number: "123", AmountKyat: 1000}, ErrInvalidNumberFormat},
		{"non digits", Bet{GameType: TwoD, Method: Straight, Number: "4x", AmountKyat: 1000}, ErrInvalidNumberFormat},
		{"below min", Bet{GameType: TwoD, Method: Straight, Number: "47", AmountKyat: 99}, ErrAmountOutOfRange},
		{"above max", Bet{GameType: TwoD, Method: Straight, Number: "47", AmountKyat: 50001}, ErrAmountOutOfRange},
		{"unknown method", Bet{GameType: Lao, Method: Straight, Number: "123456", AmountKyat: 1000}, ErrUnknownMethod},
		{"unknown game", Bet{GameType: GameType("5D"), Method: Straight, Number: "12345", AmountKyat: 1000}, ErrUnknownGame},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, r.ValidateBet(tc.bet), tc.want)
		})
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	content := `
games:
  "2D":
    min_bet_kyat: 200
    max_bet_kyat: 100000
    result_length: 2
    multipliers:
      STRAIGHT: 90
      BREAK: 70
`
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	r, err := LoadRules(path)
	require.NoError(t, err)

	mult, err := r.Multiplier(TwoD, Straight)
	require.NoError(t, err)
	assert.Equal(t, int64(90), mult)

	gr, err := r.Game(TwoD)
	require.NoError(t, err)
	assert.Equal(t, int64(200), gr.MinBetKyat)

	// overrides replace the whole table; unlisted pairs are misses
	_, err = r.Multiplier(TwoD, Power)
	assert.ErrorIs(t, err, ErrUnknownMethod)
}

func TestLoadRulesEmptyPathUsesDefaults(t *testing.T) {
	r, err := LoadRules("")
	require.NoError(t, err)
	mult, err := r.Multiplier(ThreeD, Straight)
	require.NoError(t, err)
	assert.Equal(t, int64(500), mult)
}

func TestLoadRulesRejectsBadTables(t *testing.T) {
	dir := t.TempDir()

	bad := []struct {
		name    string
		content string
	}{
		{"zero multiplier", `
games:
  "2D":
    min_bet_kyat: 100
    max_bet_kyat: 50000
    result_length: 2
    multipliers:
      STRAIGHT: 0
`},
		{"inverted limits", `
games:
  "2D":
    min_bet_kyat: 1000
    max_bet_kyat: 100
    result_length: 2
    multipliers:
      STRAIGHT: 85
`},
		{"unknown game", `
games:
  "9D":
    min_bet_kyat: 100
    max_bet_kyat: 50000
    result_length: 2
    multipliers:
      STRAIGHT: 85
`},
		{"full-number method on six-digit game", `
games:
  "THAI":
    min_bet_kyat: 100
    max_bet_kyat: 50000
    result_length: 6
    multipliers:
      STRAIGHT: 85
`},
	}

	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o600))
			_, err := LoadRules(path)
			assert.Error(t, err)
		})
	}
}

func TestValidateResult(t *testing.T) {
	rules := DefaultRules()

	assert.NoError(t, rules.ValidateResult(TwoD, "47"))
	assert.NoError(t, rules.ValidateResult(ThreeD, "123"))
	assert.NoError(t, rules.ValidateResult(Thai, "123456"))

	tests := []struct {
		name    string
		game    GameType
		number  string
		wantErr error
	}{
		{"too short for 2D", TwoD, "4", ErrInvalidNumberFormat},
		{"too long for 3D", ThreeD, "1234", ErrInvalidNumberFormat},
		{"non digit", TwoD, "4x", ErrInvalidNumberFormat},
		{"thai needs six digits", Thai, "123", ErrInvalidNumberFormat},
		{"unknown game", GameType("4D"), "1234", ErrUnknownGame},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := rules.ValidateResult(tc.game, tc.number)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
