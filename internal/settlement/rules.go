package settlement

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GameRules carries the stake limits, the canonical length of the
// published winning number and the multiplier table of one game type.
type GameRules struct {
	MinBetKyat   int64            `yaml:"min_bet_kyat"`
	MaxBetKyat   int64            `yaml:"max_bet_kyat"`
	ResultLength int              `yaml:"result_length"`
	Multipliers  map[Method]int64 `yaml:"multipliers"`
}

// Rules is the full payout configuration, keyed by game type. Loaded
// once at process start; changing it requires a redeploy.
type Rules struct {
	Games map[GameType]GameRules `yaml:"games"`
}

// DefaultRules returns the compiled-in payout table.
func DefaultRules() Rules {
	return Rules{Games: map[GameType]GameRules{
		TwoD: {
			MinBetKyat:   100,
			MaxBetKyat:   50000,
			ResultLength: 2,
			Multipliers: map[Method]int64{
				Straight: 85,
				Power:    80,
				Break:    75,
			},
		},
		ThreeD: {
			MinBetKyat:   100,
			MaxBetKyat:   50000,
			ResultLength: 3,
			Multipliers: map[Method]int64{
				Straight: 500,
				Power:    450,
				Break:    400,
				First3:   500,
				Last3:    500,
			},
		},
		Thai: {
			MinBetKyat:   100,
			MaxBetKyat:   50000,
			ResultLength: 6,
			Multipliers: map[Method]int64{
				First2: 85,
				Last2:  85,
				First3: 500,
				Last3:  500,
			},
		},
		Lao: {
			MinBetKyat:   100,
			MaxBetKyat:   50000,
			ResultLength: 6,
			Multipliers: map[Method]int64{
				First2: 85,
				Last2:  85,
				First3: 500,
				Last3:  500,
			},
		},
	}}
}

// LoadRules reads a YAML override file, or returns the defaults when
// path is empty. The loaded table is validated before use.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}

	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules file: %w", err)
	}

	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("rules file %s: %w", path, err)
	}
	return r, nil
}

// Validate rejects tables with unusable limits or multipliers.
func (r Rules) Validate() error {
	if len(r.Games) == 0 {
		return fmt.Errorf("no games configured")
	}
	for game, gr := range r.Games {
		switch game {
		case TwoD, ThreeD, Thai, Lao:
		default:
			return fmt.Errorf("game %q: %w", game, ErrUnknownGame)
		}
		if gr.MinBetKyat <= 0 || gr.MaxBetKyat < gr.MinBetKyat {
			return fmt.Errorf("game %s: bad stake limits [%d, %d]", game, gr.MinBetKyat, gr.MaxBetKyat)
		}
		if gr.ResultLength < 2 || gr.ResultLength > 6 {
			return fmt.Errorf("game %s: bad result length %d", game, gr.ResultLength)
		}
		if len(gr.Multipliers) == 0 {
			return fmt.Errorf("game %s: no methods configured", game)
		}
		for method, mult := range gr.Multipliers {
			if mult <= 0 {
				return fmt.Errorf("game %s method %s: bad multiplier %d", game, method, mult)
			}
			if _, err := betNumberLength(game, method, gr.ResultLength); err != nil {
				return fmt.Errorf("game %s method %s: %w", game, method, err)
			}
		}
	}
	return nil
}

// Game returns the rules of one game type.
func (r Rules) Game(game GameType) (GameRules, error) {
	gr, ok := r.Games[game]
	if !ok {
		return GameRules{}, fmt.Errorf("game %q: %w", game, ErrUnknownGame)
	}
	return gr, nil
}

// Multiplier looks up the payout multiplier for a (game, method) pair.
// A miss is a configuration error, never a default.
func (r Rules) Multiplier(game GameType, method Method) (int64, error) {
	gr, err := r.Game(game)
	if err != nil {
		return 0, err
	}
	mult, ok := gr.Multipliers[method]
	if !ok {
		return 0, fmt.Errorf("game %s method %s: %w", game, method, ErrUnknownMethod)
	}
	return mult, nil
}

// BetNumberLength returns how many digits a bet number must have for
// the (game, method) pair.
func (r Rules) BetNumberLength(game GameType, method Method) (int, error) {
	gr, err := r.Game(game)
	if err != nil {
		return 0, err
	}
	if _, ok := gr.Multipliers[method]; !ok {
		return 0, fmt.Errorf("game %s method %s: %w", game, method, ErrUnknownMethod)
	}
	return betNumberLength(game, method, gr.ResultLength)
}

func betNumberLength(game GameType, method Method, resultLength int) (int, error) {
	switch method {
	case First2, Last2:
		return 2, nil
	case First3, Last3:
		return 3, nil
	case Straight, Power, Break:
		// full-number methods follow the game's canonical length
		switch game {
		case TwoD:
			return 2, nil
		case ThreeD:
			return 3, nil
		default:
			return 0, fmt.Errorf("game %s method %s: %w", game, method, ErrUnknownMethod)
		}
	default:
		return 0, fmt.Errorf("method %q: %w", method, ErrUnknownMethod)
	}
}

// ValidateResult checks a winning number against the game's canonical
// result length before it may be published.
func (r Rules) ValidateResult(game GameType, winningNumber string) error {
	gr, err := r.Game(game)
	if err != nil {
		return err
	}
	if len(winningNumber) != gr.ResultLength || !isDigits(winningNumber) {
		return fmt.Errorf("winning number %q for %s: %w", winningNumber, game, ErrInvalidNumberFormat)
	}
	return nil
}

// ValidateBet enforces the bet-creation invariants: digit-only number
// of the right length and a stake within [minBet, maxBet].
func (r Rules) ValidateBet(b Bet) error {
	gr, err := r.Game(b.GameType)
	if err != nil {
		return err
	}

	wantLen, err := r.BetNumberLength(b.GameType, b.Method)
	if err != nil {
		return err
	}
	if len(b.Number) != wantLen || !isDigits(b.Number) {
		return fmt.Errorf("number %q for %s/%s: %w", b.Number, b.GameType, b.Method, ErrInvalidNumberFormat)
	}

	if b.AmountKyat < gr.MinBetKyat || b.AmountKyat > gr.MaxBetKyat {
		return fmt.Errorf("amount %d outside [%d, %d]: %w", b.AmountKyat, gr.MinBetKyat, gr.MaxBetKyat, ErrAmountOutOfRange)
	}
	return nil
}
