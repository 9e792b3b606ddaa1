package settlement

// GameType identifies a lottery product.
type GameType string

const (
	TwoD   GameType = "2D"
	ThreeD GameType = "3D"
	Thai   GameType = "THAI"
	Lao    GameType = "LAO"
)

// Method is the betting sub-mode within a game type. It determines the
// digit length of the bet number, the match rule and the multiplier.
type Method string

const (
	Straight Method = "STRAIGHT"
	Power    Method = "POWER"
	Break    Method = "BREAK"
	First2   Method = "FIRST_2"
	Last2    Method = "LAST_2"
	First3   Method = "FIRST_3"
	Last3    Method = "LAST_3"
)

// Session distinguishes the draws of a day. 2D draws twice (12:01 and
// 16:30 Yangon time); the other games draw once in the evening.
type Session string

const (
	Morning Session = "MORNING"
	Evening Session = "EVENING"
)

// Status is the bet lifecycle state. PENDING is the only non-terminal
// state: settlement moves it to WON/LOST, user cancellation to
// CANCELLED, and a failed payout credit to SETTLEMENT_FAILED.
type Status string

const (
	StatusPending          Status = "PENDING"
	StatusWon              Status = "WON"
	StatusLost             Status = "LOST"
	StatusCancelled        Status = "CANCELLED"
	StatusSettlementFailed Status = "SETTLEMENT_FAILED"
)

// Bet is the in-memory view of a wager as the engine needs it.
type Bet struct {
	ID          string
	UserID      string
	GameType    GameType
	Method      Method
	Number      string
	AmountKyat  int64
	Status      Status
	DrawDate    string // "2006-01-02"
	DrawSession Session
}

// DrawResult is one published draw outcome. At most one exists per
// (GameType, DrawDate, DrawSession) and it is immutable once created.
type DrawResult struct {
	ID            string
	GameType      GameType
	DrawDate      string
	DrawSession   Session
	WinningNumber string
}

// Outcome is the pure result of evaluating one bet against one draw.
type Outcome struct {
	Won        bool
	Multiplier int64
	PayoutKyat int64
}
