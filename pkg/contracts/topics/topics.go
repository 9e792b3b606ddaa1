package topics

const (
	// Draw results
	ResultPublished = "result_published"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	ResultPublishedDLQ = "result_published_dlq"
	BetPlacedDLQ       = "bet_placed_dlq"
)
