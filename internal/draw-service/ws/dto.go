package ws

// ClientMsg is a message received from a WebSocket client.
// Type: subscribe | unsubscribe | ping
// GameType: required for subscribe/unsubscribe ("2D", "3D", "THAI", "LAO")
type ClientMsg struct {
	Type     string `json:"type"`
	GameType string `json:"gameType"`
}

// ResultUpdate is pushed to every client subscribed to the game when a
// winning number is published.
type ResultUpdate struct {
	GameType string      `json:"gameType"`
	Payload  interface{} `json:"payload"`
}
