package dto

type OpenSessionRequest struct {
	GameType    string `json:"game_type"`
	DrawDate    string `json:"draw_date"` // "2006-01-02"
	DrawSession string `json:"draw_session"`
}

type CloseSessionRequest struct {
	GameType    string `json:"game_type"`
	DrawDate    string `json:"draw_date"`
	DrawSession string `json:"draw_session"`
}

// PublishResultRequest is the operator call that fixes the winning
// number of a draw and triggers settlement downstream.
type PublishResultRequest struct {
	GameType      string `json:"game_type"`
	DrawDate      string `json:"draw_date"`
	DrawSession   string `json:"draw_session"`
	WinningNumber string `json:"winning_number"`
	PublishedBy   string `json:"published_by"`
}
