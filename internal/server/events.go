package server

type EventPayload struct {
	GameID     string  `json:"game_id,omitempty"`
	PlayerName string  `json:"player,omitempty"`
	PlayerID   int     `json:"player_id,omitempty"`
	TeamID     int     `json:"team_id,omitempty"`
	TeamName   string  `json:"team,omitempty"`
	Status     string  `json:"status,omitempty"`
	AvatarURL  string  `json:"avatar_url,omitempty"`
	Score      float64 `json:"score,omitempty"`
	Position   int     `json:"position,omitempty"`
	Count      int     `json:"count,omitempty"`
}
