package server

import "time"

type Status string

const (
	StatusWaiting    Status = "WAITING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// The only legal transitions. Everything else is rejected.
var statusTransitions = map[Status]Status{
	StatusWaiting:    StatusInProgress,
	StatusInProgress: StatusCompleted,
}

func validStatus(status Status) bool {
	switch status {
	case StatusWaiting, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Game struct {
	ID         string
	DBID       uint
	Title      string
	Question   string
	MaxPlayers int
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
	Players    []Player
	Teams      []Team
	Results    []Result
}

type Player struct {
	ID        int
	DBID      uint
	Name      string
	AvatarURL string
	JoinedAt  time.Time
}

type Team struct {
	ID        int
	DBID      uint
	Name      string
	PlayerIDs []int
}

// Result is a recorded (player, score, rank) tuple for a completed game.
type Result struct {
	PlayerID int
	Score    float64
	Position int
	IsWinner bool
}

type GameSummary struct {
	ID          string
	Title       string
	Status      Status
	PlayerCount int
	MaxPlayers  int
	CreatedAt   time.Time
}
