package db

import "time"

type GameResult struct {
	ID        uint      `gorm:"primaryKey"`
	GameID    uint      `gorm:"index;not null;uniqueIndex:idx_results_game_player"`
	PlayerID  uint      `gorm:"index;not null;uniqueIndex:idx_results_game_player"`
	Score     float64   `gorm:"not null"`
	Position  int       `gorm:"not null"`
	IsWinner  bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}
