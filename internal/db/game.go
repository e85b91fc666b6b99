package db

import "time"

type Game struct {
	ID         uint      `gorm:"primaryKey"`
	Title      string    `gorm:"size:120;not null"`
	Question   string    `gorm:"size:280;not null"`
	MaxPlayers int       `gorm:"not null;default:4"`
	Status     string    `gorm:"size:32;not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	Players    []Player
	Results    []GameResult
	Teams      []Team `gorm:"many2many:game_teams"`
	Events     []Event
}
