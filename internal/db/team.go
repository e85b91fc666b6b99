package db

import "time"

type Team struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Games     []Game       `gorm:"many2many:game_teams"`
	Members   []TeamPlayer `gorm:"foreignKey:TeamID"`
}

type TeamPlayer struct {
	TeamID    uint      `gorm:"primaryKey;autoIncrement:false"`
	PlayerID  uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"not null"`
}
