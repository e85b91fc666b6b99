package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"music-jeopardy/internal/db"
)

// Persistence is write-behind: the in-memory store is authoritative and
// every helper here no-ops when the server runs without a database.
// Each call carries a bounded timeout so a stalled Postgres never
// blocks a game room.

func (s *Server) dbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.persistTimeout)
}

func (s *Server) persistGame(game Game) error {
	if s.db == nil {
		return nil
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	record := db.Game{
		Title:      game.Title,
		Question:   game.Question,
		MaxPlayers: game.MaxPlayers,
		Status:     string(game.Status),
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		return err
	}
	s.store.SetGameDBID(game.ID, record.ID)
	game.DBID = record.ID
	return s.persistEvent(game, "game_created", EventPayload{
		GameID: game.ID,
		Status: string(game.Status),
	})
}

func (s *Server) persistPlayer(game Game, player Player) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game has no database id")
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	record := db.Player{
		GameID:    game.DBID,
		Name:      player.Name,
		AvatarURL: player.AvatarURL,
		JoinedAt:  player.JoinedAt,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := s.findPlayerDBID(game.DBID, player.Name)
			if lookupErr == nil && existing != 0 {
				s.store.SetPlayerDBID(game.ID, player.ID, existing)
				return nil
			}
		}
		return err
	}
	s.store.SetPlayerDBID(game.ID, player.ID, record.ID)
	return s.persistEvent(game, "player_joined", EventPayload{
		PlayerName: player.Name,
		PlayerID:   player.ID,
	})
}

func (s *Server) persistStatus(game Game) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game has no database id")
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	updates := map[string]any{
		"status":     string(game.Status),
		"updated_at": time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Model(&db.Game{}).Where("id = ?", game.DBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEvent(game, "status_changed", EventPayload{
		GameID: game.ID,
		Status: string(game.Status),
	})
}

// persistResults swaps the stored result set in one transaction, so a
// repeated recording never leaves duplicate rows.
func (s *Server) persistResults(game Game) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game has no database id")
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", game.DBID).Delete(&db.GameResult{}).Error; err != nil {
			return err
		}
		if len(game.Results) == 0 {
			return nil
		}
		rows := make([]db.GameResult, 0, len(game.Results))
		for _, result := range game.Results {
			rows = append(rows, db.GameResult{
				GameID:   game.DBID,
				PlayerID: playerDBID(game, result.PlayerID),
				Score:    result.Score,
				Position: result.Position,
				IsWinner: result.IsWinner,
			})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}
	return s.persistEvent(game, "results_recorded", EventPayload{
		GameID: game.ID,
		Count:  len(game.Results),
	})
}

func (s *Server) persistAvatar(game Game, player Player) error {
	if s.db == nil {
		return nil
	}
	if player.DBID == 0 {
		existing, err := s.findPlayerDBID(game.DBID, player.Name)
		if err != nil || existing == 0 {
			return err
		}
		player.DBID = existing
		s.store.SetPlayerDBID(game.ID, player.ID, existing)
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	if err := s.db.WithContext(ctx).Model(&db.Player{}).Where("id = ?", player.DBID).Update("avatar_url", player.AvatarURL).Error; err != nil {
		return err
	}
	return s.persistEvent(game, "avatar_updated", EventPayload{
		PlayerID:  player.ID,
		AvatarURL: player.AvatarURL,
	})
}

func (s *Server) persistTeam(game Game, team Team) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game has no database id")
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	record := db.Team{Name: team.Name}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Exec(
		"INSERT INTO game_teams (game_id, team_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		game.DBID, record.ID,
	).Error; err != nil {
		return err
	}
	s.store.SetTeamDBID(game.ID, team.ID, record.ID)
	return s.persistEvent(game, "team_created", EventPayload{
		TeamID:   team.ID,
		TeamName: team.Name,
	})
}

func (s *Server) persistTeamMembership(game Game, team Team, player Player, joined bool) error {
	if s.db == nil {
		return nil
	}
	if team.DBID == 0 || player.DBID == 0 {
		return nil
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	if joined {
		row := db.TeamPlayer{TeamID: team.DBID, PlayerID: player.DBID}
		if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
			return err
		}
	} else {
		if err := s.db.WithContext(ctx).
			Where("team_id = ? AND player_id = ?", team.DBID, player.DBID).
			Delete(&db.TeamPlayer{}).Error; err != nil {
			return err
		}
	}
	eventType := "team_player_removed"
	if joined {
		eventType = "team_player_added"
	}
	return s.persistEvent(game, eventType, EventPayload{
		TeamID:   team.ID,
		PlayerID: player.ID,
	})
}

func (s *Server) persistEvent(game Game, eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	if game.DBID == 0 {
		return errors.New("game has no database id")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := s.dbContext()
	defer cancel()
	event := db.Event{
		GameID:   game.DBID,
		PlayerID: eventPlayerDBID(game, payload),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.WithContext(ctx).Create(&event).Error
}

func (s *Server) findPlayerDBID(gameDBID uint, name string) (uint, error) {
	ctx, cancel := s.dbContext()
	defer cancel()
	var record db.Player
	if err := s.db.WithContext(ctx).Where("game_id = ? AND name = ?", gameDBID, name).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.ID, nil
}

func playerDBID(game Game, playerID int) uint {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return game.Players[i].DBID
		}
	}
	return 0
}

func eventPlayerDBID(game Game, payload EventPayload) *uint {
	if payload.PlayerID == 0 {
		return nil
	}
	dbid := playerDBID(game, payload.PlayerID)
	if dbid == 0 {
		return nil
	}
	return &dbid
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
