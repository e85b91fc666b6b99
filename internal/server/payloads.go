package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) gamePayload(game Game) gin.H {
	players := make([]gin.H, 0, len(game.Players))
	for _, player := range game.Players {
		players = append(players, playerPayload(player))
	}
	teams := make([]gin.H, 0, len(game.Teams))
	for _, team := range game.Teams {
		teams = append(teams, teamPayload(game.ID, team))
	}
	results := make([]gin.H, 0, len(game.Results))
	for _, result := range game.Results {
		results = append(results, gin.H{
			"player_id": result.PlayerID,
			"score":     result.Score,
			"position":  result.Position,
			"is_winner": result.IsWinner,
		})
	}
	return gin.H{
		"id":          game.ID,
		"title":       game.Title,
		"question":    game.Question,
		"max_players": game.MaxPlayers,
		"status":      game.Status,
		"created_at":  game.CreatedAt.Format(time.RFC3339),
		"updated_at":  game.UpdatedAt.Format(time.RFC3339),
		"players":     players,
		"teams":       teams,
		"results":     results,
		"connected":   s.connectedCount(game.ID),
	}
}

func playerPayload(player Player) gin.H {
	return gin.H{
		"id":         player.ID,
		"name":       player.Name,
		"avatar_url": player.AvatarURL,
		"joined_at":  player.JoinedAt.Format(time.RFC3339),
	}
}

func teamPayload(gameID string, team Team) gin.H {
	return gin.H{
		"id":         team.ID,
		"game_id":    gameID,
		"name":       team.Name,
		"player_ids": team.PlayerIDs,
	}
}

func summaryPayload(summary GameSummary) gin.H {
	return gin.H{
		"id":           summary.ID,
		"title":        summary.Title,
		"status":       summary.Status,
		"player_count": summary.PlayerCount,
		"max_players":  summary.MaxPlayers,
		"created_at":   summary.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) connectedCount(gameID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	count, err := s.registry.Count(ctx, gameID)
	if err != nil {
		s.log.Debugw("presence count failed", "game_id", gameID, "error", err)
		return 0
	}
	return count
}
