package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type createGameRequest struct {
	Title      string `json:"title" binding:"required,gametitle"`
	Question   string `json:"question" binding:"required,gamequestion"`
	MaxPlayers *int   `json:"maxPlayers" binding:"omitempty,min=1,max=32"`
}

type joinGameRequest struct {
	PlayerName string `json:"playerName" binding:"required,playername"`
}

type resultRequest struct {
	PlayerID int     `json:"playerId" binding:"required"`
	Score    float64 `json:"score"`
	Position int     `json:"position" binding:"required,min=1"`
	IsWinner bool    `json:"isWinner"`
}

type updateGameRequest struct {
	Status  *string         `json:"status"`
	Results []resultRequest `json:"results" binding:"omitempty,dive"`
}

type avatarRequest struct {
	AvatarURL string `json:"avatarUrl" binding:"required,max=512"`
}

type createTeamRequest struct {
	Name string `json:"name" binding:"required,teamname"`
}

type assignTeamPlayerRequest struct {
	PlayerID int `json:"playerId" binding:"required"`
}

type notifyAvatarRequest struct {
	GameID   string `json:"gameId" binding:"required"`
	PlayerID int    `json:"playerId" binding:"required"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if !bindJSON(c, &req, bindMessages{
		"Title":      {"required": "title is required", "gametitle": "title is invalid"},
		"Question":   {"required": "question is required", "gamequestion": "question is invalid"},
		"MaxPlayers": {"min": "maxPlayers must be at least 1", "max": "maxPlayers is too large"},
	}, "invalid game request") {
		return
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		s.writeError(c, errInvalidInput(err.Error()))
		return
	}
	question, err := validateQuestion(req.Question)
	if err != nil {
		s.writeError(c, errInvalidInput(err.Error()))
		return
	}
	maxPlayers := s.cfg.DefaultMaxPlayers
	if req.MaxPlayers != nil {
		maxPlayers = *req.MaxPlayers
	}

	game := s.store.CreateGame(title, question, maxPlayers)
	if err := s.persistGame(game); err != nil {
		s.log.Errorw("failed to persist game", "game_id", game.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create game"})
		return
	}
	s.log.Infow("game created", "game_id", game.ID, "title", game.Title, "max_players", game.MaxPlayers)
	c.JSON(http.StatusCreated, s.gamePayload(game))
}

func (s *Server) handleListGames(c *gin.Context) {
	summaries := s.store.ListGames()
	games := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		games = append(games, summaryPayload(summary))
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) handleGameHistory(c *gin.Context) {
	completed := s.store.ListCompleted()
	games := make([]gin.H, 0, len(completed))
	for _, game := range completed {
		games = append(games, s.gamePayload(game))
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

func (s *Server) handleGetGame(c *gin.Context) {
	game, ok := s.store.GetGame(c.Param("id"))
	if !ok {
		s.writeError(c, errNotFound("Game not found"))
		return
	}
	c.JSON(http.StatusOK, s.gamePayload(game))
}

func (s *Server) handleUpdateGame(c *gin.Context) {
	var req updateGameRequest
	if !bindJSON(c, &req, bindMessages{
		"PlayerID": {"required": "result playerId is required"},
		"Position": {"required": "result position is required", "min": "result position must be 1 or greater"},
	}, "invalid update request") {
		return
	}
	if req.Status == nil && req.Results == nil {
		s.writeError(c, errInvalidInput("nothing to update"))
		return
	}
	gameID := c.Param("id")

	var status *Status
	if req.Status != nil {
		value := Status(*req.Status)
		status = &value
	}
	var results []Result
	if req.Results != nil {
		results = make([]Result, 0, len(req.Results))
		for _, row := range req.Results {
			results = append(results, Result{
				PlayerID: row.PlayerID,
				Score:    row.Score,
				Position: row.Position,
				IsWinner: row.IsWinner,
			})
		}
	}

	game, err := s.store.UpdateGame(gameID, status, results)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if status != nil {
		if err := s.persistStatus(game); err != nil {
			s.log.Errorw("failed to persist status", "game_id", gameID, "error", err)
		}
		s.log.Infow("game status changed", "game_id", gameID, "status", game.Status)
	}
	if results != nil {
		if err := s.persistResults(game); err != nil {
			s.log.Errorw("failed to persist results", "game_id", gameID, "error", err)
		}
		s.log.Infow("game results recorded", "game_id", gameID, "count", len(results))
	}

	s.hub.Broadcast(game.ID, eventGameUpdated, s.gamePayload(game), nil)
	c.JSON(http.StatusOK, s.gamePayload(game))
}

func (s *Server) handleJoinGame(c *gin.Context) {
	var req joinGameRequest
	if !bindJSON(c, &req, bindMessages{
		"PlayerName": {"required": "playerName is required", "playername": "playerName is invalid"},
	}, "invalid join request") {
		return
	}
	name, err := validatePlayerName(req.PlayerName)
	if err != nil {
		s.writeError(c, errInvalidInput(err.Error()))
		return
	}

	game, player, err := s.store.Join(c.Param("id"), name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.persistPlayer(game, player); err != nil {
		s.log.Errorw("failed to persist player", "game_id", game.ID, "player", player.Name, "error", err)
	}
	s.log.Infow("player joined", "game_id", game.ID, "player_id", player.ID, "player", player.Name)

	s.hub.Broadcast(game.ID, eventPlayerUpdated, gin.H{
		"gameId": game.ID,
		"player": playerPayload(player),
	}, nil)
	c.JSON(http.StatusOK, s.gamePayload(game))
}

func (s *Server) handleUpdateAvatar(c *gin.Context) {
	playerID, ok := paramInt(c, "playerID")
	if !ok {
		return
	}
	var req avatarRequest
	if !bindJSON(c, &req, bindMessages{
		"AvatarURL": {"required": "avatarUrl is required", "max": "avatarUrl is too long"},
	}, "invalid avatar request") {
		return
	}

	game, player, err := s.store.SetAvatar(c.Param("id"), playerID, req.AvatarURL)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.persistAvatar(game, player); err != nil {
		s.log.Errorw("failed to persist avatar", "game_id", game.ID, "player_id", player.ID, "error", err)
	}

	s.hub.Broadcast(game.ID, eventAvatarUpdated, gin.H{
		"gameId":    game.ID,
		"playerId":  player.ID,
		"avatarUrl": player.AvatarURL,
	}, nil)
	c.JSON(http.StatusOK, s.gamePayload(game))
}

func (s *Server) handleCreateTeam(c *gin.Context) {
	var req createTeamRequest
	if !bindJSON(c, &req, bindMessages{
		"Name": {"required": "team name is required", "teamname": "team name is invalid"},
	}, "invalid team request") {
		return
	}
	name, err := validateTeamName(req.Name)
	if err != nil {
		s.writeError(c, errInvalidInput(err.Error()))
		return
	}

	game, team, err := s.store.CreateTeam(c.Param("id"), name)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if err := s.persistTeam(game, team); err != nil {
		s.log.Errorw("failed to persist team", "game_id", game.ID, "team_id", team.ID, "error", err)
	}
	s.log.Infow("team created", "game_id", game.ID, "team_id", team.ID, "name", team.Name)

	s.hub.Broadcast(game.ID, eventTeamUpdated, gin.H{
		"gameId": game.ID,
		"team":   teamPayload(game.ID, team),
	}, nil)
	c.JSON(http.StatusCreated, teamPayload(game.ID, team))
}

func (s *Server) handleAssignTeamPlayer(c *gin.Context) {
	teamID, ok := paramInt(c, "teamID")
	if !ok {
		return
	}
	var req assignTeamPlayerRequest
	if !bindJSON(c, &req, bindMessages{
		"PlayerID": {"required": "playerId is required"},
	}, "invalid assignment request") {
		return
	}

	game, team, err := s.store.AssignToTeam(c.Param("id"), teamID, req.PlayerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if player, found := findPlayer(game, req.PlayerID); found {
		if err := s.persistTeamMembership(game, team, player, true); err != nil {
			s.log.Errorw("failed to persist team membership", "game_id", game.ID, "team_id", team.ID, "error", err)
		}
	}

	s.hub.Broadcast(game.ID, eventTeamUpdated, gin.H{
		"gameId": game.ID,
		"team":   teamPayload(game.ID, team),
	}, nil)
	c.JSON(http.StatusOK, teamPayload(game.ID, team))
}

func (s *Server) handleRemoveTeamPlayer(c *gin.Context) {
	teamID, ok := paramInt(c, "teamID")
	if !ok {
		return
	}
	playerID, ok := paramInt(c, "playerID")
	if !ok {
		return
	}

	game, team, err := s.store.RemoveFromTeam(c.Param("id"), teamID, playerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if player, found := findPlayer(game, playerID); found {
		if err := s.persistTeamMembership(game, team, player, false); err != nil {
			s.log.Errorw("failed to persist team membership", "game_id", game.ID, "team_id", team.ID, "error", err)
		}
	}

	s.hub.Broadcast(game.ID, eventTeamUpdated, gin.H{
		"gameId": game.ID,
		"team":   teamPayload(game.ID, team),
	}, nil)
	c.JSON(http.StatusOK, teamPayload(game.ID, team))
}

// handleRemovePlayerFromAllTeams is the explicitly named bulk removal
// across every team in the game.
func (s *Server) handleRemovePlayerFromAllTeams(c *gin.Context) {
	playerID, ok := paramInt(c, "playerID")
	if !ok {
		return
	}

	game, changed, err := s.store.RemoveFromAllTeams(c.Param("id"), playerID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	player, found := findPlayer(game, playerID)
	teams := make([]gin.H, 0, len(changed))
	for _, team := range changed {
		if found {
			if err := s.persistTeamMembership(game, team, player, false); err != nil {
				s.log.Errorw("failed to persist team membership", "game_id", game.ID, "team_id", team.ID, "error", err)
			}
		}
		teams = append(teams, teamPayload(game.ID, team))
		s.hub.Broadcast(game.ID, eventTeamUpdated, gin.H{
			"gameId": game.ID,
			"team":   teamPayload(game.ID, team),
		}, nil)
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// Fire-and-forget notification stub kept for front-end compatibility.
func (s *Server) handleNotifyAvatarUpdate(c *gin.Context) {
	var req notifyAvatarRequest
	if !bindJSON(c, &req, bindMessages{
		"GameID":   {"required": "gameId is required"},
		"PlayerID": {"required": "playerId is required"},
	}, "invalid notification request") {
		return
	}
	s.log.Infow("avatar update notification", "game_id", req.GameID, "player_id", req.PlayerID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "avatar update noted",
	})
}

func paramInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Param(name))
	if err != nil || value <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return value, true
}

func findPlayer(game Game, playerID int) (Player, bool) {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return game.Players[i], true
		}
	}
	return Player{}, false
}
