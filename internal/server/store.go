package server

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Store holds the authoritative in-memory game state behind a single
// mutex, so the join capacity check and the insert commit together and
// concurrent joins cannot overshoot MaxPlayers.
type Store struct {
	mu           sync.Mutex
	nextGameID   int
	nextPlayerID int
	nextTeamID   int
	games        map[string]*Game
	allowMulti   bool
}

func NewStore(allowMultiTeamMembership bool) *Store {
	return &Store{
		nextGameID:   1,
		nextPlayerID: 1,
		nextTeamID:   1,
		games:        make(map[string]*Game),
		allowMulti:   allowMultiTeamMembership,
	}
}

func (s *Store) CreateGame(title, question string, maxPlayers int) Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := fmt.Sprintf("game-%d", s.nextGameID)
	s.nextGameID++
	now := timeNowUTC()
	game := &Game{
		ID:         id,
		Title:      title,
		Question:   question,
		MaxPlayers: maxPlayers,
		Status:     StatusWaiting,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.games[id] = game
	return cloneGame(game)
}

func (s *Store) GetGame(id string) (Game, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[id]
	if !ok {
		return Game{}, false
	}
	return cloneGame(game), true
}

// Join adds a player to a WAITING game. Name uniqueness is
// case-sensitive exact match.
func (s *Store) Join(gameID, name string) (Game, Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, Player{}, errNotFound("Game not found")
	}
	if len(game.Players) >= game.MaxPlayers {
		return Game{}, Player{}, errConflict("Game is full")
	}
	if game.Status != StatusWaiting {
		return Game{}, Player{}, errConflict("Game is not accepting players")
	}
	for i := range game.Players {
		if game.Players[i].Name == name {
			return Game{}, Player{}, errConflict("Player name already taken")
		}
	}

	player := Player{
		ID:       s.nextPlayerID,
		Name:     name,
		JoinedAt: timeNowUTC(),
	}
	s.nextPlayerID++
	game.Players = append(game.Players, player)
	game.UpdatedAt = timeNowUTC()
	return cloneGame(game), player, nil
}

// UpdateGame applies a status transition and/or a result recording as
// one atomic change: both parts are validated before either mutates the
// game, so a rejected update leaves the game exactly as it was. A nil
// status or nil results slice means that part is untouched.
func (s *Store) UpdateGame(gameID string, status *Status, results []Result) (Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, errNotFound("Game not found")
	}
	if status != nil {
		if !validStatus(*status) {
			return Game{}, errInvalidInput("Unknown game status")
		}
		if statusTransitions[game.Status] != *status {
			return Game{}, errConflict(fmt.Sprintf("Invalid status transition %s -> %s", game.Status, *status))
		}
	}
	for _, result := range results {
		if result.Position < 1 {
			return Game{}, errInvalidInput("Result position must be 1 or greater")
		}
		if !hasPlayerLocked(game, result.PlayerID) {
			return Game{}, errInvalidInput("Result references an unknown player")
		}
	}

	if status != nil {
		game.Status = *status
	}
	if results != nil {
		replacement := make([]Result, len(results))
		copy(replacement, results)
		sort.Slice(replacement, func(i, j int) bool {
			return replacement[i].Position < replacement[j].Position
		})
		game.Results = replacement
	}
	game.UpdatedAt = timeNowUTC()
	return cloneGame(game), nil
}

// SetStatus applies the WAITING → IN_PROGRESS → COMPLETED chain; any
// other requested transition is rejected.
func (s *Store) SetStatus(gameID string, status Status) (Game, error) {
	return s.UpdateGame(gameID, &status, nil)
}

// RecordResults replaces the game's result set. Recording twice swaps
// the previous rows rather than appending to them.
func (s *Store) RecordResults(gameID string, results []Result) (Game, error) {
	if results == nil {
		results = []Result{}
	}
	return s.UpdateGame(gameID, nil, results)
}

// SetAvatar updates the only mutable player field.
func (s *Store) SetAvatar(gameID string, playerID int, avatarURL string) (Game, Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, Player{}, errNotFound("Game not found")
	}
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			game.Players[i].AvatarURL = avatarURL
			game.UpdatedAt = timeNowUTC()
			return cloneGame(game), game.Players[i], nil
		}
	}
	return Game{}, Player{}, errNotFound("Player not found")
}

func (s *Store) CreateTeam(gameID, name string) (Game, Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, Team{}, errNotFound("Game not found")
	}
	team := Team{
		ID:   s.nextTeamID,
		Name: name,
	}
	s.nextTeamID++
	game.Teams = append(game.Teams, team)
	game.UpdatedAt = timeNowUTC()
	return cloneGame(game), team, nil
}

// AssignToTeam puts a player on a team. Re-assigning to the same team
// is a no-op; joining a second team in the same game is rejected unless
// multi-team membership is enabled.
func (s *Store) AssignToTeam(gameID string, teamID, playerID int) (Game, Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, Team{}, errNotFound("Game not found")
	}
	if !hasPlayerLocked(game, playerID) {
		return Game{}, Team{}, errNotFound("Player not found")
	}
	target := findTeamLocked(game, teamID)
	if target == nil {
		return Game{}, Team{}, errNotFound("Team not found")
	}
	for _, id := range target.PlayerIDs {
		if id == playerID {
			return cloneGame(game), cloneTeam(target), nil
		}
	}
	if !s.allowMulti {
		for i := range game.Teams {
			if game.Teams[i].ID == teamID {
				continue
			}
			for _, id := range game.Teams[i].PlayerIDs {
				if id == playerID {
					return Game{}, Team{}, errConflict("Player already belongs to a team in this game")
				}
			}
		}
	}
	target.PlayerIDs = append(target.PlayerIDs, playerID)
	game.UpdatedAt = timeNowUTC()
	return cloneGame(game), cloneTeam(target), nil
}

// RemoveFromTeam removes one (game, team, player) membership. Removing
// a player who is not on the team is a no-op.
func (s *Store) RemoveFromTeam(gameID string, teamID, playerID int) (Game, Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, Team{}, errNotFound("Game not found")
	}
	target := findTeamLocked(game, teamID)
	if target == nil {
		return Game{}, Team{}, errNotFound("Team not found")
	}
	removeTeamMemberLocked(target, playerID)
	game.UpdatedAt = timeNowUTC()
	return cloneGame(game), cloneTeam(target), nil
}

// RemoveFromAllTeams is the explicitly named bulk removal: it strips
// the player from every team in the game and returns the teams that
// changed.
func (s *Store) RemoveFromAllTeams(gameID string, playerID int) (Game, []Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		return Game{}, nil, errNotFound("Game not found")
	}
	var changed []Team
	for i := range game.Teams {
		if removeTeamMemberLocked(&game.Teams[i], playerID) {
			changed = append(changed, cloneTeam(&game.Teams[i]))
		}
	}
	if len(changed) > 0 {
		game.UpdatedAt = timeNowUTC()
	}
	return cloneGame(game), changed, nil
}

func (s *Store) ListGames() []GameSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]GameSummary, 0, len(s.games))
	for _, game := range s.games {
		list = append(list, GameSummary{
			ID:          game.ID,
			Title:       game.Title,
			Status:      game.Status,
			PlayerCount: len(game.Players),
			MaxPlayers:  game.MaxPlayers,
			CreatedAt:   game.CreatedAt,
		})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return gameSortKey(list[i].ID) > gameSortKey(list[j].ID)
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}

func (s *Store) ListCompleted() []Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Game, 0)
	for _, game := range s.games {
		if game.Status != StatusCompleted {
			continue
		}
		list = append(list, cloneGame(game))
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].UpdatedAt.Equal(list[j].UpdatedAt) {
			return gameSortKey(list[i].ID) > gameSortKey(list[j].ID)
		}
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	return list
}

// The DBID setters let the persistence layer record row ids assigned
// by Postgres after the in-memory commit.

func (s *Store) SetGameDBID(gameID string, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if game, ok := s.games[gameID]; ok {
		game.DBID = dbid
	}
}

func (s *Store) SetPlayerDBID(gameID string, playerID int, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return
	}
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			game.Players[i].DBID = dbid
			return
		}
	}
}

func (s *Store) SetTeamDBID(gameID string, teamID int, dbid uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	game, ok := s.games[gameID]
	if !ok {
		return
	}
	for i := range game.Teams {
		if game.Teams[i].ID == teamID {
			game.Teams[i].DBID = dbid
			return
		}
	}
}

func hasPlayerLocked(game *Game, playerID int) bool {
	for i := range game.Players {
		if game.Players[i].ID == playerID {
			return true
		}
	}
	return false
}

func findTeamLocked(game *Game, teamID int) *Team {
	for i := range game.Teams {
		if game.Teams[i].ID == teamID {
			return &game.Teams[i]
		}
	}
	return nil
}

func removeTeamMemberLocked(team *Team, playerID int) bool {
	for i, id := range team.PlayerIDs {
		if id == playerID {
			team.PlayerIDs = append(team.PlayerIDs[:i], team.PlayerIDs[i+1:]...)
			return true
		}
	}
	return false
}

func cloneGame(game *Game) Game {
	clone := *game
	clone.Players = make([]Player, len(game.Players))
	copy(clone.Players, game.Players)
	clone.Teams = make([]Team, len(game.Teams))
	for i := range game.Teams {
		clone.Teams[i] = cloneTeam(&game.Teams[i])
	}
	clone.Results = make([]Result, len(game.Results))
	copy(clone.Results, game.Results)
	return clone
}

func cloneTeam(team *Team) Team {
	clone := *team
	clone.PlayerIDs = make([]int, len(team.PlayerIDs))
	copy(clone.PlayerIDs, team.PlayerIDs)
	return clone
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
