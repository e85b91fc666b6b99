package server

import (
	"fmt"
	"sync"
	"testing"
)

func TestJoinFullGameRejected(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 2)

	if _, _, err := store.Join(game.ID, "Alice"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}
	if _, _, err := store.Join(game.ID, "Bob"); err != nil {
		t.Fatalf("second join failed: %v", err)
	}
	_, _, err := store.Join(game.ID, "Carol")
	if err == nil || err.Error() != "Game is full" {
		t.Fatalf("expected full-game conflict, got %v", err)
	}
	if kindOf(err) != kindConflict {
		t.Fatalf("expected conflict kind, got %v", kindOf(err))
	}

	updated, _ := store.GetGame(game.ID)
	if len(updated.Players) != 2 {
		t.Fatalf("rejected join must not create a player, got %d players", len(updated.Players))
	}
}

func TestJoinDuplicateNameRejected(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)

	if _, _, err := store.Join(game.ID, "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	_, _, err := store.Join(game.ID, "Alice")
	if err == nil || err.Error() != "Player name already taken" {
		t.Fatalf("expected duplicate-name conflict, got %v", err)
	}

	updated, _ := store.GetGame(game.ID)
	if len(updated.Players) != 1 {
		t.Fatalf("expected 1 player after duplicate rejection, got %d", len(updated.Players))
	}
}

func TestJoinConcurrentNeverOvershootsCapacity(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Rush Hour", "Name that tune", 4)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, _, err := store.Join(game.ID, fmt.Sprintf("player-%d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	joined := 0
	for err := range errs {
		if err == nil {
			joined++
		}
	}
	if joined != 4 {
		t.Fatalf("expected exactly 4 joins to succeed, got %d", joined)
	}
	updated, _ := store.GetGame(game.ID)
	if len(updated.Players) != 4 {
		t.Fatalf("expected 4 players, got %d", len(updated.Players))
	}
}

func TestJoinConcurrentSameNameAdmitsOne(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Rush Hour", "Name that tune", 8)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := store.Join(game.ID, "Alice")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	joined := 0
	for err := range errs {
		if err == nil {
			joined++
		}
	}
	if joined != 1 {
		t.Fatalf("expected exactly 1 join to win the name, got %d", joined)
	}
	updated, _ := store.GetGame(game.ID)
	seen := make(map[string]bool, len(updated.Players))
	for _, player := range updated.Players {
		if seen[player.Name] {
			t.Fatalf("duplicate player name committed: %q", player.Name)
		}
		seen[player.Name] = true
	}
}

func TestJoinUnknownGame(t *testing.T) {
	store := NewStore(false)
	_, _, err := store.Join("game-404", "Alice")
	if err == nil || kindOf(err) != kindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestJoinAfterStart(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	if _, err := store.SetStatus(game.ID, StatusInProgress); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	_, _, err := store.Join(game.ID, "Alice")
	if err == nil || err.Error() != "Game is not accepting players" {
		t.Fatalf("expected not-accepting conflict, got %v", err)
	}
}

func TestStatusTransitionChain(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)

	if _, err := store.SetStatus(game.ID, StatusInProgress); err != nil {
		t.Fatalf("WAITING -> IN_PROGRESS failed: %v", err)
	}
	if _, err := store.SetStatus(game.ID, StatusCompleted); err != nil {
		t.Fatalf("IN_PROGRESS -> COMPLETED failed: %v", err)
	}
	if _, err := store.SetStatus(game.ID, StatusWaiting); err == nil {
		t.Fatal("COMPLETED -> WAITING must be rejected")
	}
}

func TestStatusIllegalTransitions(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)

	if _, err := store.SetStatus(game.ID, StatusCompleted); err == nil {
		t.Fatal("WAITING -> COMPLETED must be rejected")
	}
	if _, err := store.SetStatus(game.ID, StatusWaiting); err == nil {
		t.Fatal("WAITING -> WAITING must be rejected")
	}
	if _, err := store.SetStatus(game.ID, Status("PAUSED")); err == nil {
		t.Fatal("unknown status must be rejected")
	}
}

func TestRecordResultsReplacesExisting(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, alice, _ := store.Join(game.ID, "Alice")
	_, bob, _ := store.Join(game.ID, "Bob")
	_, _ = store.SetStatus(game.ID, StatusInProgress)
	_, _ = store.SetStatus(game.ID, StatusCompleted)

	first := []Result{
		{PlayerID: bob.ID, Score: 40, Position: 2},
		{PlayerID: alice.ID, Score: 70, Position: 1, IsWinner: true},
	}
	updated, err := store.RecordResults(game.ID, first)
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if len(updated.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(updated.Results))
	}
	if updated.Results[0].Position != 1 || updated.Results[1].Position != 2 {
		t.Fatalf("results must be ordered by position ascending, got %+v", updated.Results)
	}

	second := []Result{
		{PlayerID: alice.ID, Score: 75, Position: 1, IsWinner: true},
		{PlayerID: bob.ID, Score: 45, Position: 2},
	}
	updated, err = store.RecordResults(game.ID, second)
	if err != nil {
		t.Fatalf("second record failed: %v", err)
	}
	if len(updated.Results) != 2 {
		t.Fatalf("second recording must replace, not append; got %d results", len(updated.Results))
	}
	if updated.Results[0].Score != 75 {
		t.Fatalf("expected replaced score 75, got %v", updated.Results[0].Score)
	}
}

func TestUpdateGameRejectedResultsLeaveStatusUntouched(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	status := StatusInProgress

	_, err := store.UpdateGame(game.ID, &status, []Result{{PlayerID: 99, Score: 1, Position: 1}})
	if err == nil || kindOf(err) != kindInvalidInput {
		t.Fatalf("expected invalid-input for unknown player, got %v", err)
	}
	updated, _ := store.GetGame(game.ID)
	if updated.Status != StatusWaiting {
		t.Fatalf("rejected update must not apply the status change, got %s", updated.Status)
	}
	if len(updated.Results) != 0 {
		t.Fatalf("rejected update must not store results, got %+v", updated.Results)
	}
}

func TestRecordResultsUnknownPlayer(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, err := store.RecordResults(game.ID, []Result{{PlayerID: 99, Score: 1, Position: 1}})
	if err == nil || kindOf(err) != kindInvalidInput {
		t.Fatalf("expected invalid-input, got %v", err)
	}
}

func TestAssignToTeamSingleMembership(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, alice, _ := store.Join(game.ID, "Alice")
	_, red, _ := store.CreateTeam(game.ID, "Red")
	_, blue, _ := store.CreateTeam(game.ID, "Blue")

	if _, _, err := store.AssignToTeam(game.ID, red.ID, alice.ID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, team, err := store.AssignToTeam(game.ID, red.ID, alice.ID); err != nil || len(team.PlayerIDs) != 1 {
		t.Fatalf("re-assign to same team must be a no-op, got %v %v", team, err)
	}
	_, _, err := store.AssignToTeam(game.ID, blue.ID, alice.ID)
	if err == nil || kindOf(err) != kindConflict {
		t.Fatalf("expected conflict joining second team, got %v", err)
	}
}

func TestAssignToTeamMultiMembershipAllowed(t *testing.T) {
	store := NewStore(true)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, alice, _ := store.Join(game.ID, "Alice")
	_, red, _ := store.CreateTeam(game.ID, "Red")
	_, blue, _ := store.CreateTeam(game.ID, "Blue")

	if _, _, err := store.AssignToTeam(game.ID, red.ID, alice.ID); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, _, err := store.AssignToTeam(game.ID, blue.ID, alice.ID); err != nil {
		t.Fatalf("multi-team assign must succeed when enabled: %v", err)
	}
}

func TestRemoveFromTeam(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, alice, _ := store.Join(game.ID, "Alice")
	_, red, _ := store.CreateTeam(game.ID, "Red")
	_, _, _ = store.AssignToTeam(game.ID, red.ID, alice.ID)

	_, team, err := store.RemoveFromTeam(game.ID, red.ID, alice.ID)
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(team.PlayerIDs) != 0 {
		t.Fatalf("expected empty team, got %v", team.PlayerIDs)
	}

	// Removing again is a harmless no-op.
	if _, _, err := store.RemoveFromTeam(game.ID, red.ID, alice.ID); err != nil {
		t.Fatalf("repeat remove must be idempotent: %v", err)
	}
}

func TestRemoveFromAllTeams(t *testing.T) {
	store := NewStore(true)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	_, alice, _ := store.Join(game.ID, "Alice")
	_, red, _ := store.CreateTeam(game.ID, "Red")
	_, blue, _ := store.CreateTeam(game.ID, "Blue")
	_, _, _ = store.AssignToTeam(game.ID, red.ID, alice.ID)
	_, _, _ = store.AssignToTeam(game.ID, blue.ID, alice.ID)

	_, changed, err := store.RemoveFromAllTeams(game.ID, alice.ID)
	if err != nil {
		t.Fatalf("bulk remove failed: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed teams, got %d", len(changed))
	}
	updated, _ := store.GetGame(game.ID)
	for _, team := range updated.Teams {
		if len(team.PlayerIDs) != 0 {
			t.Fatalf("expected player removed from every team, got %v", team)
		}
	}
}

func TestListGamesNewestFirst(t *testing.T) {
	store := NewStore(false)
	first := store.CreateGame("First", "Q1", 4)
	second := store.CreateGame("Second", "Q2", 4)

	list := store.ListGames()
	if len(list) != 2 {
		t.Fatalf("expected 2 games, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("expected newest first, got %v then %v", list[0].ID, list[1].ID)
	}
}

func TestListCompletedOnlyCompleted(t *testing.T) {
	store := NewStore(false)
	waiting := store.CreateGame("Open Lobby", "Q", 4)
	done := store.CreateGame("Done", "Q", 4)
	_, _ = store.SetStatus(done.ID, StatusInProgress)
	_, _ = store.SetStatus(done.ID, StatusCompleted)

	list := store.ListCompleted()
	if len(list) != 1 || list[0].ID != done.ID {
		t.Fatalf("expected only %s, got %v", done.ID, list)
	}
	if list[0].ID == waiting.ID {
		t.Fatal("waiting game must not appear in history")
	}
}

func TestCloneIsolation(t *testing.T) {
	store := NewStore(false)
	game := store.CreateGame("Geo Quiz", "Name the capital", 4)
	snapshot, _, _ := store.Join(game.ID, "Alice")

	snapshot.Players[0].Name = "Mutated"
	updated, _ := store.GetGame(game.ID)
	if updated.Players[0].Name != "Alice" {
		t.Fatal("store state must not be reachable through returned copies")
	}
}
