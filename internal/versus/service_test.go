package versus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"campus-spot/internal/apperr"
	"campus-spot/internal/catalog"
	"campus-spot/internal/players"
)

type fixedDistance float64

func (d fixedDistance) Distance(lat1, lon1, lat2, lon2 float64) float64 {
	return float64(d)
}

func newTestCatalog(n int) *catalog.MemoryCatalog {
	pictures := make([]catalog.Picture, 0, n)
	for i := 1; i <= n; i++ {
		pictures = append(pictures, catalog.Picture{
			ID:          i,
			Coordinates: catalog.Coordinates{Lat: 40.0 + float64(i)/1000, Lon: -74.0},
			Place:       fmt.Sprintf("Hall %d", i),
			Link:        fmt.Sprintf("https://pictures.example.com/%d.jpg", i),
		})
	}
	return catalog.NewMemoryCatalog(pictures...)
}

func newTestService(t *testing.T, opts ...Option) (*Service, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	directory := players.NewMemoryDirectory("ada", "bob", "cyd")
	return NewService(store, directory, newTestCatalog(12), opts...), store
}

func acceptedChallenge(t *testing.T, svc *Service) uint {
	t.Helper()
	ctx := context.Background()
	id, err := svc.CreateChallenge(ctx, "ada", "bob")
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if err := svc.AcceptChallenge(ctx, id); err != nil {
		t.Fatalf("expected accept to succeed, got %v", err)
	}
	return id
}

func TestCreateChallengeRejectsSelfAndUnknown(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateChallenge(ctx, "ada", "ada"); !errors.Is(err, apperr.ErrInvalidOpponent) {
		t.Fatalf("expected invalid opponent for self challenge, got %v", err)
	}
	if _, err := svc.CreateChallenge(ctx, "ada", "zed"); !errors.Is(err, apperr.ErrInvalidOpponent) {
		t.Fatalf("expected invalid opponent for unknown player, got %v", err)
	}
	if _, err := svc.CreateChallenge(ctx, "ada", ""); !errors.Is(err, apperr.ErrInvalidOpponent) {
		t.Fatalf("expected invalid opponent for empty id, got %v", err)
	}
	if _, err := svc.CreateChallenge(ctx, "", "bob"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty challenger, got %v", err)
	}
}

func TestCreateChallengeDuplicateEitherDirection(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateChallenge(ctx, "ada", "bob")
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	_, err = svc.CreateChallenge(ctx, "bob", "ada")
	var dup *apperr.DuplicateChallengeError
	if !errors.As(err, &dup) {
		t.Fatalf("expected duplicate challenge error, got %v", err)
	}
	if dup.ExistingID != first {
		t.Fatalf("expected existing id %d, got %d", first, dup.ExistingID)
	}
	if !errors.Is(err, apperr.ErrDuplicateChallenge) {
		t.Fatalf("expected ErrDuplicateChallenge, got %v", err)
	}

	if err := svc.DeclineChallenge(ctx, first); err != nil {
		t.Fatalf("expected decline to succeed, got %v", err)
	}
	if _, err := svc.CreateChallenge(ctx, "bob", "ada"); err != nil {
		t.Fatalf("expected new challenge after decline, got %v", err)
	}
}

func TestConcurrentCreateOpensOneChallenge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := "ada", "bob"
			if i%2 == 1 {
				a, b = b, a
			}
			if _, err := svc.CreateChallenge(ctx, a, b); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("expected exactly one challenge, got %d", created)
	}
}

func TestAcceptAssignsDistinctPictures(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	c, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("expected challenge, got %v", err)
	}
	if c.Status != StatusAccepted {
		t.Fatalf("expected accepted, got %s", c.Status)
	}
	seen := map[int]bool{}
	for _, pictureID := range c.Pictures {
		if pictureID < 1 || pictureID > 12 {
			t.Fatalf("expected picture in [1, 12], got %d", pictureID)
		}
		if seen[pictureID] {
			t.Fatalf("expected distinct pictures, got %v", c.Pictures)
		}
		seen[pictureID] = true
	}
	if c.Challenger.CompletedRounds() != 0 || c.Challengee.Points != 0 {
		t.Fatalf("expected fresh progress, got %#v %#v", c.Challenger, c.Challengee)
	}

	if err := svc.AcceptChallenge(ctx, id); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected invalid state on second accept, got %v", err)
	}
}

func TestAcceptNeedsFivePictures(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, players.NewMemoryDirectory("ada", "bob"), newTestCatalog(4))
	ctx := context.Background()

	id, err := svc.CreateChallenge(ctx, "ada", "bob")
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if err := svc.AcceptChallenge(ctx, id); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected invalid state with a small catalog, got %v", err)
	}
	c, _ := store.Get(ctx, id)
	if c.Status != StatusPending {
		t.Fatalf("expected challenge to stay pending, got %s", c.Status)
	}
}

func TestAcceptUnknownChallenge(t *testing.T) {
	svc, _ := newTestService(t)
	if err := svc.AcceptChallenge(context.Background(), 99); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecordRoundFinishIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	first, err := svc.RecordRoundFinish(ctx, id, "ada", 3, 640)
	if err != nil {
		t.Fatalf("expected record to succeed, got %v", err)
	}
	if first.Score != 640 || first.AlreadyRecorded {
		t.Fatalf("expected fresh score 640, got %#v", first)
	}
	second, err := svc.RecordRoundFinish(ctx, id, "ada", 3, 999)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if second.Score != 640 || !second.AlreadyRecorded {
		t.Fatalf("expected stored score 640 on retry, got %#v", second)
	}

	c, _ := store.Get(ctx, id)
	if c.Challenger.Points != 640 {
		t.Fatalf("expected points 640, got %d", c.Challenger.Points)
	}
	if c.Challenger.Points != c.Challenger.Sum() {
		t.Fatalf("expected points to equal round sum, got %d vs %d", c.Challenger.Points, c.Challenger.Sum())
	}
	if c.Challengee.CompletedRounds() != 0 {
		t.Fatalf("expected opponent untouched, got %#v", c.Challengee)
	}
}

func TestRecordRoundFinishValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	cases := []struct {
		name   string
		player string
		round  int
		score  int
		want   error
	}{
		{"outsider", "cyd", 1, 100, apperr.ErrNotParticipant},
		{"round zero", "ada", 0, 100, apperr.ErrInvalidRound},
		{"round six", "bob", 6, 100, apperr.ErrInvalidRound},
		{"negative score", "ada", 1, -5, apperr.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordRoundFinish(ctx, id, tc.player, tc.round, tc.score)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if _, err := svc.RecordRoundFinish(ctx, 404, "ada", 1, 10); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRoundsRejectedOutsideAccepted(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pending, err := svc.CreateChallenge(ctx, "ada", "bob")
	if err != nil {
		t.Fatalf("expected create to succeed, got %v", err)
	}
	if _, err := svc.RecordRoundFinish(ctx, pending, "ada", 1, 100); !errors.Is(err, apperr.ErrInvalidRound) {
		t.Fatalf("expected invalid round on pending challenge, got %v", err)
	}
	if err := svc.DeclineChallenge(ctx, pending); err != nil {
		t.Fatalf("expected decline to succeed, got %v", err)
	}
	if _, err := svc.RecordRoundFinish(ctx, pending, "bob", 1, 100); !errors.Is(err, apperr.ErrInvalidRound) {
		t.Fatalf("expected invalid round on declined challenge, got %v", err)
	}
	if err := svc.DeclineChallenge(ctx, pending); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected invalid state on second decline, got %v", err)
	}
}

func TestMarkPlayerFinishedCompletesOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	for round := 1; round <= Rounds; round++ {
		if _, err := svc.RecordRoundFinish(ctx, id, "ada", round, 500); err != nil {
			t.Fatalf("expected ada round %d, got %v", round, err)
		}
		if _, err := svc.RecordRoundFinish(ctx, id, "bob", round, 700); err != nil {
			t.Fatalf("expected bob round %d, got %v", round, err)
		}
	}

	done, err := svc.MarkPlayerFinished(ctx, id, "ada")
	if err != nil {
		t.Fatalf("expected finish to succeed, got %v", err)
	}
	if done.Completed {
		t.Fatalf("expected challenge to wait for bob, got %#v", done)
	}
	if _, err := svc.ChallengeResult(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected no result before completion, got %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.MarkPlayerFinished(ctx, id, "bob"); err != nil {
				t.Errorf("expected finish to succeed, got %v", err)
			}
		}()
	}
	wg.Wait()

	if store.MatchCount() != 1 {
		t.Fatalf("expected one match, got %d", store.MatchCount())
	}
	result, err := svc.ChallengeResult(ctx, id)
	if err != nil {
		t.Fatalf("expected result, got %v", err)
	}
	if result.WinnerID != "bob" || result.ChallengerPoints != 2500 || result.ChallengeePoints != 3500 {
		t.Fatalf("expected bob to win 3500-2500, got %#v", result)
	}
	if result.ChallengeePicPoints[4] != 700 {
		t.Fatalf("expected per-round scores, got %v", result.ChallengeePicPoints)
	}

	again, err := svc.MarkPlayerFinished(ctx, id, "ada")
	if err != nil {
		t.Fatalf("expected finish on completed challenge to be a no-op, got %v", err)
	}
	if !again.Completed || again.Match == nil || again.Match.WinnerID != "bob" {
		t.Fatalf("expected existing match, got %#v", again)
	}
	if _, err := svc.RecordRoundFinish(ctx, id, "ada", 1, 10); !errors.Is(err, apperr.ErrInvalidRound) {
		t.Fatalf("expected rounds closed after completion, got %v", err)
	}
}

func TestTieIsRecorded(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	if _, err := svc.ForfeitRemaining(ctx, id, "ada"); err != nil {
		t.Fatalf("expected forfeit to succeed, got %v", err)
	}
	done, err := svc.ForfeitRemaining(ctx, id, "bob")
	if err != nil {
		t.Fatalf("expected forfeit to succeed, got %v", err)
	}
	if !done.Completed || done.Match.WinnerID != Tie {
		t.Fatalf("expected tie, got %#v", done)
	}
}

func TestForfeitRemainingKeepsRecordedRounds(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	if _, err := svc.RecordRoundFinish(ctx, id, "bob", 2, 800); err != nil {
		t.Fatalf("expected record to succeed, got %v", err)
	}
	if _, err := svc.ForfeitRemaining(ctx, id, "bob"); err != nil {
		t.Fatalf("expected forfeit to succeed, got %v", err)
	}
	c, _ := store.Get(ctx, id)
	if c.Challengee.CompletedRounds() != Rounds || !c.Challengee.Finished {
		t.Fatalf("expected every round closed, got %#v", c.Challengee)
	}
	if c.Challengee.Points != 800 || c.Challengee.Score(2) != 800 {
		t.Fatalf("expected recorded round kept, got %#v", c.Challengee)
	}

	events, err := svc.Events(ctx, id)
	if err != nil {
		t.Fatalf("expected events, got %v", err)
	}
	last := events[len(events)-1]
	if last.Type != EventPlayerFinished {
		t.Fatalf("expected player_finished last, got %s", last.Type)
	}
	forfeit := events[len(events)-2]
	if forfeit.Type != EventForfeited {
		t.Fatalf("expected rounds_forfeited, got %s", forfeit.Type)
	}
	rounds, ok := forfeit.Payload["rounds"].([]int)
	if !ok || len(rounds) != 4 {
		t.Fatalf("expected four forfeited rounds, got %#v", forfeit.Payload["rounds"])
	}
}

func TestPlayButtonStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	status, err := svc.PlayButtonStatus(ctx, id, "ada")
	if err != nil || status != PlayNotStarted {
		t.Fatalf("expected not_started, got %s (%v)", status, err)
	}
	first, err := svc.StartPlay(ctx, id, "ada")
	if err != nil || !first {
		t.Fatalf("expected first start, got %v (%v)", first, err)
	}
	first, err = svc.StartPlay(ctx, id, "ada")
	if err != nil || first {
		t.Fatalf("expected repeat start to be a no-op, got %v (%v)", first, err)
	}
	status, _ = svc.PlayButtonStatus(ctx, id, "ada")
	if status != PlayStarted {
		t.Fatalf("expected started, got %s", status)
	}
	if _, err := svc.MarkPlayerFinished(ctx, id, "ada"); err != nil {
		t.Fatalf("expected finish to succeed, got %v", err)
	}
	status, _ = svc.PlayButtonStatus(ctx, id, "ada")
	if status != PlayFinished {
		t.Fatalf("expected finished, got %s", status)
	}
	status, _ = svc.PlayButtonStatus(ctx, id, "bob")
	if status != PlayNotStarted {
		t.Fatalf("expected bob not_started, got %s", status)
	}
	if _, err := svc.PlayButtonStatus(ctx, id, "cyd"); !errors.Is(err, apperr.ErrNotParticipant) {
		t.Fatalf("expected not participant, got %v", err)
	}
}

func TestSubmitGuessScoresAndRecords(t *testing.T) {
	svc, store := newTestService(t, WithDistance(fixedDistance(55)))
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	guess := &catalog.Coordinates{Lat: 40.1, Lon: -74.1}
	outcome, err := svc.SubmitGuess(ctx, id, "ada", 1, guess, 60)
	if err != nil {
		t.Fatalf("expected guess to succeed, got %v", err)
	}
	if outcome.Points != 500 {
		t.Fatalf("expected 500 points, got %d", outcome.Points)
	}
	if outcome.Distance == nil || *outcome.Distance != 55 {
		t.Fatalf("expected distance 55, got %v", outcome.Distance)
	}
	c, _ := store.Get(ctx, id)
	if outcome.Place != fmt.Sprintf("Hall %d", c.Pictures[0]) {
		t.Fatalf("expected place of round one picture, got %q", outcome.Place)
	}

	retry, err := svc.SubmitGuess(ctx, id, "ada", 1, guess, 5)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if retry.Points != 500 || !retry.AlreadyRecorded {
		t.Fatalf("expected stored 500 on retry, got %#v", retry)
	}

	skipped, err := svc.SubmitGuess(ctx, id, "ada", 2, nil, 120)
	if err != nil {
		t.Fatalf("expected skipped guess to succeed, got %v", err)
	}
	if skipped.Points != 0 || skipped.Distance != nil {
		t.Fatalf("expected zero points without distance, got %#v", skipped)
	}
	c, _ = store.Get(ctx, id)
	if !c.Challenger.IsComplete(2) || c.Challenger.Points != 500 {
		t.Fatalf("expected round two closed at 500 total, got %#v", c.Challenger)
	}

	if _, err := svc.SubmitGuess(ctx, id, "ada", 3, guess, 121); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected invalid input for elapsed time, got %v", err)
	}
}

func TestRoundPicturesUsesLinks(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	pending, _ := svc.CreateChallenge(ctx, "ada", "cyd")
	if _, err := svc.RoundPictures(ctx, pending); !errors.Is(err, apperr.ErrInvalidState) {
		t.Fatalf("expected invalid state before accept, got %v", err)
	}

	id := acceptedChallenge(t, svc)
	rounds, err := svc.RoundPictures(ctx, id)
	if err != nil {
		t.Fatalf("expected pictures, got %v", err)
	}
	if len(rounds) != Rounds {
		t.Fatalf("expected %d pictures, got %d", Rounds, len(rounds))
	}
	c, _ := store.Get(ctx, id)
	for i, round := range rounds {
		want := fmt.Sprintf("https://pictures.example.com/%d.jpg", c.Pictures[i])
		if round.Round != i+1 || round.Link != want {
			t.Fatalf("expected round %d link %s, got %#v", i+1, want, round)
		}
	}
}

func TestUserChallengesSplitsByRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateChallenge(ctx, "ada", "bob"); err != nil {
		t.Fatalf("expected create, got %v", err)
	}
	if _, err := svc.CreateChallenge(ctx, "cyd", "ada"); err != nil {
		t.Fatalf("expected create, got %v", err)
	}
	list, err := svc.UserChallenges(ctx, "ada")
	if err != nil {
		t.Fatalf("expected list, got %v", err)
	}
	if len(list.Initiated) != 1 || list.Initiated[0].ChallengeeID != "bob" {
		t.Fatalf("expected one initiated against bob, got %#v", list.Initiated)
	}
	if len(list.Received) != 1 || list.Received[0].ChallengerID != "cyd" {
		t.Fatalf("expected one received from cyd, got %#v", list.Received)
	}
	empty, err := svc.UserChallenges(ctx, "nobody")
	if err != nil || len(empty.Initiated) != 0 || len(empty.Received) != 0 {
		t.Fatalf("expected empty lists, got %#v (%v)", empty, err)
	}
}

func TestClearPlayerChallenges(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)
	if _, err := svc.CreateChallenge(ctx, "bob", "cyd"); err != nil {
		t.Fatalf("expected create, got %v", err)
	}

	removed, err := svc.ClearPlayerChallenges(ctx, "ada")
	if err != nil || removed != 1 {
		t.Fatalf("expected one removed, got %d (%v)", removed, err)
	}
	if _, err := store.Get(ctx, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected challenge gone, got %v", err)
	}
	list, _ := svc.UserChallenges(ctx, "bob")
	if len(list.Initiated) != 1 {
		t.Fatalf("expected bob's other challenge kept, got %#v", list)
	}
}

func TestRepairPlaceholderRounds(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)
	pending, _ := svc.CreateChallenge(ctx, "bob", "cyd")

	_, err := store.Update(ctx, id, func(c *Challenge, cs *ChangeSet) error {
		c.Pictures = [Rounds]int{0, 0, 0, 0, 0}
		return nil
	})
	if err != nil {
		t.Fatalf("expected placeholder setup, got %v", err)
	}

	repaired, err := svc.RepairPlaceholderRounds(ctx)
	if err != nil || repaired != 1 {
		t.Fatalf("expected one repaired, got %d (%v)", repaired, err)
	}
	c, _ := store.Get(ctx, id)
	if !c.HasPictures() {
		t.Fatalf("expected real pictures, got %v", c.Pictures)
	}
	p, _ := store.Get(ctx, pending)
	if p.HasPictures() {
		t.Fatalf("expected pending challenge untouched, got %v", p.Pictures)
	}

	repaired, err = svc.RepairPlaceholderRounds(ctx)
	if err != nil || repaired != 0 {
		t.Fatalf("expected nothing left to repair, got %d (%v)", repaired, err)
	}
}

func TestConcurrentFinalFinishesCreateOneMatch(t *testing.T) {
	ctx := context.Background()
	for iter := 0; iter < 50; iter++ {
		svc, store := newTestService(t)
		id := acceptedChallenge(t, svc)
		for round := 1; round <= Rounds; round++ {
			if _, err := svc.RecordRoundFinish(ctx, id, "ada", round, 300); err != nil {
				t.Fatalf("expected ada round %d, got %v", round, err)
			}
			if _, err := svc.RecordRoundFinish(ctx, id, "bob", round, 200); err != nil {
				t.Fatalf("expected bob round %d, got %v", round, err)
			}
		}

		var wg sync.WaitGroup
		for _, player := range []string{"ada", "bob", "ada", "bob"} {
			wg.Add(1)
			go func(player string) {
				defer wg.Done()
				if _, err := svc.MarkPlayerFinished(ctx, id, player); err != nil {
					t.Errorf("expected finish to succeed, got %v", err)
				}
			}(player)
		}
		wg.Wait()

		if store.MatchCount() != 1 {
			t.Fatalf("expected one match, got %d", store.MatchCount())
		}
		c, _ := store.Get(ctx, id)
		if c.Status != StatusCompleted {
			t.Fatalf("expected completed, got %s", c.Status)
		}
		events, _ := svc.Events(ctx, id)
		completed := 0
		for _, event := range events {
			if event.Type == EventCompleted {
				completed++
			}
		}
		if completed != 1 {
			t.Fatalf("expected one completion event, got %d", completed)
		}
		match, err := store.Match(ctx, id)
		if err != nil || match.WinnerID != "ada" {
			t.Fatalf("expected ada to win, got %#v (%v)", match, err)
		}
	}
}

func TestConcurrentSameRoundRecordsOnce(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	id := acceptedChallenge(t, svc)

	var wg sync.WaitGroup
	var mu sync.Mutex
	fresh := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			result, err := svc.RecordRoundFinish(ctx, id, "ada", 2, score)
			if err != nil {
				t.Errorf("expected record to succeed, got %v", err)
				return
			}
			if !result.AlreadyRecorded {
				mu.Lock()
				fresh++
				mu.Unlock()
			}
		}(100 + i)
	}
	wg.Wait()

	if fresh != 1 {
		t.Fatalf("expected one fresh write, got %d", fresh)
	}
	c, _ := store.Get(ctx, id)
	if c.Challenger.CompletedRounds() != 1 {
		t.Fatalf("expected one completed round, got %d", c.Challenger.CompletedRounds())
	}
	if c.Challenger.Points != c.Challenger.Sum() || c.Challenger.Points != c.Challenger.Score(2) {
		t.Fatalf("expected points to equal the single stored score, got %#v", c.Challenger)
	}
}
