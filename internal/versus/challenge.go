// Package versus runs two-player challenges: creation, acceptance, round play,
// and promotion of a finished challenge to a match.
package versus

import "time"

// Rounds is the fixed number of pictures in every challenge.
const Rounds = 5

// Tie is stored as the winner when both players end on the same points.
const Tie = "Tie"

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

// Open reports whether the status still blocks a new challenge between the pair.
func (s Status) Open() bool {
	return s == StatusPending || s == StatusAccepted
}

type Role int

const (
	RoleChallenger Role = iota
	RoleChallengee
)

func (r Role) String() string {
	if r == RoleChallenger {
		return "challenger"
	}
	return "challengee"
}

type PlayButtonStatus string

const (
	PlayNotStarted PlayButtonStatus = "not_started"
	PlayStarted    PlayButtonStatus = "started"
	PlayFinished   PlayButtonStatus = "finished"
)

// Progress is one player's round tracker. Round numbers are 1-based.
// Completed slots never revert and their scores are written once.
type Progress struct {
	Completed [Rounds]bool
	Scores    [Rounds]int
	Points    int
	Finished  bool
	Started   bool
}

func validRound(round int) bool {
	return round >= 1 && round <= Rounds
}

func (p Progress) IsComplete(round int) bool {
	return validRound(round) && p.Completed[round-1]
}

func (p Progress) Score(round int) int {
	if !validRound(round) {
		return 0
	}
	return p.Scores[round-1]
}

func (p Progress) HasStarted() bool {
	return p.Started
}

func (p Progress) CompletedRounds() int {
	n := 0
	for _, done := range p.Completed {
		if done {
			n++
		}
	}
	return n
}

// Sum recomputes the points from the written round scores.
func (p Progress) Sum() int {
	total := 0
	for i, done := range p.Completed {
		if done {
			total += p.Scores[i]
		}
	}
	return total
}

func (p Progress) PlayButton() PlayButtonStatus {
	switch {
	case !p.Started:
		return PlayNotStarted
	case p.Finished:
		return PlayFinished
	default:
		return PlayStarted
	}
}

// record writes score into round unless the round is already complete, in
// which case the stored score is returned and nothing changes.
func (p *Progress) record(round, score int) (int, bool) {
	if p.Completed[round-1] {
		return p.Scores[round-1], false
	}
	p.Completed[round-1] = true
	p.Scores[round-1] = score
	p.Points += score
	return score, true
}

type Challenge struct {
	ID           uint
	ChallengerID string
	ChallengeeID string
	Status       Status
	Pictures     [Rounds]int
	Challenger   Progress
	Challengee   Progress
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (c *Challenge) RoleOf(playerID string) (Role, bool) {
	switch playerID {
	case c.ChallengerID:
		return RoleChallenger, true
	case c.ChallengeeID:
		return RoleChallengee, true
	}
	return 0, false
}

func (c *Challenge) Progress(role Role) *Progress {
	if role == RoleChallenger {
		return &c.Challenger
	}
	return &c.Challengee
}

// HasPictures reports whether a real picture list has been assigned. A list
// holding the zero placeholder anywhere is treated as unassigned.
func (c *Challenge) HasPictures() bool {
	for _, id := range c.Pictures {
		if id <= 0 {
			return false
		}
	}
	return true
}

// Winner compares the cumulative points.
func (c *Challenge) Winner() string {
	switch {
	case c.Challenger.Points > c.Challengee.Points:
		return c.ChallengerID
	case c.Challengee.Points > c.Challenger.Points:
		return c.ChallengeeID
	}
	return Tie
}

type Match struct {
	ID              string
	ChallengeID     uint
	WinnerID        string
	ChallengerScore int
	ChallengeeScore int
	CreatedAt       time.Time
}

type Summary struct {
	ID                 uint   `json:"id"`
	ChallengerID       string `json:"challenger_id"`
	ChallengeeID       string `json:"challengee_id"`
	Status             Status `json:"status"`
	ChallengerFinished bool   `json:"challenger_finished"`
	ChallengeeFinished bool   `json:"challengee_finished"`
	WinnerID           string `json:"winner_id,omitempty"`
}

func summarize(c *Challenge, winner string) Summary {
	return Summary{
		ID:                 c.ID,
		ChallengerID:       c.ChallengerID,
		ChallengeeID:       c.ChallengeeID,
		Status:             c.Status,
		ChallengerFinished: c.Challenger.Finished,
		ChallengeeFinished: c.Challengee.Finished,
		WinnerID:           winner,
	}
}
