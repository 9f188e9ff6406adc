package bracket

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidResult = errors.New("invalid bracket result")

// Result is the summary a finished playthrough hands to the results view.
type Result struct {
	GameID      uint        `json:"game_id"`
	Champion    Contestant  `json:"champion"`
	Ranking     []RankEntry `json:"ranking"`
	Matches     []Match     `json:"matches,omitempty"`
	CompletedAt time.Time   `json:"completed_at"`
}

// Result builds the summary of a finished playthrough.
func (e *Engine) Result(gameID uint, now time.Time) (Result, error) {
	champ, ok := e.Champion()
	if !ok {
		return Result{}, fmt.Errorf("%w: state is %s", ErrNotInProgress, e.state)
	}
	return Result{
		GameID:      gameID,
		Champion:    champ,
		Ranking:     e.Ranking(),
		Matches:     e.Matches(),
		CompletedAt: now.UTC(),
	}, nil
}

// Validate checks the elimination invariants of a result received from a
// client: a ranked champion and n-1 total wins for n contestants.
func (r Result) Validate() error {
	if len(r.Ranking) < 2 {
		return fmt.Errorf("%w: ranking has %d entries", ErrInvalidResult, len(r.Ranking))
	}
	total := 0
	found := false
	for _, entry := range r.Ranking {
		if entry.Wins < 0 {
			return fmt.Errorf("%w: negative wins for %q", ErrInvalidResult, entry.Contestant.Name)
		}
		total += entry.Wins
		if entry.Contestant.ID == r.Champion.ID {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%w: champion %q is not ranked", ErrInvalidResult, r.Champion.Name)
	}
	if total != len(r.Ranking)-1 {
		return fmt.Errorf("%w: %d wins for %d contestants", ErrInvalidResult, total, len(r.Ranking))
	}
	return nil
}
