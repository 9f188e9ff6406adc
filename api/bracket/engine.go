package bracket

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand"
	"sort"
)

var (
	ErrInsufficientContestants = errors.New("bracket needs at least 2 contestants")
	ErrNotInProgress           = errors.New("bracket has no round in progress")
	ErrNotInMatch              = errors.New("winner is not part of the current match")
	ErrDuplicateContestant     = errors.New("contestant ids must be unique")
)

// State is the lifecycle position of an Engine.
type State int

const (
	StateIdle State = iota
	StateRoundInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRoundInProgress:
		return "round_in_progress"
	case StateFinished:
		return "finished"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Contestant is one entry of a world cup game.
type Contestant struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	FileName  string `json:"file_name"`
	SortOrder int    `json:"sort_order"`
}

// Match records one decided pair.
type Match struct {
	Round  int        `json:"round"`
	Index  int        `json:"index"`
	Left   Contestant `json:"left"`
	Right  Contestant `json:"right"`
	Winner Contestant `json:"winner"`
}

// Progress is what a view needs to render the counters above a pair.
type Progress struct {
	Round          int    `json:"round"`
	TotalRounds    int    `json:"total_rounds"`
	Match          int    `json:"match"`
	MatchesInRound int    `json:"matches_in_round"`
	FieldSize      int    `json:"field_size"`
	Label          string `json:"label"`
}

// RankEntry is a contestant with the number of matches it won.
type RankEntry struct {
	Rank       int        `json:"rank"`
	Contestant Contestant `json:"contestant"`
	Wins       int        `json:"wins"`
}

type round struct {
	number     int
	current    []Contestant
	next       []Contestant
	carry      *Contestant
	matchIndex int
}

// Engine runs one single-elimination playthrough. It is not safe for
// concurrent use; each playthrough owns its own Engine.
type Engine struct {
	state       State
	entrants    []Contestant
	totalRounds int
	round       round
	champion    *Contestant
	wins        map[uint]int
	matches     []Match
}

type options struct {
	rng *rand.Rand
}

// Option configures Start.
type Option func(*options)

// WithShuffle shuffles the entrants with rng before the first round.
func WithShuffle(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

func New() *Engine {
	return &Engine{state: StateIdle}
}

// Start seeds round 1. Without WithShuffle the input order is kept, so
// callers that want sort_order seeding pass contestants already sorted.
func (e *Engine) Start(contestants []Contestant, opts ...Option) error {
	if len(contestants) < 2 {
		return fmt.Errorf("%w: got %d", ErrInsufficientContestants, len(contestants))
	}
	seen := make(map[uint]struct{}, len(contestants))
	for _, c := range contestants {
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: id %d", ErrDuplicateContestant, c.ID)
		}
		seen[c.ID] = struct{}{}
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	field := make([]Contestant, len(contestants))
	copy(field, contestants)
	if o.rng != nil {
		o.rng.Shuffle(len(field), func(i, j int) { field[i], field[j] = field[j], field[i] })
	}

	e.entrants = make([]Contestant, len(contestants))
	copy(e.entrants, contestants)
	e.totalRounds = RoundsFor(len(field))
	e.champion = nil
	e.matches = nil
	e.wins = make(map[uint]int, len(field))
	e.beginRound(1, field)
	return nil
}

// beginRound installs field as the given round. A field of one is the champion.
func (e *Engine) beginRound(number int, field []Contestant) {
	if len(field) == 1 {
		champ := field[0]
		e.champion = &champ
		e.round = round{number: number - 1}
		e.state = StateFinished
		return
	}

	r := round{number: number}
	if len(field)%2 == 1 {
		carry := field[len(field)-1]
		r.carry = &carry
		field = field[:len(field)-1]
	}
	r.current = field
	r.next = make([]Contestant, 0, len(field)/2+1)
	e.round = r
	e.state = StateRoundInProgress
}

// SelectWinner records winner for the current pair and advances the machine.
func (e *Engine) SelectWinner(winner Contestant) error {
	if e.state != StateRoundInProgress {
		return fmt.Errorf("%w: state is %s", ErrNotInProgress, e.state)
	}
	left, right, _ := e.CurrentPair()
	if winner.ID != left.ID && winner.ID != right.ID {
		return fmt.Errorf("%w: %q", ErrNotInMatch, winner.Name)
	}
	if winner.ID == left.ID {
		winner = left
	} else {
		winner = right
	}

	r := &e.round
	e.matches = append(e.matches, Match{
		Round:  r.number,
		Index:  r.matchIndex,
		Left:   left,
		Right:  right,
		Winner: winner,
	})
	e.wins[winner.ID]++
	r.next = append(r.next, winner)

	if 2*(r.matchIndex+1) < len(r.current) {
		r.matchIndex++
		return nil
	}

	// The bye leads the next field so it cannot be popped as the carry twice running.
	field := r.next
	if r.carry != nil {
		field = append([]Contestant{*r.carry}, r.next...)
	}
	e.beginRound(r.number+1, field)
	return nil
}

// CurrentPair returns the pair awaiting a decision.
func (e *Engine) CurrentPair() (Contestant, Contestant, bool) {
	if e.state != StateRoundInProgress {
		return Contestant{}, Contestant{}, false
	}
	i := 2 * e.round.matchIndex
	return e.round.current[i], e.round.current[i+1], true
}

// Carry returns the contestant sitting out the current round, if any.
func (e *Engine) Carry() (Contestant, bool) {
	if e.state != StateRoundInProgress || e.round.carry == nil {
		return Contestant{}, false
	}
	return *e.round.carry, true
}

func (e *Engine) State() State { return e.state }

func (e *Engine) Champion() (Contestant, bool) {
	if e.champion == nil {
		return Contestant{}, false
	}
	return *e.champion, true
}

func (e *Engine) Progress() Progress {
	r := e.round
	field := len(r.current)
	if r.carry != nil {
		field++
	}
	p := Progress{
		Round:       r.number,
		TotalRounds: e.totalRounds,
		FieldSize:   field,
	}
	if e.state == StateRoundInProgress {
		p.Match = r.matchIndex + 1
		p.MatchesInRound = len(r.current) / 2
		p.Label = RoundLabel(field)
	}
	return p
}

// Matches returns the decided pairs in play order.
func (e *Engine) Matches() []Match {
	out := make([]Match, len(e.matches))
	copy(out, e.matches)
	return out
}

// Ranking orders every entrant by wins, highest first, with the champion
// (once there is one) always ranked first. Ties keep the order the
// contestants were given to Start.
func (e *Engine) Ranking() []RankEntry {
	out := make([]RankEntry, 0, len(e.entrants))
	for _, c := range e.entrants {
		out = append(out, RankEntry{Contestant: c, Wins: e.wins[c.ID]})
	}
	isChampion := func(entry RankEntry) bool {
		return e.champion != nil && entry.Contestant.ID == e.champion.ID
	}
	sort.SliceStable(out, func(i, j int) bool {
		if ci, cj := isChampion(out[i]), isChampion(out[j]); ci != cj {
			return ci
		}
		return out[i].Wins > out[j].Wins
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// RoundsFor is ceil(log2(n)), the number of rounds an n-entry bracket plays.
func RoundsFor(n int) int {
	if n < 2 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// RoundLabel names a round by its field size the way world cup games do.
func RoundLabel(fieldSize int) string {
	switch {
	case fieldSize == 2:
		return "결승"
	case fieldSize <= 4:
		return "4강"
	default:
		return fmt.Sprintf("%d강", fieldSize)
	}
}
