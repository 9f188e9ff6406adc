package play

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"WorldCup/api/bracket"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sirupsen/logrus"
)

var ErrQuit = errors.New("play aborted")

// Sink receives the finished result. Both the API client and the local
// results store satisfy it.
type Sink interface {
	SaveResult(ctx context.Context, session string, res bracket.Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, session string, res bracket.Result) error

func (f SinkFunc) SaveResult(ctx context.Context, session string, res bracket.Result) error {
	return f(ctx, session, res)
}

// Runner drives a bracket from line-oriented input: "1" or "2" picks a side,
// anything else is matched against the two names, "q" quits.
type Runner struct {
	In      io.Reader
	Out     io.Writer
	Sink    Sink
	Session string
	Log     logrus.FieldLogger
	Now     func() time.Time
}

func (r *Runner) defaults() {
	if r.Session == "" {
		r.Session = uuid.NewString()
	}
	if r.Log == nil {
		r.Log = logrus.StandardLogger()
	}
	if r.Now == nil {
		r.Now = time.Now
	}
}

// Play runs one full bracket and returns its result.
func (r *Runner) Play(ctx context.Context, gameID uint, title string, contestants []bracket.Contestant, opts ...bracket.Option) (bracket.Result, error) {
	r.defaults()

	engine := bracket.New()
	if err := engine.Start(contestants, opts...); err != nil {
		return bracket.Result{}, err
	}

	fmt.Fprintf(r.Out, "== %s (%d명) ==\n", title, len(contestants))
	scanner := bufio.NewScanner(r.In)
	lastRound := 0

	for engine.State() == bracket.StateRoundInProgress {
		if err := ctx.Err(); err != nil {
			return bracket.Result{}, err
		}

		p := engine.Progress()
		if p.Round != lastRound {
			lastRound = p.Round
			fmt.Fprintf(r.Out, "\n[%s] 라운드 %d/%d\n", p.Label, p.Round, p.TotalRounds)
			if carry, ok := engine.Carry(); ok {
				fmt.Fprintf(r.Out, "부전승: %s\n", carry.Name)
			}
		}

		left, right, _ := engine.CurrentPair()
		fmt.Fprintf(r.Out, "(%d/%d) 1) %s  vs  2) %s\n> ", p.Match, p.MatchesInRound, left.Name, right.Name)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return bracket.Result{}, err
			}
			return bracket.Result{}, fmt.Errorf("%w: input ended mid-bracket", io.ErrUnexpectedEOF)
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "q") {
			return bracket.Result{}, ErrQuit
		}
		winner, ok := pick(input, left, right)
		if !ok {
			fmt.Fprintln(r.Out, "1, 2 또는 이름을 입력하세요.")
			continue
		}
		if err := engine.SelectWinner(winner); err != nil {
			return bracket.Result{}, err
		}
	}

	res, err := engine.Result(gameID, r.Now())
	if err != nil {
		return bracket.Result{}, err
	}
	r.printResult(res)

	if r.Sink != nil {
		if err := r.Sink.SaveResult(ctx, r.Session, res); err != nil {
			r.Log.WithError(err).WithField("game_id", gameID).Warn("failed to save result")
			return res, fmt.Errorf("failed to save result: %w", err)
		}
	}
	return res, nil
}

func (r *Runner) printResult(res bracket.Result) {
	fmt.Fprintf(r.Out, "\n우승: %s\n", res.Champion.Name)
	for _, entry := range res.Ranking {
		fmt.Fprintf(r.Out, "%2d. %s (%d승)\n", entry.Rank, entry.Contestant.Name, entry.Wins)
	}
}

// pick resolves input to one side of the pair. Names are matched fuzzily;
// an exact (case-insensitive) match wins over a fuzzy one.
func pick(input string, left, right bracket.Contestant) (bracket.Contestant, bool) {
	switch input {
	case "1":
		return left, true
	case "2":
		return right, true
	case "":
		return bracket.Contestant{}, false
	}

	lowerInput := strings.ToLower(input)
	lookup := map[string]bracket.Contestant{
		strings.ToLower(left.Name):  left,
		strings.ToLower(right.Name): right,
	}
	if c, ok := lookup[lowerInput]; ok {
		return c, true
	}

	matches := fuzzy.RankFind(lowerInput, []string{strings.ToLower(left.Name), strings.ToLower(right.Name)})
	if len(matches) != 1 {
		return bracket.Contestant{}, false
	}
	return lookup[matches[0].Target], true
}
