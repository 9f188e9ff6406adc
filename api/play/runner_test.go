package play

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"WorldCup/api/bracket"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fruits = []bracket.Contestant{
	{ID: 1, Name: "Apple"},
	{ID: 2, Name: "Banana"},
	{ID: 3, Name: "Cherry"},
}

func newRunner(input string, sink Sink) (*Runner, *bytes.Buffer) {
	out := &bytes.Buffer{}
	logger, _ := test.NewNullLogger()
	return &Runner{
		In:      strings.NewReader(input),
		Out:     out,
		Sink:    sink,
		Session: "session-1",
		Log:     logger,
		Now:     func() time.Time { return time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC) },
	}, out
}

func TestRunner_PlaysToChampion(t *testing.T) {
	var gotSession string
	var saved bracket.Result
	sink := SinkFunc(func(_ context.Context, session string, res bracket.Result) error {
		gotSession = session
		saved = res
		return nil
	})

	r, out := newRunner("2\nxyz\ncher\n", sink)
	res, err := r.Play(context.Background(), 5, "과일", fruits)
	require.NoError(t, err)

	assert.Equal(t, "Cherry", res.Champion.Name)
	assert.Equal(t, uint(5), res.GameID)
	assert.Equal(t, "session-1", gotSession)
	assert.Equal(t, res, saved)

	text := out.String()
	assert.Contains(t, text, "부전승: Cherry")
	assert.Contains(t, text, "1) Cherry  vs  2) Banana")
	assert.Contains(t, text, "1, 2 또는 이름을 입력하세요.")
	assert.Contains(t, text, "우승: Cherry")
	assert.Contains(t, text, "[결승]")
}

func TestPick(t *testing.T) {
	left := bracket.Contestant{ID: 1, Name: "Banana"}
	right := bracket.Contestant{ID: 2, Name: "Bandana"}

	c, ok := pick("1", left, right)
	require.True(t, ok)
	assert.Equal(t, left, c)

	c, ok = pick("BANANA", left, right)
	require.True(t, ok)
	assert.Equal(t, left, c)

	c, ok = pick("bnd", left, right)
	require.True(t, ok)
	assert.Equal(t, right, c)

	// "ban" fuzzy-matches both names, so it is ambiguous.
	_, ok = pick("ban", left, right)
	assert.False(t, ok)

	_, ok = pick("", left, right)
	assert.False(t, ok)

	tom := bracket.Contestant{ID: 3, Name: "Tom & Jerry"}
	c, ok = pick("tom & jerry", tom, left)
	require.True(t, ok)
	assert.Equal(t, tom, c)
}

func TestRunner_QuitAndEOF(t *testing.T) {
	r, _ := newRunner("q\n", nil)
	_, err := r.Play(context.Background(), 1, "과일", fruits)
	assert.ErrorIs(t, err, ErrQuit)

	r, _ = newRunner("1\n", nil)
	_, err = r.Play(context.Background(), 1, "과일", fruits)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestRunner_SinkFailureKeepsResult(t *testing.T) {
	boom := errors.New("boom")
	r, _ := newRunner("1\n1\n", SinkFunc(func(context.Context, string, bracket.Result) error { return boom }))

	res, err := r.Play(context.Background(), 1, "과일", fruits[:2])
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "Apple", res.Champion.Name)
}

func TestRunner_RejectsTinyField(t *testing.T) {
	r, _ := newRunner("", nil)
	_, err := r.Play(context.Background(), 1, "과일", fruits[:1])
	assert.ErrorIs(t, err, bracket.ErrInsufficientContestants)
}
