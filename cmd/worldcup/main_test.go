package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"WorldCup/api/fortune"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	err := newApp(strings.NewReader(in), out).Run(append([]string{"worldcup"}, args...))
	return out.String(), err
}

func TestLuckCommand_JSON(t *testing.T) {
	out, err := run(t, "", "luck", "--birth", "1990-05-15", "--gender", "male", "--today", "2024-01-06", "--json")
	require.NoError(t, err)

	var got fortune.LuckResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 62, got.Score)
	assert.Equal(t, fortune.GradeMid, got.Grade)
	require.NotNil(t, got.Idiom)
	assert.Equal(t, "안분지족", *got.Idiom)
}

func TestLuckCommand_Text(t *testing.T) {
	out, err := run(t, "", "luck", "--birth", "1990-05-15", "--gender", "female", "--today", "2024-01-04")
	require.NoError(t, err)
	assert.Contains(t, out, "2024년 1월 4일 목요일 (목)")
	assert.Contains(t, out, "점수 71  등급 high")
}

func TestLuckCommand_BadInput(t *testing.T) {
	_, err := run(t, "", "luck", "--birth", "1990-05-15", "--gender", "unknown")
	assert.Error(t, err)

	_, err = run(t, "", "luck", "--birth", "yesterday", "--gender", "male")
	assert.Error(t, err)
}

func TestGamesAndPlayCommands(t *testing.T) {
	var saved []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/games":
			_, _ = io.WriteString(w, `{"response":{"games":[{"id":4,"title":"라면 월드컵","contestant_count":2}],"total":1}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/games/4":
			_, _ = io.WriteString(w, `{"response":{"id":4,"title":"라면 월드컵","contestants":[
				{"id":1,"name":"신라면","sort_order":1},{"id":2,"name":"진라면","sort_order":2}]}}`)
		case r.Method == http.MethodPut && r.URL.Path == "/api/v1/games/4/result":
			saved, _ = io.ReadAll(r.Body)
			_, _ = w.Write([]byte(`{"response":` + string(saved) + `}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	api := srv.URL + "/api/v1"

	out, err := run(t, "", "--api", api, "games")
	require.NoError(t, err)
	assert.Contains(t, out, "라면 월드컵 (2)")

	out, err = run(t, "2\n", "--api", api, "play", "--session", "cli-test", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "우승: 진라면")
	assert.Contains(t, string(saved), `"game_id":4`)

	_, err = run(t, "", "--api", api, "play", "99")
	assert.Error(t, err)
}
