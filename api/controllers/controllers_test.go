package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"WorldCup/api/bracket"
	"WorldCup/api/controllers"
	"WorldCup/api/fortune"
	"WorldCup/api/media"
	"WorldCup/api/middlewares"
	"WorldCup/api/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAdminKey = "test-admin-key"

var clientCounter atomic.Int32

type testServer struct {
	*controllers.Server
	t        *testing.T
	clientIP string
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Error    interface{}     `json:"error"`
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "failed to connect to in-memory database")
	require.NoError(t, db.AutoMigrate(&models.Game{}, &models.Contestant{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger, _ := test.NewNullLogger()
	server := &controllers.Server{
		DB:             db,
		Log:            logger,
		Media:          media.Static{BaseURL: "https://cdn.example/media"},
		AdminKey:       testAdminKey,
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	server.InitRouter()

	// Each test gets its own client address so the per-IP limiters don't
	// carry over between tests.
	n := clientCounter.Add(1)
	return &testServer{Server: server, t: t, clientIP: fmt.Sprintf("10.1.%d.%d", n/250, n%250+1)}
}

func (ts *testServer) do(method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Forwarded-For", ts.clientIP)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(ts.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (ts *testServer) seedGame(title string, names ...string) *models.Game {
	ts.t.Helper()
	game := models.Game{Title: title}
	for _, name := range names {
		game.Contestants = append(game.Contestants, models.Contestant{Name: name, FileName: name + ".png"})
	}
	game.Prepare()
	require.Empty(ts.t, game.Validate())
	_, err := game.SaveGame(ts.DB)
	require.NoError(ts.t, err)

	var loaded models.Game
	_, err = loaded.FindGameByID(ts.DB, game.ID)
	require.NoError(ts.t, err)
	return &loaded
}

func playToEnd(t *testing.T, game *models.Game) bracket.Result {
	t.Helper()
	entries := make([]bracket.Contestant, 0, len(game.Contestants))
	for _, c := range game.Contestants {
		entries = append(entries, c.Entry())
	}
	e := bracket.New()
	require.NoError(t, e.Start(entries))
	for e.State() == bracket.StateRoundInProgress {
		_, right, _ := e.CurrentPair()
		require.NoError(t, e.SelectWinner(right))
	}
	res, err := e.Result(game.ID, time.Date(2024, 1, 6, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return res
}

func TestCreateGame_RequiresAdminKey(t *testing.T) {
	ts := newTestServer(t)
	payload := map[string]interface{}{
		"title":       "라면 월드컵",
		"contestants": []map[string]string{{"name": "신라면"}, {"name": "진라면"}},
	}

	w, _ := ts.do(http.MethodPost, "/api/v1/games", payload, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = ts.do(http.MethodPost, "/api/v1/games", payload, map[string]string{middlewares.AdminKeyHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var count int64
	require.NoError(t, ts.DB.Model(&models.Game{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGames_CreateListGetDelete(t *testing.T) {
	ts := newTestServer(t)
	admin := map[string]string{middlewares.AdminKeyHeader: testAdminKey}

	w, env := ts.do(http.MethodPost, "/api/v1/games", map[string]interface{}{
		"title":       "  라면 월드컵 ",
		"description": "최애 라면은?",
		"contestants": []map[string]interface{}{
			{"name": "진라면", "file_name": "ramen/jin.png", "sort_order": 2},
			{"name": "신라면", "file_name": "shin.png", "sort_order": 1},
			{"name": "너구리", "file_name": "https://img.example/neoguri.png", "sort_order": 3},
		},
	}, admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created controllers.GameDTO
	require.NoError(t, json.Unmarshal(env.Response, &created))
	assert.Equal(t, "라면 월드컵", created.Title)
	assert.Len(t, created.PublicID, 36)
	require.Len(t, created.Contestants, 3)

	w, env = ts.do(http.MethodGet, "/api/v1/games", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list controllers.GameListDTO
	require.NoError(t, json.Unmarshal(env.Response, &list))
	assert.Equal(t, int64(1), list.Total)
	require.Len(t, list.Games, 1)
	assert.Equal(t, int64(3), list.Games[0].ContestantCount)

	for _, id := range []string{fmt.Sprint(created.ID), created.PublicID} {
		w, env = ts.do(http.MethodGet, "/api/v1/games/"+id, nil, nil)
		require.Equal(t, http.StatusOK, w.Code, id)
		var got controllers.GameDTO
		require.NoError(t, json.Unmarshal(env.Response, &got))
		require.Len(t, got.Contestants, 3)
		assert.Equal(t, "신라면", got.Contestants[0].Name)
		assert.Equal(t, "진라면", got.Contestants[1].Name)
		assert.Equal(t, "https://cdn.example/media/shin.png", got.Contestants[0].MediaURL)
		assert.Equal(t, "https://cdn.example/media/ramen/jin.png", got.Contestants[1].MediaURL)
		assert.Equal(t, "https://img.example/neoguri.png", got.Contestants[2].MediaURL)
	}

	// A second read comes from the cache and is byte-identical.
	first, _ := ts.do(http.MethodGet, "/api/v1/games/"+fmt.Sprint(created.ID), nil, nil)
	second, _ := ts.do(http.MethodGet, "/api/v1/games/"+fmt.Sprint(created.ID), nil, nil)
	assert.Equal(t, first.Body.String(), second.Body.String())

	w, _ = ts.do(http.MethodDelete, "/api/v1/games/"+created.PublicID, nil, admin)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(http.MethodGet, "/api/v1/games/"+fmt.Sprint(created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var contestants int64
	require.NoError(t, ts.DB.Model(&models.Contestant{}).Count(&contestants).Error)
	assert.Zero(t, contestants)
}

func TestCreateGame_Validation(t *testing.T) {
	ts := newTestServer(t)
	admin := map[string]string{middlewares.AdminKeyHeader: testAdminKey}

	w, env := ts.do(http.MethodPost, "/api/v1/games", map[string]interface{}{
		"title":       "",
		"contestants": []map[string]string{{"name": "혼자"}},
	}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs, ok := env.Error.(map[string]interface{})
	require.True(t, ok, "expected an error map, got %v", env.Error)
	assert.Contains(t, errs, "Required_title")
	assert.Contains(t, errs, "Required_contestants")

	w, env = ts.do(http.MethodPost, "/api/v1/games", map[string]interface{}{
		"title": "중복",
		"contestants": []map[string]interface{}{
			{"name": "A"},
			{"name": "B", "sort_order": 1},
			{"name": "C"},
		},
	}, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	errs, ok = env.Error.(map[string]interface{})
	require.True(t, ok, "expected an error map, got %v", env.Error)
	assert.Contains(t, errs, "Duplicate_sort_order")

	w, _ = ts.do(http.MethodPost, "/api/v1/games", "{not json", admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetGame_BadIdentifiers(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(http.MethodGet, "/api/v1/games/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodGet, "/api/v1/games/999", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodGet, "/api/v1/games/6f1c1b2e-1d8a-4f3b-9a77-1c2d3e4f5a6b", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGameResult_SaveLoadDelete(t *testing.T) {
	ts := newTestServer(t)
	game := ts.seedGame("치킨 월드컵", "후라이드", "양념", "간장", "파닭", "반반")
	res := playToEnd(t, game)
	path := fmt.Sprintf("/api/v1/games/%d/result", game.ID)
	session := map[string]string{middlewares.SessionIDHeader: "session-1"}

	w, _ := ts.do(http.MethodPut, path, res, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = ts.do(http.MethodPut, path, res, session)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env := ts.do(http.MethodGet, path, nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	var got bracket.Result
	require.NoError(t, json.Unmarshal(env.Response, &got))
	assert.Equal(t, res.Champion, got.Champion)
	assert.Equal(t, res.Ranking, got.Ranking)

	w, _ = ts.do(http.MethodGet, path, nil, map[string]string{middlewares.SessionIDHeader: "session-2"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = ts.do(http.MethodDelete, path, nil, session)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = ts.do(http.MethodGet, path, nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGameResult_RejectsInconsistentResults(t *testing.T) {
	ts := newTestServer(t)
	game := ts.seedGame("음료 월드컵", "콜라", "사이다", "환타", "식혜")
	other := ts.seedGame("과일 월드컵", "사과", "배")
	path := fmt.Sprintf("/api/v1/games/%d/result", game.ID)
	session := map[string]string{middlewares.SessionIDHeader: "session-1"}

	tooManyWins := playToEnd(t, game)
	tooManyWins.Ranking[0].Wins++

	foreign := playToEnd(t, game)
	foreign.Ranking[len(foreign.Ranking)-1].Contestant = other.Contestants[0].Entry()

	wrongGame := playToEnd(t, game)
	wrongGame.GameID = other.ID

	partial := playToEnd(t, other)
	partial.GameID = 0

	cases := map[string]interface{}{
		"wins do not add up":    tooManyWins,
		"foreign contestant":    foreign,
		"different game id":     wrongGame,
		"ranking size mismatch": partial,
		"garbage":               "{",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w, _ := ts.do(http.MethodPut, path, body, session)
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		})
	}

	w, _ := ts.do(http.MethodGet, path, nil, session)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCalculateLuck(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name  string
		req   controllers.LuckRequest
		score int
		grade fortune.Grade
		idiom string
	}{
		{"saturday male", controllers.LuckRequest{BirthDate: "1990-05-15", Gender: "male", CalendarType: "SOLAR", Today: "2024-01-06"}, 62, fortune.GradeMid, "안분지족"},
		{"saturday female", controllers.LuckRequest{BirthDate: "1990-05-15", Gender: "FEMALE", Today: "2024-01-06"}, 65, fortune.GradeMid, "온고지신"},
		{"matching element", controllers.LuckRequest{BirthDate: "1990-05-19", Gender: "female", CalendarType: "lunar", Today: "2024-01-06"}, 77, fortune.GradeHigh, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := ts.do(http.MethodPost, "/api/v1/luck", tc.req, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			var got fortune.LuckResult
			require.NoError(t, json.Unmarshal(env.Response, &got))
			assert.Equal(t, tc.score, got.Score)
			assert.Equal(t, tc.grade, got.Grade)
			assert.Equal(t, "토요일", got.Meta.Weekday)
			assert.Equal(t, "2024-01-06", got.Meta.ISODate)
			require.NotNil(t, got.Idiom)
			if tc.idiom != "" {
				assert.Equal(t, tc.idiom, *got.Idiom)
			}
		})
	}
}

func TestCalculateLuck_BadInput(t *testing.T) {
	ts := newTestServer(t)

	cases := map[string]controllers.LuckRequest{
		"bad date":     {BirthDate: "15/05/1990", Gender: "male"},
		"bad gender":   {BirthDate: "1990-05-15", Gender: "other"},
		"bad calendar": {BirthDate: "1990-05-15", Gender: "male", CalendarType: "MAYAN"},
		"bad today":    {BirthDate: "1990-05-15", Gender: "male", Today: "tomorrow"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			w, env := ts.do(http.MethodPost, "/api/v1/luck", req, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestDrawIdiom(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(http.MethodGet, "/api/v1/luck/idiom?grade=high", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got controllers.IdiomDTO
	require.NoError(t, json.Unmarshal(env.Response, &got))
	assert.Equal(t, "high", got.Grade)
	assert.Contains(t, fortune.DefaultDataset().Idioms[fortune.GradeHigh], got.Idiom)

	w, _ = ts.do(http.MethodGet, "/api/v1/luck/idiom?grade=legendary", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/healthz", nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("X-Forwarded-For", ts.clientIP)
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `worldcup_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}
