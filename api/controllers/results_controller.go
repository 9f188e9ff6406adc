package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"WorldCup/api/bracket"
	"WorldCup/api/models"
	"WorldCup/api/results"
	"WorldCup/api/utils/httpctx"

	"github.com/gin-gonic/gin"
)

func sessionID(c *gin.Context) (string, bool) {
	session, ok := httpctx.SessionID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing " + httpctx.SessionIDHeader + " header"})
	}
	return session, ok
}

// checkResultAgainstGame makes sure every ranked contestant belongs to game
// and every contestant of game is ranked exactly once.
func checkResultAgainstGame(res bracket.Result, game *models.Game) error {
	if len(res.Ranking) != len(game.Contestants) {
		return fmt.Errorf("%w: %d ranked, game has %d contestants",
			bracket.ErrInvalidResult, len(res.Ranking), len(game.Contestants))
	}
	known := make(map[uint]bool, len(game.Contestants))
	for _, c := range game.Contestants {
		known[c.ID] = false
	}
	for _, entry := range res.Ranking {
		seen, ok := known[entry.Contestant.ID]
		if !ok {
			return fmt.Errorf("%w: contestant %d is not part of game %d",
				bracket.ErrInvalidResult, entry.Contestant.ID, game.ID)
		}
		if seen {
			return fmt.Errorf("%w: contestant %d ranked twice", bracket.ErrInvalidResult, entry.Contestant.ID)
		}
		known[entry.Contestant.ID] = true
	}
	return nil
}

// SaveGameResult stores the finished bracket for the caller's session.
func (server *Server) SaveGameResult(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	game, err := resolveGameByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondGameLookupError(c, err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	var res bracket.Result
	if err := json.Unmarshal(body, &res); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}
	if res.GameID != 0 && res.GameID != game.ID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Result belongs to a different game"})
		return
	}
	res.GameID = game.ID

	if err := res.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err := checkResultAgainstGame(res, game); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	if err := server.Results.Save(c.Request.Context(), session, res); err != nil {
		server.Log.WithError(err).WithField("game_id", game.ID).Error("failed to save result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save result"})
		return
	}
	server.Metrics.ResultSaved()
	c.JSON(http.StatusOK, gin.H{"response": res})
}

// GetGameResult loads the caller's stored result for the game.
func (server *Server) GetGameResult(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	game, err := resolveGameByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondGameLookupError(c, err)
		return
	}

	res, err := server.Results.Load(c.Request.Context(), session, game.ID)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Result not found"})
			return
		}
		server.Log.WithError(err).WithField("game_id", game.ID).Error("failed to load result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": res})
}

// DeleteGameResult forgets the caller's stored result for the game.
func (server *Server) DeleteGameResult(c *gin.Context) {
	session, ok := sessionID(c)
	if !ok {
		return
	}
	game, err := resolveGameByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondGameLookupError(c, err)
		return
	}

	if err := server.Results.Delete(c.Request.Context(), session, game.ID); err != nil {
		server.Log.WithError(err).WithField("game_id", game.ID).Error("failed to delete result")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete result"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": "Result deleted"})
}
