package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"WorldCup/api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	defaultGamesLimit = 20
	maxGamesLimit     = 100
)

func respondGameLookupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errInvalidIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load game"})
	}
}

// GetGames lists the catalogue, newest first.
func (server *Server) GetGames(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultGamesLimit)))
	if err != nil || limit <= 0 {
		limit = defaultGamesLimit
	}
	if limit > maxGamesLimit {
		limit = maxGamesLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	listings, total, err := models.FindAllGames(server.DB, limit, offset)
	if err != nil {
		server.Log.WithError(err).Error("failed to list games")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load games"})
		return
	}

	games := make([]GameSummaryDTO, 0, len(listings))
	for _, l := range listings {
		games = append(games, gameListingToDTO(l))
	}
	c.JSON(http.StatusOK, gin.H{"response": GameListDTO{
		Games:  games,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}})
}

// GetGame returns a game with its contestants in play order.
func (server *Server) GetGame(c *gin.Context) {
	ctx := c.Request.Context()
	identifier := c.Param("id")
	cacheKey := gameCacheKey(identifier)

	if cached, err := server.Cache.Get(ctx, cacheKey); err == nil && cached != "" {
		server.Metrics.CacheHit()
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}
	server.Metrics.CacheMiss()

	game, err := resolveGameByIdentifier(server.DB, identifier)
	if err != nil {
		respondGameLookupError(c, err)
		return
	}

	dto, err := gameToDTO(ctx, server.Media, game)
	if err != nil {
		server.Log.WithError(err).WithField("game_id", game.ID).Error("failed to resolve media")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve contestant media"})
		return
	}

	payload := gin.H{"response": dto}
	if jsonBytes, err := json.Marshal(payload); err == nil {
		if err := server.Cache.Set(ctx, cacheKey, jsonBytes, gameCacheTTL); err != nil {
			server.Log.WithError(err).Debug("failed to cache game")
		}
	}
	c.JSON(http.StatusOK, payload)
}

// CreateGame stores a new game with at least two contestants.
func (server *Server) CreateGame(c *gin.Context) {
	errList := map[string]string{}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		errList["Invalid_body"] = "Unable to get request"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	var req CreateGameRequest
	if err := json.Unmarshal(body, &req); err != nil {
		errList["Unmarshal_error"] = "Cannot unmarshal body"
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errList,
		})
		return
	}

	game := req.toModel()
	game.Prepare()
	if errorMessages := game.Validate(); len(errorMessages) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"status": http.StatusUnprocessableEntity,
			"error":  errorMessages,
		})
		return
	}

	created, err := game.SaveGame(server.DB)
	if err != nil {
		server.Log.WithError(err).Error("failed to create game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}
	server.invalidateGameCache(c.Request.Context())

	dto, err := gameToDTO(c.Request.Context(), server.Media, created)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve contestant media"})
		return
	}
	server.Log.WithField("game_id", created.ID).Info("game created")
	c.JSON(http.StatusCreated, gin.H{"response": dto})
}

// DeleteGame removes a game and its contestants.
func (server *Server) DeleteGame(c *gin.Context) {
	game, err := resolveGameByIdentifier(server.DB, c.Param("id"))
	if err != nil {
		respondGameLookupError(c, err)
		return
	}

	if _, err := game.DeleteGame(server.DB, game.ID); err != nil {
		server.Log.WithError(err).WithField("game_id", game.ID).Error("failed to delete game")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete game"})
		return
	}
	server.invalidateGameCache(c.Request.Context())

	server.Log.WithField("game_id", game.ID).Info("game deleted")
	c.JSON(http.StatusOK, gin.H{"response": "Game deleted"})
}
