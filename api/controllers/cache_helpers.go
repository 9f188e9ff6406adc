package controllers

import (
	"context"
	"fmt"
	"time"
)

const gameCacheTTL = 60 * time.Second

func gameCacheKey(identifier string) string {
	return fmt.Sprintf("game:%s", identifier)
}

// invalidateGameCache drops every cached game view; entries are keyed by the
// identifier the client used, so one game can sit under two keys.
func (server *Server) invalidateGameCache(ctx context.Context) {
	if err := server.Cache.DeleteByPrefix(ctx, "game:"); err != nil {
		server.Log.WithError(err).Warn("failed to invalidate game cache")
	}
}
