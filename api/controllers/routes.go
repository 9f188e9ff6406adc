package controllers

import (
	"net/http"

	"WorldCup/api/middlewares"

	"github.com/gin-gonic/gin"
)

func (s *Server) initializeRoutes() {

	s.Router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"response": "ok"})
	})
	s.Router.GET("/metrics", s.Metrics.Handler())

	v1 := s.Router.Group("/api/v1")
	{
		// Game catalogue
		v1.GET("/games", s.GetGames)
		v1.GET("/games/:id", s.GetGame)
		v1.POST("/games", middlewares.WriteRateLimitMiddleware(), middlewares.AdminKeyMiddleware(s.AdminKey), s.CreateGame)
		v1.DELETE("/games/:id", middlewares.WriteRateLimitMiddleware(), middlewares.AdminKeyMiddleware(s.AdminKey), s.DeleteGame)

		// Finished play results, per session
		v1.PUT("/games/:id/result", middlewares.WriteRateLimitMiddleware(), s.SaveGameResult)
		v1.GET("/games/:id/result", s.GetGameResult)
		v1.DELETE("/games/:id/result", s.DeleteGameResult)

		// Daily luck
		v1.POST("/luck", s.CalculateLuck)
		v1.GET("/luck/idiom", s.DrawIdiom)
	}
}
