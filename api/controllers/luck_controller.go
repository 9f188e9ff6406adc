package controllers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"WorldCup/api/fortune"

	"github.com/gin-gonic/gin"
)

// CalculateLuck scores a birth date against today (or the requested day).
func (server *Server) CalculateLuck(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Unable to get request"})
		return
	}
	var req LuckRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cannot unmarshal body"})
		return
	}

	gender, err := fortune.ParseGender(req.Gender)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	calendar, err := fortune.ParseCalendarType(req.CalendarType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	calc := server.Fortune
	if today := strings.TrimSpace(req.Today); today != "" {
		day, err := time.ParseInLocation("2006-01-02", today, fortune.DefaultLocation)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid today date, expected YYYY-MM-DD"})
			return
		}
		calc = calc.With(fortune.WithToday(day))
	}

	result, err := calc.CalculateLuckFromBirthDate(req.BirthDate, gender, calendar)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	server.Metrics.LuckCalculated(string(result.Grade))
	c.JSON(http.StatusOK, gin.H{"response": result})
}

// DrawIdiom returns a random idiom for the requested grade.
func (server *Server) DrawIdiom(c *gin.Context) {
	grade, err := fortune.ParseGrade(c.Query("grade"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	idiom, ok := server.drawIdiom(grade)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No idioms for grade"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": IdiomDTO{Grade: string(grade), Idiom: idiom}})
}
