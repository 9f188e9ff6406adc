package controllers

import (
	"errors"
	"strconv"
	"strings"

	"WorldCup/api/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errInvalidIdentifier = errors.New("invalid identifier")

// resolveGameByIdentifier accepts either the public uuid or the numeric id.
func resolveGameByIdentifier(db *gorm.DB, identifier string) (*models.Game, error) {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil, errInvalidIdentifier
	}

	var game models.Game
	if _, err := uuid.Parse(trimmed); err == nil {
		var id uint
		if err := db.Model(&models.Game{}).Select("id").Where("public_id = ?", strings.ToLower(trimmed)).Scan(&id).Error; err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return game.FindGameByID(db, id)
	}

	numericID, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil || numericID == 0 {
		return nil, errInvalidIdentifier
	}
	return game.FindGameByID(db, uint(numericID))
}
