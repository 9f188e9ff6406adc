package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Game struct {
	ID          uint         `gorm:"primaryKey;autoIncrement" json:"id"`
	PublicID    string       `gorm:"size:36;uniqueIndex;column:public_id" json:"public_id"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Contestants []Contestant `gorm:"foreignKey:GameID;constraint:OnDelete:CASCADE" json:"contestants"`
	CreatedAt   time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(g.PublicID) == "" {
		g.PublicID = uuid.NewString()
	}
	return nil
}

//
// ===============================
// PREPARE & VALIDATE
// ===============================
//

// Prepare trims text fields. When no contestant carries a sort order,
// contestants are numbered in submission order.
func (g *Game) Prepare() {
	g.Title = strings.TrimSpace(g.Title)
	g.Description = strings.TrimSpace(g.Description)
	ordered := false
	for i := range g.Contestants {
		g.Contestants[i].Prepare()
		if g.Contestants[i].SortOrder != 0 {
			ordered = true
		}
	}
	if !ordered {
		for i := range g.Contestants {
			g.Contestants[i].SortOrder = i + 1
		}
	}
}

func (g *Game) Validate() map[string]string {
	var err error
	errorsMap := make(map[string]string)

	if g.Title == "" {
		err = errors.New("required title")
		errorsMap["Required_title"] = err.Error()
	}
	if len(g.Contestants) < 2 {
		err = errors.New("at least 2 contestants required")
		errorsMap["Required_contestants"] = err.Error()
	}
	for _, c := range g.Contestants {
		if c.Name == "" {
			err = errors.New("required contestant name")
			errorsMap["Required_contestant_name"] = err.Error()
			break
		}
	}
	orders := make(map[int]bool, len(g.Contestants))
	for _, c := range g.Contestants {
		if orders[c.SortOrder] {
			err = errors.New("contestant sort orders must be unique")
			errorsMap["Duplicate_sort_order"] = err.Error()
			break
		}
		orders[c.SortOrder] = true
	}

	return errorsMap
}

//
// ===============================
// DATABASE OPERATIONS
// ===============================
//

// SaveGame creates the game together with its contestants.
func (g *Game) SaveGame(db *gorm.DB) (*Game, error) {
	if err := db.Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

// FindGameByID loads a game and its contestants in sort order.
func (g *Game) FindGameByID(db *gorm.DB, id uint) (*Game, error) {
	err := db.
		Preload("Contestants", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order ASC, id ASC")
		}).
		Where("id = ?", id).
		First(g).Error
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GameListing is a game row with its contestant count.
type GameListing struct {
	ID              uint      `json:"id"`
	PublicID        string    `json:"public_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ContestantCount int64     `json:"contestant_count"`
	CreatedAt       time.Time `json:"created_at"`
}

func FindAllGames(db *gorm.DB, limit, offset int) ([]GameListing, int64, error) {
	var total int64
	if err := db.Model(&Game{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listings := []GameListing{}
	err := db.Model(&Game{}).
		Select("games.id, games.public_id, games.title, games.description, games.created_at, " +
			"(SELECT COUNT(1) FROM contestants WHERE contestants.game_id = games.id) AS contestant_count").
		Order("games.created_at DESC, games.id DESC").
		Limit(limit).
		Offset(offset).
		Scan(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// DeleteGame removes the game and its contestants.
func (g *Game) DeleteGame(db *gorm.DB, id uint) (int64, error) {
	var affected int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&Contestant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Game{}, id)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}
