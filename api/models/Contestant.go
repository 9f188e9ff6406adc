package models

import (
	"strings"

	"WorldCup/api/bracket"
)

type Contestant struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	GameID    uint   `gorm:"not null;index" json:"game_id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	FileName  string `gorm:"size:512" json:"file_name"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

func (c *Contestant) Prepare() {
	c.Name = strings.TrimSpace(c.Name)
	c.FileName = strings.TrimSpace(c.FileName)
}

// Entry converts the row into the value the bracket engine plays with.
func (c Contestant) Entry() bracket.Contestant {
	return bracket.Contestant{
		ID:        c.ID,
		Name:      c.Name,
		FileName:  c.FileName,
		SortOrder: c.SortOrder,
	}
}
