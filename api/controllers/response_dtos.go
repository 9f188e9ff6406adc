package controllers

import "time"

type ContestantDTO struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	FileName  string `json:"file_name"`
	MediaURL  string `json:"media_url,omitempty"`
	SortOrder int    `json:"sort_order"`
}

type GameDTO struct {
	ID          uint            `json:"id"`
	PublicID    string          `json:"public_id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Contestants []ContestantDTO `json:"contestants"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type GameSummaryDTO struct {
	ID              uint      `json:"id"`
	PublicID        string    `json:"public_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ContestantCount int64     `json:"contestant_count"`
	CreatedAt       time.Time `json:"created_at"`
}

type GameListDTO struct {
	Games  []GameSummaryDTO `json:"games"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

type ContestantInput struct {
	Name      string `json:"name"`
	FileName  string `json:"file_name"`
	SortOrder int    `json:"sort_order"`
}

type CreateGameRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Contestants []ContestantInput `json:"contestants"`
}

type LuckRequest struct {
	BirthDate    string `json:"birth_date"`
	Gender       string `json:"gender"`
	CalendarType string `json:"calendar_type"`
	Today        string `json:"today,omitempty"`
}

type IdiomDTO struct {
	Grade string `json:"grade"`
	Idiom string `json:"idiom"`
}
