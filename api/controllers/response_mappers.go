package controllers

import (
	"context"

	"WorldCup/api/media"
	"WorldCup/api/models"
)

func contestantToDTO(ctx context.Context, resolver media.Resolver, c models.Contestant) (ContestantDTO, error) {
	url, err := resolver.URL(ctx, c.FileName)
	if err != nil {
		return ContestantDTO{}, err
	}
	return ContestantDTO{
		ID:        c.ID,
		Name:      c.Name,
		FileName:  c.FileName,
		MediaURL:  url,
		SortOrder: c.SortOrder,
	}, nil
}

func gameToDTO(ctx context.Context, resolver media.Resolver, g *models.Game) (GameDTO, error) {
	contestants := make([]ContestantDTO, 0, len(g.Contestants))
	for _, c := range g.Contestants {
		dto, err := contestantToDTO(ctx, resolver, c)
		if err != nil {
			return GameDTO{}, err
		}
		contestants = append(contestants, dto)
	}
	return GameDTO{
		ID:          g.ID,
		PublicID:    g.PublicID,
		Title:       g.Title,
		Description: g.Description,
		Contestants: contestants,
		CreatedAt:   g.CreatedAt,
		UpdatedAt:   g.UpdatedAt,
	}, nil
}

func gameListingToDTO(l models.GameListing) GameSummaryDTO {
	return GameSummaryDTO{
		ID:              l.ID,
		PublicID:        l.PublicID,
		Title:           l.Title,
		Description:     l.Description,
		ContestantCount: l.ContestantCount,
		CreatedAt:       l.CreatedAt,
	}
}

func (r CreateGameRequest) toModel() models.Game {
	game := models.Game{
		Title:       r.Title,
		Description: r.Description,
		Contestants: make([]models.Contestant, 0, len(r.Contestants)),
	}
	for _, c := range r.Contestants {
		game.Contestants = append(game.Contestants, models.Contestant{
			Name:      c.Name,
			FileName:  c.FileName,
			SortOrder: c.SortOrder,
		})
	}
	return game
}
