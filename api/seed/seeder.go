package seed

import (
	"fmt"

	"WorldCup/api/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func sampleGames() []models.Game {
	return []models.Game{
		{
			Title:       "점심 메뉴 월드컵",
			Description: "오늘 점심은 무엇을 먹을까요?",
			Contestants: []models.Contestant{
				{Name: "짜장면", FileName: "lunch/jjajangmyeon.jpg"},
				{Name: "짬뽕", FileName: "lunch/jjamppong.jpg"},
				{Name: "탕수육", FileName: "lunch/tangsuyuk.jpg"},
				{Name: "김치찌개", FileName: "lunch/kimchi-jjigae.jpg"},
				{Name: "된장찌개", FileName: "lunch/doenjang-jjigae.jpg"},
				{Name: "비빔밥", FileName: "lunch/bibimbap.jpg"},
				{Name: "냉면", FileName: "lunch/naengmyeon.jpg"},
				{Name: "돈가스", FileName: "lunch/donkatsu.jpg"},
			},
		},
		{
			Title:       "계절 월드컵",
			Description: "가장 좋아하는 계절은?",
			Contestants: []models.Contestant{
				{Name: "봄", FileName: "seasons/spring.jpg"},
				{Name: "여름", FileName: "seasons/summer.jpg"},
				{Name: "가을", FileName: "seasons/autumn.jpg"},
				{Name: "겨울", FileName: "seasons/winter.jpg"},
				{Name: "환절기", FileName: "seasons/between.jpg"},
			},
		},
	}
}

// Load inserts the sample games when the games table is empty. It never
// drops existing data.
func Load(db *gorm.DB, log logrus.FieldLogger) error {
	var count int64
	if err := db.Model(&models.Game{}).Count(&count).Error; err != nil {
		return fmt.Errorf("cannot count games: %w", err)
	}
	if count > 0 {
		log.WithField("games", count).Debug("games present, skipping seed")
		return nil
	}

	games := sampleGames()
	for i := range games {
		games[i].Prepare()
		if msgs := games[i].Validate(); len(msgs) > 0 {
			return fmt.Errorf("invalid sample game %q: %v", games[i].Title, msgs)
		}
		if _, err := games[i].SaveGame(db); err != nil {
			return fmt.Errorf("cannot seed game %q: %w", games[i].Title, err)
		}
	}
	log.WithField("games", len(games)).Info("seeded sample games")
	return nil
}
