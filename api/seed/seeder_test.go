package seed

import (
	"testing"

	"WorldCup/api/models"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestLoad_SeedsOnceIntoEmptyTable(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Game{}, &models.Contestant{}))
	logger, _ := test.NewNullLogger()

	require.NoError(t, Load(db, logger))
	require.NoError(t, Load(db, logger))

	var games, contestants int64
	require.NoError(t, db.Model(&models.Game{}).Count(&games).Error)
	require.NoError(t, db.Model(&models.Contestant{}).Count(&contestants).Error)
	assert.Equal(t, int64(2), games)
	assert.Equal(t, int64(13), contestants)

	var first models.Game
	_, err = first.FindGameByID(db, 1)
	require.NoError(t, err)
	require.Len(t, first.Contestants, 8)
	assert.Equal(t, "짜장면", first.Contestants[0].Name)
	assert.Equal(t, 1, first.Contestants[0].SortOrder)
	assert.Len(t, first.PublicID, 36)
}
