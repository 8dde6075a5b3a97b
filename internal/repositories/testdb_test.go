package repositories

import (
	"testing"

	"github.com/anonto42/socialnet/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Friendship{}, &models.Notification{}))
	return db
}

func seedUsers(t *testing.T, db *gorm.DB, n int) []models.User {
	t.Helper()
	names := []string{"Ada", "Grace", "Linus", "Ken", "Rob", "Barbara", "Edsger"}
	users := make([]models.User, n)
	for i := range users {
		users[i] = models.User{
			FirstName: names[i%len(names)],
			LastName:  "Tester",
			Email:     names[i%len(names)] + string(rune('a'+i)) + "@example.com",
			Password:  "x",
		}
		require.NoError(t, db.Create(&users[i]).Error)
	}
	return users
}
