package seed

import (
	"testing"

	"mutuals/internal/models"
	"mutuals/internal/secrets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSeedDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.UserBlock{},
		&models.Activity{},
		&models.Notification{},
	))
	return db
}

func newSeedCipher(t *testing.T) *secrets.Cipher {
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	cipher, err := secrets.NewCipher(key)
	require.NoError(t, err)
	return cipher
}

func TestFactory_CreateUser(t *testing.T) {
	db := setupSeedDB(t)
	factory := NewFactory(db, newSeedCipher(t))

	user, err := factory.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.Username)
	assert.NotEmpty(t, user.EmailHash)
	// Stored email is the ciphertext, not the address
	assert.NotContains(t, user.Email, "@")

	t.Run("Override", func(t *testing.T) {
		custom, err := factory.CreateUser(func(u *models.User) {
			u.Username = "fixed-name"
		})
		require.NoError(t, err)
		assert.Equal(t, "fixed-name", custom.Username)
	})
}

func TestSeeder_Run(t *testing.T) {
	db := setupSeedDB(t)
	// ShouldClean uses TRUNCATE, which sqlite lacks; skip cleanup here
	seeder := NewSeeder(db, newSeedCipher(t))

	require.NoError(t, seeder.Run(Options{NumUsers: 8, ShouldClean: false}))

	var userCount int64
	db.Model(&models.User{}).Count(&userCount)
	assert.Equal(t, int64(8), userCount)

	var requestCount int64
	db.Model(&models.FriendRequest{}).Count(&requestCount)
	assert.Greater(t, requestCount, int64(0))

	// Every request edge got its emission rows
	var notificationCount int64
	db.Model(&models.Notification{}).Count(&notificationCount)
	assert.GreaterOrEqual(t, notificationCount, requestCount)

	var activityCount int64
	db.Model(&models.Activity{}).Count(&activityCount)
	assert.GreaterOrEqual(t, activityCount, requestCount)
}
