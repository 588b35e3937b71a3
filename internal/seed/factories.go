// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"time"

	"mutuals/internal/models"
	"mutuals/internal/secrets"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db     *gorm.DB
	cipher *secrets.Cipher
}

// NewFactory creates a new Factory bound to the provided Gorm DB. The cipher
// is used to encrypt generated email addresses the same way signup does.
func NewFactory(db *gorm.DB, cipher *secrets.Cipher) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{db: db, cipher: cipher}
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	email := gofakeit.Email()
	encrypted, err := f.cipher.Encrypt(email)
	if err != nil {
		return nil, fmt.Errorf("encrypt seed email: %w", err)
	}

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("Password123!abc"), bcrypt.DefaultCost)

	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     encrypted,
		EmailHash: secrets.HashEmail(email),
		Password:  string(hashedPassword),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
	}

	for _, override := range overrides {
		override(user)
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateFriendRequest persists a directed request edge between two users.
// Pass accepted=true to seed an established friendship.
func (f *Factory) CreateFriendRequest(from, to *models.User, accepted bool, overrides ...func(*models.FriendRequest)) (*models.FriendRequest, error) {
	request := &models.FriendRequest{
		FromUserID: from.ID,
		ToUserID:   to.ID,
		IsAccepted: accepted,
		// spread creation times so cooldown behavior is observable in dev
		CreatedAt: time.Now().Add(-time.Duration(gofakeit.Number(0, 72)) * time.Hour),
	}

	for _, override := range overrides {
		override(request)
	}

	if err := f.db.Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

// CreateBlock persists a directed block edge.
func (f *Factory) CreateBlock(blocker, blocked *models.User) (*models.UserBlock, error) {
	block := &models.UserBlock{
		BlockerID: blocker.ID,
		BlockedID: blocked.ID,
	}
	if err := f.db.Create(block).Error; err != nil {
		return nil, err
	}
	return block, nil
}

// CreateActivity persists an activity entry for a user.
func (f *Factory) CreateActivity(user *models.User, action string, target *models.User) (*models.Activity, error) {
	activity := &models.Activity{
		UserID: user.ID,
		Action: action,
	}
	if target != nil {
		activity.TargetUserID = &target.ID
	}
	if err := f.db.Create(activity).Error; err != nil {
		return nil, err
	}
	return activity, nil
}

// CreateNotification persists a notification for a user.
func (f *Factory) CreateNotification(user *models.User, message string, read bool) (*models.Notification, error) {
	notification := &models.Notification{
		UserID:  user.ID,
		Message: message,
		IsRead:  read,
	}
	if err := f.db.Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}
