package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"mutuals/internal/models"
	"mutuals/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.FriendRequest{},
		&models.UserBlock{},
		&models.Activity{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Username:  username,
		Email:     "enc:" + username,
		EmailHash: "hash:" + username,
		Password:  "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newFriendService(db *gorm.DB) (*FriendService, *Emitter) {
	emitter := NewEmitter(
		repository.NewActivityRepository(db),
		repository.NewNotificationRepository(db),
	)
	svc := NewFriendService(db,
		repository.NewRelationshipRepository(db),
		repository.NewUserRepository(db),
		emitter,
	)
	return svc, emitter
}

func TestFriendService_Send(t *testing.T) {
	db := setupServiceDB(t)
	svc, emitter := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	request, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, request.FromUserID)
	assert.Equal(t, bob.ID, request.ToUserID)
	assert.False(t, request.IsAccepted)
	assert.Equal(t, "alice", request.FromUser.Username)

	// The target sees exactly one pending request
	pending, err := svc.PendingFor(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, request.ID, pending[0].ID)

	// Activity recorded for the sender
	activities, err := emitter.Activities(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActionSentFriendRequest, activities[0].Action)
	require.NotNil(t, activities[0].TargetUserID)
	assert.Equal(t, bob.ID, *activities[0].TargetUserID)

	// Notification delivered to the target
	notifications, err := emitter.ListUnread(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "alice has sent you a friend request.", notifications[0].Message)
}

func TestFriendService_Send_Validation(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")

	t.Run("Self request", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, alice.ID)
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("Missing target", func(t *testing.T) {
		_, err := svc.Send(ctx, alice.ID, 9999)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("Missing requester", func(t *testing.T) {
		_, err := svc.Send(ctx, 9999, alice.ID)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestFriendService_Send_AlreadyFriends(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	request, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Respond(ctx, bob.ID, request.ID, true))

	// Both directions are rejected once the pair is friends
	_, err = svc.Send(ctx, alice.ID, bob.ID)
	assertAppErrorCode(t, err, models.CodeConflict)

	_, err = svc.Send(ctx, bob.ID, alice.ID)
	assertAppErrorCode(t, err, models.CodeConflict)
}

func TestFriendService_Send_Cooldown(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	_, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	// Re-sending while the pending request is inside the window hits the
	// cooldown gate before the unique constraint does.
	_, err = svc.Send(ctx, alice.ID, bob.ID)
	assertAppErrorCode(t, err, models.CodeConflict)
	assert.Contains(t, err.Error(), "cannot send another friend request")

	// The opposite direction is a distinct ordered pair and is not gated.
	_, err = svc.Send(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
}

func TestFriendService_Send_CooldownExpired(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	stale := &models.FriendRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		CreatedAt:  time.Now().Add(-models.CooldownWindow - time.Hour),
	}
	require.NoError(t, db.Create(stale).Error)

	// Past the window the cooldown gate passes, but the pending edge still
	// occupies the unique pair slot.
	_, err := svc.Send(ctx, alice.ID, bob.ID)
	assertAppErrorCode(t, err, models.CodeConflict)
	assert.Contains(t, err.Error(), "already exists")
}

func TestFriendService_Respond_Accept(t *testing.T) {
	db := setupServiceDB(t)
	svc, emitter := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	request, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, bob.ID, request.ID, true))

	// Both endpoints now see each other as friends
	aliceFriends, err := svc.FriendsOf(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, aliceFriends, 1)
	assert.Equal(t, bob.ID, aliceFriends[0].ID)

	bobFriends, err := svc.FriendsOf(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, alice.ID, bobFriends[0].ID)

	// The request leaves the pending view
	pending, err := svc.PendingFor(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// The responder records the activity and is the notification recipient
	activities, err := emitter.Activities(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActionAcceptedFriendRequest, activities[0].Action)

	notifications, err := emitter.ListUnread(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "bob has accepted your friend request.", notifications[0].Message)
}

func TestFriendService_Respond_Reject(t *testing.T) {
	db := setupServiceDB(t)
	svc, emitter := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	request, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, bob.ID, request.ID, false))

	// The edge is gone
	var count int64
	db.Model(&models.FriendRequest{}).Count(&count)
	assert.Equal(t, int64(0), count)

	activities, err := emitter.Activities(ctx, bob.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.ActionRejectedFriendRequest, activities[0].Action)

	// Rejection deletes the edge, so the cooldown gate has nothing to key on
	// and an immediate re-send goes through.
	_, err = svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
}

func TestFriendService_Respond_Authorization(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	request, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	t.Run("Sender cannot respond", func(t *testing.T) {
		err := svc.Respond(ctx, alice.ID, request.ID, true)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("Third party cannot respond", func(t *testing.T) {
		err := svc.Respond(ctx, carol.ID, request.ID, false)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("Missing request", func(t *testing.T) {
		err := svc.Respond(ctx, bob.ID, 9999, true)
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("Already accepted", func(t *testing.T) {
		require.NoError(t, svc.Respond(ctx, bob.ID, request.ID, true))
		err := svc.Respond(ctx, bob.ID, request.ID, true)
		assertAppErrorCode(t, err, models.CodeConflict)
	})
}

func TestFriendService_Respond_MutualAccept(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	// Opposite directions are distinct ordered pairs, so a crossed pending
	// pair is reachable.
	reqAB, err := svc.Send(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	reqBA, err := svc.Send(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Respond(ctx, bob.ID, reqAB.ID, true))

	// Accepting the reverse request would create a second accepted row for
	// the same unordered pair.
	err = svc.Respond(ctx, alice.ID, reqBA.ID, true)
	assertAppErrorCode(t, err, models.CodeConflict)
	assert.Contains(t, err.Error(), "already friends")

	var acceptedRows int64
	db.Model(&models.FriendRequest{}).Where("is_accepted = ?", true).Count(&acceptedRows)
	assert.Equal(t, int64(1), acceptedRows)

	friends, err := svc.FriendsOf(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, friends, 1)

	// The leftover reverse request can still be cleared by rejecting it.
	require.NoError(t, svc.Respond(ctx, alice.ID, reqBA.ID, false))

	var pendingRows int64
	db.Model(&models.FriendRequest{}).Where("is_accepted = ?", false).Count(&pendingRows)
	assert.Equal(t, int64(0), pendingRows)
}

func TestFriendService_Send_ConcurrentDuplicate(t *testing.T) {
	db := setupServiceDB(t)

	// A single-connection pool keeps the in-memory store shared between the
	// racing goroutines; the unique pair index decides the winner.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	start := make(chan struct{})
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, sendErr := svc.Send(ctx, alice.ID, bob.ID)
			results <- sendErr
		}()
	}
	close(start)

	var successes, conflicts int
	for i := 0; i < 2; i++ {
		sendErr := <-results
		if sendErr == nil {
			successes++
			continue
		}
		var appErr *models.AppError
		require.True(t, errors.As(sendErr, &appErr), "unexpected error type %T: %v", sendErr, sendErr)
		assert.Equal(t, models.CodeConflict, appErr.Code)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, conflicts)

	var count int64
	db.Model(&models.FriendRequest{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestFriendService_Send_Atomicity(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	// Breaking the notification store forces the emission to fail; the edge
	// insert must roll back with it.
	require.NoError(t, db.Migrator().DropTable(&models.Notification{}))

	_, err := svc.Send(ctx, alice.ID, bob.ID)
	require.Error(t, err)

	var requests int64
	db.Model(&models.FriendRequest{}).Count(&requests)
	assert.Equal(t, int64(0), requests)

	var activities int64
	db.Model(&models.Activity{}).Count(&activities)
	assert.Equal(t, int64(0), activities)
}

func TestFriendService_FriendsOf_Pagination(t *testing.T) {
	db := setupServiceDB(t)
	svc, _ := newFriendService(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	for i := 0; i < 15; i++ {
		friend := createTestUser(t, db, fmt.Sprintf("friend%02d", i))
		request, err := svc.Send(ctx, friend.ID, alice.ID)
		require.NoError(t, err)
		require.NoError(t, svc.Respond(ctx, alice.ID, request.ID, true))
	}

	first, err := svc.FriendsOf(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, first, 10)

	second, err := svc.FriendsOf(ctx, alice.ID, 10, 10)
	require.NoError(t, err)
	assert.Len(t, second, 5)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected *models.AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)
}
