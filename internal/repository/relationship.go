// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"mutuals/internal/models"
	"mutuals/internal/observability"

	"gorm.io/gorm"
)

// RelationshipRepository is the durable store of directed friend-request and
// block edges. Uniqueness constraints on both edge tables are the sole
// duplicate-prevention mechanism under concurrent writers: a losing insert
// surfaces as a CONFLICT error rather than a silent duplicate.
type RelationshipRepository interface {
	// WithTx returns a copy of the repository bound to the given transaction.
	WithTx(tx *gorm.DB) RelationshipRepository

	CreateRequest(ctx context.Context, req *models.FriendRequest) error
	GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error)
	AcceptedBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error)
	LatestNonAccepted(ctx context.Context, fromUserID, toUserID uint) (*models.FriendRequest, error)
	AcceptRequest(ctx context.Context, id uint) error
	DeleteRequest(ctx context.Context, id uint) error
	FriendsOf(ctx context.Context, userID uint, limit, offset int) ([]models.User, error)
	PendingFor(ctx context.Context, userID uint, limit, offset int) ([]models.FriendRequest, error)

	CreateBlock(ctx context.Context, block *models.UserBlock) error
	GetBlock(ctx context.Context, blockerID, blockedID uint) (*models.UserBlock, error)
	DeleteBlock(ctx context.Context, blockerID, blockedID uint) (int64, error)
}

// relationshipRepository implements RelationshipRepository
type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

func (r *relationshipRepository) WithTx(tx *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: tx}
}

func (r *relationshipRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	defer observability.TrackQuery("insert", "friend_requests")()
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("A friend request for this pair already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) GetRequestByID(ctx context.Context, id uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	if err := r.db.WithContext(ctx).Preload("FromUser").Preload("ToUser").First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Friend request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// AcceptedBetween returns the accepted edge between the pair in either
// direction, or nil when the users are not friends.
func (r *relationshipRepository) AcceptedBetween(ctx context.Context, userID1, userID2 uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("is_accepted = ? AND ((from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?))",
			true, userID1, userID2, userID2, userID1).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

// LatestNonAccepted returns the newest non-accepted edge for the ordered
// pair, or nil. The cooldown gate is keyed on this row's creation time.
func (r *relationshipRepository) LatestNonAccepted(ctx context.Context, fromUserID, toUserID uint) (*models.FriendRequest, error) {
	var req models.FriendRequest
	err := r.db.WithContext(ctx).
		Where("from_user_id = ? AND to_user_id = ? AND is_accepted = ?", fromUserID, toUserID, false).
		Order("created_at DESC").
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *relationshipRepository) AcceptRequest(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).
		Model(&models.FriendRequest{}).
		Where("id = ?", id).
		Update("is_accepted", true).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) DeleteRequest(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.FriendRequest{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// FriendsOf yields the other endpoint of every accepted edge touching the
// user. Ordering is store-determined and not guaranteed.
func (r *relationshipRepository) FriendsOf(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	defer observability.TrackQuery("select", "friend_requests")()
	var users []models.User
	if err := r.db.WithContext(ctx).
		Table("users").
		Joins("JOIN friend_requests fr ON (users.id = fr.from_user_id OR users.id = fr.to_user_id)").
		Where("fr.is_accepted = ? AND (fr.from_user_id = ? OR fr.to_user_id = ?) AND users.id != ?",
			true, userID, userID, userID).
		Limit(limit).
		Offset(offset).
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *relationshipRepository) PendingFor(ctx context.Context, userID uint, limit, offset int) ([]models.FriendRequest, error) {
	defer observability.TrackQuery("select", "friend_requests")()
	var requests []models.FriendRequest
	if err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND is_accepted = ?", userID, false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Preload("FromUser").
		Find(&requests).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return requests, nil
}

func (r *relationshipRepository) CreateBlock(ctx context.Context, block *models.UserBlock) error {
	defer observability.TrackQuery("insert", "user_blocks")()
	if err := r.db.WithContext(ctx).Create(block).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("User is already blocked")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) GetBlock(ctx context.Context, blockerID, blockedID uint) (*models.UserBlock, error) {
	var block models.UserBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &block, nil
}

// DeleteBlock removes the directed block edge and reports how many rows were
// affected so callers can distinguish "unblocked" from "was never blocked".
func (r *relationshipRepository) DeleteBlock(ctx context.Context, blockerID, blockedID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
