package service

import (
	"context"

	"mutuals/internal/models"
	"mutuals/internal/repository"
)

// BlockService manages directed block edges. Blocking does not cascade into
// friend requests or friendships, and block operations emit no activity or
// notification.
type BlockService struct {
	relRepo  repository.RelationshipRepository
	userRepo repository.UserRepository
}

// NewBlockService returns a new BlockService.
func NewBlockService(relRepo repository.RelationshipRepository, userRepo repository.UserRepository) *BlockService {
	return &BlockService{
		relRepo:  relRepo,
		userRepo: userRepo,
	}
}

// Block creates a directed block edge. NOT_FOUND when the target does not
// exist, CONFLICT when the edge already exists.
func (s *BlockService) Block(ctx context.Context, blockerID, targetID uint) error {
	if blockerID == targetID {
		return models.NewValidationError("Cannot block yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	existing, err := s.relRepo.GetBlock(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if existing != nil {
		return models.NewConflictError("User is already blocked")
	}

	return s.relRepo.CreateBlock(ctx, &models.UserBlock{
		BlockerID: blockerID,
		BlockedID: targetID,
	})
}

// Unblock deletes the directed block edge. NOT_FOUND when the target does
// not exist, FAILED_PRECONDITION when no edge exists.
func (s *BlockService) Unblock(ctx context.Context, blockerID, targetID uint) error {
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	affected, err := s.relRepo.DeleteBlock(ctx, blockerID, targetID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.NewFailedPreconditionError("User is not blocked")
	}
	return nil
}
