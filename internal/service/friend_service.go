package service

import (
	"context"
	"fmt"
	"time"

	"mutuals/internal/models"
	"mutuals/internal/observability"
	"mutuals/internal/repository"

	"gorm.io/gorm"
)

// FriendService is the request lifecycle engine. It validates and applies
// state transitions on the relationship store. Every mutating operation runs
// as one transaction covering the edge mutation, the activity append, and
// the notification append: a failure anywhere rolls back all three.
type FriendService struct {
	db       *gorm.DB
	relRepo  repository.RelationshipRepository
	userRepo repository.UserRepository
	emitter  *Emitter
}

// NewFriendService returns a new FriendService.
func NewFriendService(db *gorm.DB, relRepo repository.RelationshipRepository, userRepo repository.UserRepository, emitter *Emitter) *FriendService {
	return &FriendService{
		db:       db,
		relRepo:  relRepo,
		userRepo: userRepo,
		emitter:  emitter,
	}
}

// Send creates a pending friend request from requester to target.
//
// It fails with NOT_FOUND when the target does not exist, and with CONFLICT
// when the pair is already friends, when the newest non-accepted request for
// the ordered pair is younger than the cooldown window, or when a concurrent
// send wins the unique-constraint race.
func (s *FriendService) Send(ctx context.Context, requesterID, targetID uint) (*models.FriendRequest, error) {
	if requesterID == targetID {
		return nil, models.NewValidationError("Cannot send friend request to yourself")
	}

	requester, err := s.userRepo.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if _, err = s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	accepted, err := s.relRepo.AcceptedBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if accepted != nil {
		return nil, models.NewConflictError("You are already friends")
	}

	// Cooldown is keyed on the newest non-accepted row for the ordered pair.
	// Rejection deletes its row, so this only ever observes a still-pending
	// request in practice.
	latest, err := s.relRepo.LatestNonAccepted(ctx, requesterID, targetID)
	if err != nil {
		return nil, err
	}
	if latest != nil && time.Since(latest.CreatedAt) < models.CooldownWindow {
		return nil, models.NewConflictError("You cannot send another friend request now")
	}

	request := &models.FriendRequest{
		FromUserID: requesterID,
		ToUserID:   targetID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel := s.relRepo.WithTx(tx)
		em := s.emitter.WithTx(tx)

		if txErr := rel.CreateRequest(ctx, request); txErr != nil {
			return txErr
		}
		target := targetID
		if _, txErr := em.Record(ctx, requesterID, models.ActionSentFriendRequest, &target); txErr != nil {
			return txErr
		}
		message := fmt.Sprintf("%s has sent you a friend request.", requester.Username)
		if _, txErr := em.Notify(ctx, targetID, message); txErr != nil {
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	observability.FriendRequestTransitions.WithLabelValues("sent").Inc()
	return s.relRepo.GetRequestByID(ctx, request.ID)
}

// Respond accepts or rejects a pending friend request addressed to the
// responder. Acceptance flips the edge's accepted flag; rejection deletes
// the edge. Both emit an activity and a notification in the same
// transaction.
func (s *FriendService) Respond(ctx context.Context, responderID, requestID uint, accept bool) error {
	request, err := s.relRepo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToUserID != responderID {
		return models.NewForbiddenError("You can only respond to friend requests sent to you")
	}
	if request.IsAccepted {
		return models.NewConflictError("Friend request is not pending")
	}

	// At most one accepted row may exist per unordered pair. Mutual pending
	// requests are possible (the reverse direction is a distinct ordered
	// pair), so accepting must re-check friendship or the second accept
	// would create a duplicate.
	if accept {
		accepted, acceptedErr := s.relRepo.AcceptedBetween(ctx, request.FromUserID, request.ToUserID)
		if acceptedErr != nil {
			return acceptedErr
		}
		if accepted != nil {
			return models.NewConflictError("You are already friends")
		}
	}

	responder, err := s.userRepo.GetByID(ctx, responderID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rel := s.relRepo.WithTx(tx)
		em := s.emitter.WithTx(tx)
		self := responderID

		if accept {
			if txErr := rel.AcceptRequest(ctx, requestID); txErr != nil {
				return txErr
			}
			if _, txErr := em.Record(ctx, responderID, models.ActionAcceptedFriendRequest, &self); txErr != nil {
				return txErr
			}
			message := fmt.Sprintf("%s has accepted your friend request.", responder.Username)
			_, txErr := em.Notify(ctx, responderID, message)
			return txErr
		}

		if txErr := rel.DeleteRequest(ctx, requestID); txErr != nil {
			return txErr
		}
		if _, txErr := em.Record(ctx, responderID, models.ActionRejectedFriendRequest, &self); txErr != nil {
			return txErr
		}
		message := fmt.Sprintf("%s has rejected friend request.", responder.Username)
		_, txErr := em.Notify(ctx, responderID, message)
		return txErr
	})
	if err != nil {
		return err
	}

	if accept {
		observability.FriendRequestTransitions.WithLabelValues("accepted").Inc()
	} else {
		observability.FriendRequestTransitions.WithLabelValues("rejected").Inc()
	}
	return nil
}

// FriendsOf returns the user's friends. Ordering is store-determined.
func (s *FriendService) FriendsOf(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	return s.relRepo.FriendsOf(ctx, userID, limit, offset)
}

// PendingFor returns pending requests addressed to the user, newest first.
func (s *FriendService) PendingFor(ctx context.Context, userID uint, limit, offset int) ([]models.FriendRequest, error) {
	return s.relRepo.PendingFor(ctx, userID, limit, offset)
}
