package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"mutuals/internal/models"
	"mutuals/internal/secrets"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
}

// Seeder populates the database with a realistic social mesh: users,
// friendships in every lifecycle state, blocks, and the activity and
// notification trails those edges would have produced.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the given DB and cipher.
func NewSeeder(db *gorm.DB, cipher *secrets.Cipher) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, cipher)}
}

// ClearAll removes all seeded data and resets identity sequences.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	sql := `TRUNCATE TABLE notifications, activities, user_blocks, friend_requests, users RESTART IDENTITY CASCADE;`
	return s.db.Exec(sql).Error
}

// Run seeds the database per the given options.
func (s *Seeder) Run(opts Options) error {
	log.Printf("🌱 Starting database seeding with %d users...", opts.NumUsers)

	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			log.Println("⚠️  Warning: Could not clear all existing data, but continuing anyway...")
		}
	}

	users, err := s.createUsers(opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("✓ %d test users created", len(users))

	accepted, pending, err := s.createFriendMesh(users)
	if err != nil {
		return fmt.Errorf("failed to create friend mesh: %w", err)
	}
	log.Printf("✓ %d friendships and %d pending requests created", accepted, pending)

	blocks, err := s.createBlocks(users)
	if err != nil {
		return fmt.Errorf("failed to create blocks: %w", err)
	}
	log.Printf("✓ %d blocks created", blocks)

	log.Println("🎉 Database seeding completed successfully!")
	return nil
}

func (s *Seeder) createUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createFriendMesh wires a random set of ordered user pairs with friend
// requests. Roughly 60% are accepted friendships, the rest stay pending;
// each edge gets the activity and notification rows the live request flow
// would have written.
func (s *Seeder) createFriendMesh(users []*models.User) (accepted, pending int, err error) {
	if len(users) < 2 {
		return 0, 0, nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	edges := len(users) * 2
	seen := make(map[[2]uint]bool)

	for i := 0; i < edges; i++ {
		from := users[r.Intn(len(users))]
		to := users[r.Intn(len(users))]
		if from.ID == to.ID {
			continue
		}
		pair := [2]uint{from.ID, to.ID}
		reverse := [2]uint{to.ID, from.ID}
		if seen[pair] || seen[reverse] {
			continue
		}
		seen[pair] = true

		isAccepted := r.Intn(100) < 60
		if _, err := s.factory.CreateFriendRequest(from, to, isAccepted); err != nil {
			return accepted, pending, err
		}

		if _, err := s.factory.CreateActivity(from, models.ActionSentFriendRequest, to); err != nil {
			return accepted, pending, err
		}
		if _, err := s.factory.CreateNotification(to,
			fmt.Sprintf("%s has sent you a friend request.", from.Username), isAccepted); err != nil {
			return accepted, pending, err
		}

		if isAccepted {
			if _, err := s.factory.CreateActivity(to, models.ActionAcceptedFriendRequest, to); err != nil {
				return accepted, pending, err
			}
			if _, err := s.factory.CreateNotification(to,
				fmt.Sprintf("%s has accepted your friend request.", to.Username), false); err != nil {
				return accepted, pending, err
			}
			accepted++
		} else {
			pending++
		}
	}
	return accepted, pending, nil
}

func (s *Seeder) createBlocks(users []*models.User) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}

	//nolint:gosec // Weak random number generator is fine for seeding
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	target := len(users) / 5
	seen := make(map[[2]uint]bool)
	created := 0

	for created < target {
		blocker := users[r.Intn(len(users))]
		blocked := users[r.Intn(len(users))]
		if blocker.ID == blocked.ID {
			continue
		}
		pair := [2]uint{blocker.ID, blocked.ID}
		if seen[pair] {
			continue
		}
		seen[pair] = true

		if _, err := s.factory.CreateBlock(blocker, blocked); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
