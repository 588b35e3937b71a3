// Command main runs the database seeder for Mutuals.
package main

import (
	"flag"
	"log"

	"mutuals/internal/config"
	"mutuals/internal/database"
	"mutuals/internal/secrets"
	"mutuals/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 50, "Number of users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, clean=%v\n", *numUsers, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		encryptionKey, err = secrets.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate encryption key: %v", err)
		}
		log.Println("⚠️  ENCRYPTION_KEY not set; seeded emails use a throwaway key")
	}
	cipher, err := secrets.NewCipher(encryptionKey)
	if err != nil {
		log.Fatalf("Failed to build cipher: %v", err)
	}

	// Run seeder
	s := seed.NewSeeder(db, cipher)
	if err := s.Run(seed.Options{NumUsers: *numUsers, ShouldClean: *shouldClean}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: Password123!abc")
}
