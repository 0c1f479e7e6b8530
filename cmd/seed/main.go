package main

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"last20-backend/internal/model"
	"last20-backend/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Seeds a handful of verified users and available expert profiles so the
// match endpoint has something to rank on a fresh database.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding Last20 demo data...")

	seedUser(db, "alice@example.com", "Alice Demo", "user", nil)

	seedExpert(db, "bob@example.com", "Bob Goroutine", expertSeed{
		Headline:    "Go backend engineer, 10y of production services",
		Bio:         "I debug goroutine leaks for fun.",
		Skills:      []string{"go", "postgresql", "docker"},
		SessionRate: 30,
		Rating:      4.8,
		RatingCount: 41,
		Sessions:    120,
		Payout:      true,
	})
	seedExpert(db, "carol@example.com", "Carol Hooks", expertSeed{
		Headline:    "React and TypeScript frontend specialist",
		Bio:         "Hooks, suspense, and the odd CSS rescue.",
		Skills:      []string{"react", "typescript", "css"},
		SessionRate: 25,
		Rating:      4.5,
		RatingCount: 28,
		Sessions:    85,
		Payout:      true,
	})
	seedExpert(db, "dave@example.com", "Dave Pipeline", expertSeed{
		Headline:    "DevOps engineer focused on CI/CD and Kubernetes",
		Bio:         "",
		Skills:      []string{"kubernetes", "docker", "aws", "terraform"},
		SessionRate: 40,
		Rating:      4.9,
		RatingCount: 12,
		Sessions:    33,
		Payout:      false,
	})

	color.Green("✅ Seeding complete.")
}

type expertSeed struct {
	Headline    string
	Bio         string
	Skills      []string
	SessionRate float64
	Rating      float64
	RatingCount int
	Sessions    int
	Payout      bool
}

func seedUser(db *gorm.DB, email, name, role string, out *model.User) {
	var existing model.User
	if err := db.Where("email = ?", email).First(&existing).Error; err == nil {
		color.Yellow("User %s already exists, skipping", email)
		if out != nil {
			*out = existing
		}
		return
	}

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	hashStr := string(hash)
	now := time.Now()

	u := model.User{
		Email:           email,
		PasswordHash:    &hashStr,
		FullName:        name,
		Role:            role,
		Status:          "active",
		EmailVerified:   true,
		EmailVerifiedAt: &now,
	}
	if err := db.Create(&u).Error; err != nil {
		log.Fatalf("Error: Failed to seed user %s: %v", email, err)
	}
	color.Green("Seeded user %s (%s)", email, role)
	if out != nil {
		*out = u
	}
}

func seedExpert(db *gorm.DB, email, name string, seed expertSeed) {
	var u model.User
	seedUser(db, email, name, "expert", &u)

	var existing model.ExpertProfile
	if err := db.Where("user_id = ?", u.Id).First(&existing).Error; err == nil {
		color.Yellow("Expert profile for %s already exists, skipping", email)
		return
	}

	skills, _ := json.Marshal(seed.Skills)
	profile := model.ExpertProfile{
		UserId:        u.Id,
		Headline:      seed.Headline,
		Bio:           seed.Bio,
		Skills:        datatypes.JSON(skills),
		SessionRate:   seed.SessionRate,
		Available:     true,
		Rating:        seed.Rating,
		RatingCount:   seed.RatingCount,
		TotalSessions: seed.Sessions,
		PayoutEnabled: seed.Payout,
	}
	if err := db.Create(&profile).Error; err != nil {
		log.Fatalf("Error: Failed to seed expert profile for %s: %v", email, err)
	}
	color.Green("Seeded expert profile for %s", email)
}
