// Package testutil builds throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"testing"

	"reforco-escolar/internal/config"
	"reforco-escolar/internal/database"
	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password is the plain-text password of every fixture identity.
const Password = "secret123"

// NewDB returns a migrated in-memory SQLite database closed at test end.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Init(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("init test db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() {
		if err := database.Close(db); err != nil {
			t.Logf("close test db: %v", err)
		}
	})
	return db
}

// NewHasher returns a fast hasher for tests.
func NewHasher() *util.Hasher {
	return util.NewHasher(bcrypt.MinCost, 4)
}

func hash(t *testing.T, h *util.Hasher) string {
	t.Helper()
	s, err := h.Hash(context.Background(), Password)
	if err != nil {
		t.Fatalf("hash fixture password: %v", err)
	}
	return s
}

// CreateUser inserts a staff user with Password.
func CreateUser(t *testing.T, db *gorm.DB, h *util.Hasher, email, role string) *models.User {
	t.Helper()
	u := &models.User{
		Name:         email,
		Email:        email,
		PasswordHash: hash(t, h),
		Role:         role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

// CreateStudent inserts a student owned by teacherID. A non-empty email also
// gets Password so the student can log in.
func CreateStudent(t *testing.T, db *gorm.DB, h *util.Hasher, name, email string, teacherID uint) *models.Student {
	t.Helper()
	s := &models.Student{Name: name, TeacherID: teacherID, Active: true}
	if email != "" {
		s.Email = &email
		s.PasswordHash = hash(t, h)
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("create student %s: %v", name, err)
	}
	return s
}
