package database

import (
	"context"
	"errors"
	"fmt"

	"reforco-escolar/internal/models"

	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "123456"

// PasswordHasher is the subset of util.Hasher needed for seeding.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
}

var demoUsers = []models.User{
	{Name: "Administrador", Email: "admin@reforcoescolar.com", Role: models.RoleAdmin, CompanyName: "Reforço Escolar"},
	{Name: "Professor Demo", Email: "professor@reforcoescolar.com", Role: models.RoleTeacher},
}

// SeedDemo creates the demo staff accounts that do not exist yet.
func SeedDemo(ctx context.Context, db *gorm.DB, hasher PasswordHasher) error {
	for _, u := range demoUsers {
		var existing models.User
		err := db.WithContext(ctx).Where("email = ?", u.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("seed lookup %s: %w", u.Email, err)
		}

		hash, err := hasher.Hash(ctx, DemoPassword)
		if err != nil {
			return fmt.Errorf("seed hash: %w", err)
		}
		user := u
		user.PasswordHash = hash
		if err := db.WithContext(ctx).Create(&user).Error; err != nil {
			return fmt.Errorf("seed create %s: %w", u.Email, err)
		}
	}
	return nil
}
