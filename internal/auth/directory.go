package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"reforco-escolar/internal/models"
	"reforco-escolar/internal/util"

	"gorm.io/gorm"
)

// Directory looks identities up across the users and students tables.
type Directory struct {
	db     *gorm.DB
	hasher *util.Hasher

	dummyOnce sync.Once
	dummyHash string
}

func NewDirectory(db *gorm.DB, hasher *util.Hasher) *Directory {
	return &Directory{db: db, hasher: hasher}
}

// Authenticate finds the identity owning email and verifies password.
// Staff users are checked first; students only match when they have a password.
func (d *Directory) Authenticate(ctx context.Context, email, password string) (Identity, error) {
	email = util.NormalizeEmail(email)

	id, err := d.findByEmail(ctx, email)
	if errors.Is(err, ErrInvalidCredentials) {
		// unknown emails pay the same bcrypt cost as wrong passwords
		d.checkDummy(ctx, password)
		return Identity{}, err
	}
	if err != nil {
		return Identity{}, err
	}

	ok, err := d.hasher.Check(ctx, id.PasswordHash(), password)
	if err != nil {
		return Identity{}, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	return id, nil
}

func (d *Directory) checkDummy(ctx context.Context, password string) {
	d.dummyOnce.Do(func() {
		d.dummyHash, _ = d.hasher.Hash(context.Background(), "no-such-account")
	})
	_, _ = d.hasher.Check(ctx, d.dummyHash, password)
}

func (d *Directory) findByEmail(ctx context.Context, email string) (Identity, error) {
	db := d.db.WithContext(ctx)

	var user models.User
	err := db.Where("LOWER(email) = ?", email).First(&user).Error
	if err == nil {
		return StaffIdentity(&user), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, fmt.Errorf("find user: %w", err)
	}

	var student models.Student
	err = db.Where("LOWER(email) = ? AND password_hash <> ''", email).First(&student).Error
	if err == nil {
		return StudentIdentity(&student), nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	return Identity{}, fmt.Errorf("find student: %w", err)
}

// Resolve loads the identity a session points at.
func (d *Directory) Resolve(ctx context.Context, sess *models.Session) (Identity, error) {
	db := d.db.WithContext(ctx)

	switch {
	case sess.UserID != nil:
		var user models.User
		if err := db.First(&user, *sess.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Identity{}, ErrInvalidSession
			}
			return Identity{}, fmt.Errorf("resolve user: %w", err)
		}
		return StaffIdentity(&user), nil
	case sess.StudentID != nil:
		var student models.Student
		if err := db.First(&student, *sess.StudentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Identity{}, ErrInvalidSession
			}
			return Identity{}, fmt.Errorf("resolve student: %w", err)
		}
		return StudentIdentity(&student), nil
	default:
		return Identity{}, ErrInvalidSession
	}
}

// EmailInUse reports whether email belongs to any user or student other than
// the ones excluded. Pass zero ids to exclude nothing.
func (d *Directory) EmailInUse(ctx context.Context, email string, exceptUserID, exceptStudentID uint) (bool, error) {
	email = util.NormalizeEmail(email)
	db := d.db.WithContext(ctx)

	var n int64
	if err := db.Model(&models.User{}).
		Where("LOWER(email) = ? AND id <> ?", email, exceptUserID).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	if err := db.Model(&models.Student{}).
		Where("LOWER(email) = ? AND id <> ?", email, exceptStudentID).
		Count(&n).Error; err != nil {
		return false, fmt.Errorf("count students: %w", err)
	}
	return n > 0, nil
}
