package auth

import (
	"context"
	"errors"
	"testing"

	"reforco-escolar/internal/models"
	"reforco-escolar/internal/testutil"
)

func TestAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	h := testutil.NewHasher()
	teacher := testutil.CreateUser(t, db, h, "Prof@Example.com", models.RoleTeacher)
	student := testutil.CreateStudent(t, db, h, "Ana", "ana@example.com", teacher.ID)
	testutil.CreateStudent(t, db, h, "Sem Senha", "", teacher.ID)
	dir := NewDirectory(db, h)
	ctx := context.Background()

	t.Run("staff", func(t *testing.T) {
		id, err := dir.Authenticate(ctx, "prof@example.com", testutil.Password)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if id.Kind != KindStaff || id.Role != RoleTeacher || id.ID != teacher.ID {
			t.Errorf("identity = %+v, want teacher %d", id, teacher.ID)
		}
	})

	t.Run("student role is derived", func(t *testing.T) {
		id, err := dir.Authenticate(ctx, "  ANA@example.com ", testutil.Password)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if id.Role != RoleStudent || !id.IsStudent() || id.ID != student.ID {
			t.Errorf("identity = %+v, want student %d with role STUDENT", id, student.ID)
		}
		if id.Profile().Role != RoleStudent {
			t.Errorf("Profile().Role = %q, want STUDENT", id.Profile().Role)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := dir.Authenticate(ctx, "ana@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		if _, err := dir.Authenticate(ctx, "nobody@example.com", testutil.Password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidCredentials", err)
		}
		if dir.dummyHash == "" {
			t.Error("unknown email skipped the bcrypt comparison")
		}
	})
}

func TestResolve(t *testing.T) {
	db := testutil.NewDB(t)
	h := testutil.NewHasher()
	teacher := testutil.CreateUser(t, db, h, "prof@example.com", models.RoleTeacher)
	student := testutil.CreateStudent(t, db, h, "Ana", "ana@example.com", teacher.ID)
	dir := NewDirectory(db, h)
	ctx := context.Background()

	id, err := dir.Resolve(ctx, &models.Session{UserID: &teacher.ID})
	if err != nil || id.Role != RoleTeacher {
		t.Errorf("Resolve(user) = %+v, %v; want teacher", id, err)
	}

	id, err = dir.Resolve(ctx, &models.Session{StudentID: &student.ID})
	if err != nil || id.Role != RoleStudent {
		t.Errorf("Resolve(student) = %+v, %v; want student", id, err)
	}

	if _, err := dir.Resolve(ctx, &models.Session{}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Resolve(no owner) error = %v, want ErrInvalidSession", err)
	}

	missing := uint(4242)
	if _, err := dir.Resolve(ctx, &models.Session{UserID: &missing}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Resolve(missing user) error = %v, want ErrInvalidSession", err)
	}
}

func TestEmailInUse(t *testing.T) {
	db := testutil.NewDB(t)
	h := testutil.NewHasher()
	teacher := testutil.CreateUser(t, db, h, "prof@example.com", models.RoleTeacher)
	student := testutil.CreateStudent(t, db, h, "Ana", "ana@example.com", teacher.ID)
	dir := NewDirectory(db, h)
	ctx := context.Background()

	tests := []struct {
		name          string
		email         string
		exceptUser    uint
		exceptStudent uint
		want          bool
	}{
		{"staff email", "PROF@example.com", 0, 0, true},
		{"student email", "ana@example.com", 0, 0, true},
		{"free email", "free@example.com", 0, 0, false},
		{"own staff email", "prof@example.com", teacher.ID, 0, false},
		{"own student email", "ana@example.com", 0, student.ID, false},
		{"student taking staff email", "prof@example.com", 0, student.ID, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dir.EmailInUse(ctx, tt.email, tt.exceptUser, tt.exceptStudent)
			if err != nil {
				t.Fatalf("EmailInUse() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("EmailInUse(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
