package auth

import (
	"errors"
	"fmt"

	"reforco-escolar/internal/models"

	"gorm.io/gorm"
)

// ScopeKind selects which rows a caller may touch.
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeOwnedByTeacher
	ScopeOwnedByStudent
	ScopeNone
)

// Scope is computed once per request from the identity and applied both to
// list queries (before counting) and to single-resource checks.
type Scope struct {
	Kind    ScopeKind
	OwnerID uint
}

// ScopeFor derives the scope of an identity.
func ScopeFor(id Identity) Scope {
	switch {
	case id.IsStudent():
		return Scope{Kind: ScopeOwnedByStudent, OwnerID: id.ID}
	case id.IsAdmin():
		return Scope{Kind: ScopeAll}
	case id.IsTeacher():
		return Scope{Kind: ScopeOwnedByTeacher, OwnerID: id.ID}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// Students filters the students table.
func (s Scope) Students() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s.Kind {
		case ScopeAll:
			return db
		case ScopeOwnedByTeacher:
			return db.Where("students.teacher_id = ?", s.OwnerID)
		case ScopeOwnedByStudent:
			return db.Where("students.id = ?", s.OwnerID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// StudentOwned filters a table that has a student_id column
// (tutorings, payments, evaluations).
func (s Scope) StudentOwned(table string) func(*gorm.DB) *gorm.DB {
	col := table + ".student_id"
	return func(db *gorm.DB) *gorm.DB {
		switch s.Kind {
		case ScopeAll:
			return db
		case ScopeOwnedByTeacher:
			return db.Where(col+" IN (?)",
				db.Session(&gorm.Session{NewDB: true}).
					Model(&models.Student{}).
					Select("id").
					Where("teacher_id = ?", s.OwnerID))
		case ScopeOwnedByStudent:
			return db.Where(col+" = ?", s.OwnerID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// Materials filters the inventory. Teachers see their own items and shared
// stock; students see nothing.
func (s Scope) Materials() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch s.Kind {
		case ScopeAll:
			return db
		case ScopeOwnedByTeacher:
			return db.Where("(materials.teacher_id = ? OR materials.teacher_id IS NULL)", s.OwnerID)
		default:
			return db.Where("1 = 0")
		}
	}
}

// AuthorizeStudent checks that student is within the scope.
func (s Scope) AuthorizeStudent(st *models.Student) error {
	switch s.Kind {
	case ScopeAll:
		return nil
	case ScopeOwnedByTeacher:
		if st.TeacherID == s.OwnerID {
			return nil
		}
	case ScopeOwnedByStudent:
		if st.ID == s.OwnerID {
			return nil
		}
	}
	return ErrForbidden
}

// AuthorizeMaterial checks access to one material. Teachers may read shared
// stock but only modify their own items.
func (s Scope) AuthorizeMaterial(m *models.Material, write bool) error {
	switch s.Kind {
	case ScopeAll:
		return nil
	case ScopeOwnedByTeacher:
		if m.TeacherID != nil && *m.TeacherID == s.OwnerID {
			return nil
		}
		if m.TeacherID == nil && !write {
			return nil
		}
	}
	return ErrForbidden
}

// FindScoped loads the row with the given id into dest, applying filter.
// A row hidden by the filter yields ErrForbidden; a missing row yields
// "<what> not found" wrapping ErrNotFound.
func FindScoped(db *gorm.DB, dest interface{}, id uint, filter func(*gorm.DB) *gorm.DB, what string, preloads ...string) error {
	db = db.Session(&gorm.Session{})

	q := db.Scopes(filter)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.First(dest, id).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find %s: %w", what, err)
	}

	var n int64
	if err := db.Model(dest).Where("id = ?", id).Count(&n).Error; err != nil {
		return fmt.Errorf("count %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return ErrForbidden
}
