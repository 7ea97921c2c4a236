package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

type Users interface {
	// Create fails with ErrConflict when the email or phone is taken.
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Rename(ctx context.Context, id uuid.UUID, name string) error
}

// ========= gorm =========

type gormUsers struct {
	db *gorm.DB
}

func (s *GormStore) Users() Users {
	return gormUsers{db: s.db}
}

func (g gormUsers) Create(ctx context.Context, u *models.User) error {
	if err := g.db.WithContext(ctx).Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (g gormUsers) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return g.first(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (g gormUsers) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return g.first(ctx, "id = ?", id)
}

func (g gormUsers) first(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (g gormUsers) Rename(ctx context.Context, id uuid.UUID, name string) error {
	res := g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ========= memory =========

type memUsers struct {
	s *MemoryStore
}

func (s *MemoryStore) Users() Users {
	return memUsers{s}
}

func (m memUsers) Create(ctx context.Context, u *models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.s.lock()
	defer unlock()
	for _, other := range m.s.st.users {
		if other.Email == u.Email || (u.Phone != nil && other.Phone != nil && *other.Phone == *u.Phone) {
			return ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.s.st.users[u.ID] = *u
	return nil
}

func (m memUsers) ByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	unlock := m.s.lock()
	defer unlock()
	for _, u := range m.s.st.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m memUsers) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := m.s.lock()
	defer unlock()
	u, ok := m.s.st.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m memUsers) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := m.s.lock()
	defer unlock()
	u, ok := m.s.st.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	m.s.st.users[id] = u
	return nil
}
