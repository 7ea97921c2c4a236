package storage

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Windi-Fikriyansyah/storefront_be/internal/models"
)

type GormStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewGormStore(db *gorm.DB, log *zap.Logger) *GormStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Drafts() Drafts {
	return &draftRepo{be: gormDrafts{db: s.db}, log: s.log}
}

func (s *GormStore) Products() Products {
	return gormProducts{db: s.db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Repos) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, log: s.log})
	})
}

// ========= drafts =========

type gormDrafts struct {
	db *gorm.DB
}

func (g gormDrafts) get(ctx context.Context, seller uuid.UUID, key string) ([]byte, bool, error) {
	var d models.ProductDraft
	err := g.db.WithContext(ctx).
		Where("seller_id = ? AND storage_key = ?", seller, key).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(d.Fields), true, nil
}

func (g gormDrafts) put(ctx context.Context, seller uuid.UUID, key string, value []byte) error {
	d := models.ProductDraft{
		SellerID:   seller,
		StorageKey: key,
		Fields:     datatypes.JSON(value),
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}, {Name: "storage_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
		}).
		Create(&d).Error
}

func (g gormDrafts) del(ctx context.Context, seller uuid.UUID, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return g.db.WithContext(ctx).
		Where("seller_id = ? AND storage_key IN ?", seller, keys).
		Delete(&models.ProductDraft{}).Error
}

// ========= products =========

type gormProducts struct {
	db *gorm.DB
}

func (g gormProducts) NextID(ctx context.Context) (uint, error) {
	var last uint
	if err := g.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(MAX(id), 0)").
		Scan(&last).Error; err != nil {
		return 0, err
	}
	return last + 1, nil
}

func (g gormProducts) Create(ctx context.Context, p *models.Product) error {
	if err := g.db.WithContext(ctx).Create(p).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (g gormProducts) Get(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := g.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (g gormProducts) ListBySeller(ctx context.Context, seller uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	err := g.db.WithContext(ctx).
		Where("seller_id = ?", seller).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (g gormProducts) ListPublished(ctx context.Context, f ProductFilter) ([]models.Product, int64, error) {
	f = f.normalized()

	filtered := func(db *gorm.DB) *gorm.DB {
		db = db.Where("status = ?", models.ProductStatusPublished)
		if f.Query != "" {
			db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Query)+"%")
		}
		if f.Category != "" {
			db = db.Where("category = ?", f.Category)
		}
		if f.MinPrice > 0 {
			db = db.Where("price >= ?", f.MinPrice)
		}
		if f.MaxPrice > 0 {
			db = db.Where("price <= ?", f.MaxPrice)
		}
		return db
	}

	var total int64
	if err := g.db.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(filtered).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := g.db.WithContext(ctx).Model(&models.Product{}).Scopes(filtered)
	switch f.Sort {
	case SortPriceLow:
		q = q.Order("price ASC")
	case SortPriceHigh:
		q = q.Order("price DESC")
	default:
		q = q.Order("created_at DESC").Order("id DESC")
	}

	var out []models.Product
	if err := q.Limit(f.Limit).Offset(f.offset()).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (g gormProducts) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := g.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("status = ?", models.ProductStatusPublished).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error
	return categories, err
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "unique constraint")
}
