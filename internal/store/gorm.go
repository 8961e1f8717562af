package store

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-assistant/backend/internal/model"
)

// Gorm stores entries in the kv_entries table of a SQLite or Postgres database.
type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an already migrated gorm handle.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (g *Gorm) Get(ctx context.Context, key string) (string, bool, error) {
	var entry model.KVEntry
	err := g.db.WithContext(ctx).First(&entry, "namespace_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, pkgerrors.Wrapf(err, "get %s", key)
	}
	return entry.Value, true, nil
}

func (g *Gorm) Set(ctx context.Context, key, value string) error {
	entry := model.KVEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "namespace_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	return pkgerrors.Wrapf(err, "set %s", key)
}

func (g *Gorm) Delete(ctx context.Context, key string) error {
	err := g.db.WithContext(ctx).Delete(&model.KVEntry{}, "namespace_key = ?", key).Error
	return pkgerrors.Wrapf(err, "delete %s", key)
}
