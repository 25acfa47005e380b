package documents

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// mergeableColumns whitelists the document fields callers may merge
// independently of the cart snapshot.
var mergeableColumns = map[string]struct{}{
	"email":               {},
	"username":            {},
	"role":                {},
	"track_design_active": {},
	"design_progress":     {},
	"payment_status":      {},
	"design_duration":     {},
	"payment_method":      {},
}

// Repository encapsulates user document persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a documents repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get fetches the document for a user.
func (r *Repository) Get(ctx context.Context, userID string) (*models.UserDocument, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	var doc models.UserDocument
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user document not found")
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetOrCreate fetches the document for a user, creating an empty one on the
// first touch. Concurrent first touches collapse onto the existing row.
func (r *Repository) GetOrCreate(ctx context.Context, userID, email, username string) (*models.UserDocument, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	doc := models.UserDocument{
		UserID:      userID,
		Email:       email,
		Username:    username,
		Cart:        types.CartSnapshot{},
		LastUpdated: time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&doc).Error
	if err != nil {
		return nil, err
	}

	return r.Get(ctx, userID)
}

// MergeFields updates the named columns on the user document without touching
// the cart snapshot, mirroring a set-with-merge write. Unknown columns are
// rejected. The row is created when missing.
func (r *Repository) MergeFields(ctx context.Context, userID string, fields map[string]any) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if len(fields) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "no fields to merge")
	}
	for column := range fields {
		if _, ok := mergeableColumns[column]; !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "field cannot be merged: "+column)
		}
	}

	updates := make(map[string]any, len(fields)+1)
	for column, value := range fields {
		updates[column] = value
	}
	updates["last_updated"] = time.Now().UTC()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserDocument{}).
			Where("user_id = ?", userID).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		doc := models.UserDocument{
			UserID:      userID,
			Cart:        types.CartSnapshot{},
			LastUpdated: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&doc).Error; err != nil {
			return err
		}
		return tx.Model(&models.UserDocument{}).
			Where("user_id = ?", userID).
			Updates(updates).Error
	})
}

// MergeCartSnapshot overwrites the cart column wholesale when the incoming
// version is newer than the stored one. Stale snapshots are dropped and
// reported via the applied flag, never an error.
func (r *Repository) MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (applied bool, err error) {
	if userID == "" {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if cart == nil {
		cart = types.CartSnapshot{}
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.UserDocument{}).
			Where("user_id = ? AND cart_version < ?", userID, version).
			Select("cart", "cart_version", "last_updated").
			Updates(models.UserDocument{
				Cart:        cart,
				CartVersion: version,
				LastUpdated: time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			applied = true
			return nil
		}

		var count int64
		if err := tx.Model(&models.UserDocument{}).
			Where("user_id = ?", userID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			// Row exists with an equal or newer version.
			return nil
		}

		doc := models.UserDocument{
			UserID:      userID,
			Cart:        cart,
			CartVersion: version,
			LastUpdated: time.Now().UTC(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&doc).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// ListTracked returns every document with an active design session, newest
// activity first.
func (r *Repository) ListTracked(ctx context.Context) ([]models.UserDocument, error) {
	var docs []models.UserDocument
	err := r.db.WithContext(ctx).
		Where("track_design_active = ?", true).
		Order("last_updated DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// List returns every document, newest activity first.
func (r *Repository) List(ctx context.Context) ([]models.UserDocument, error) {
	var docs []models.UserDocument
	err := r.db.WithContext(ctx).
		Order("last_updated DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}
