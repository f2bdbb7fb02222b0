package repositories

import (
	"errors"

	"github.com/biolink-hub/biolink_api/model"
	"gorm.io/gorm"
)

var ErrNotOwned = errors.New("row not found for owner")

// ContentRepository covers the eight block types. Every read or write against
// a specific row carries the owner in the WHERE clause; nothing in this layer
// fetches a row first and checks ownership afterwards.
type ContentRepository struct {
	BaseRepository
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *ContentRepository) Create(block interface{}) error {
	return r.db.Create(block).Error
}

// ListScoped fills dest with the owner's rows ordered by position.
func (r *ContentRepository) ListScoped(dest interface{}, ownerID string) error {
	return r.db.Where("user_id = ?", ownerID).
		Order("position asc, created_at asc").
		Find(dest).Error
}

// DeleteScoped removes a single row owned by ownerID. A foreign or missing id
// affects zero rows and returns ErrNotOwned.
func (r *ContentRepository) DeleteScoped(modelPtr interface{}, id, ownerID string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(modelPtr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotOwned
	}
	return nil
}

// UpdateScoped applies field updates to a single owned row.
func (r *ContentRepository) UpdateScoped(modelPtr interface{}, id, ownerID string, fields map[string]interface{}) error {
	res := r.db.Model(modelPtr).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotOwned
	}
	return nil
}

// NextPosition returns one past the owner's current maximum position so new
// blocks append to the end of the page.
func (r *ContentRepository) NextPosition(modelPtr interface{}, ownerID string) (int, error) {
	var max *int
	err := r.db.Model(modelPtr).
		Where("user_id = ?", ownerID).
		Select("MAX(position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

// GetLink loads a link without owner scoping; used by the public click-through
// redirect where the visitor is not the owner.
func (r *ContentRepository) GetLink(id string) (*model.Link, error) {
	var link model.Link
	err := r.db.Where("id = ?", id).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ContentRepository) GetLinkScoped(id, ownerID string) (*model.Link, error) {
	var link model.Link
	err := r.db.Where("id = ? AND user_id = ?", id, ownerID).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &link, nil
}
