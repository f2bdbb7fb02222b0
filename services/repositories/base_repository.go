package repositories

import "gorm.io/gorm"

// BaseRepository carries the shared gorm handle. Concrete repositories embed
// it by value and issue their queries through the embedded connection, so a
// single handle serves every repository built from it.
type BaseRepository struct {
	db *gorm.DB
}

func NewBaseRepository(db *gorm.DB) BaseRepository {
	return BaseRepository{db: db}
}

func (r *BaseRepository) DB() *gorm.DB {
	return r.db
}
