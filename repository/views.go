package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/yatube/models"
)

type gormViewRepository struct {
	db *gorm.DB
}

// Increment bumps the counter for postID on the calendar day of day.
func (r *gormViewRepository) Increment(ctx context.Context, postID uint, day time.Time) error {
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	// Atomic upsert to avoid duplicate key errors under concurrency
	return r.db.WithContext(ctx).
		Omit("Post").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "post_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"count": gorm.Expr("post_views.count + 1"), "updated_at": time.Now()}),
		}).
		Create(&models.PostView{Date: midnight, PostID: postID, Count: 1}).Error
}

func (r *gormViewRepository) Total(ctx context.Context, postID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.PostView{}).
		Where("post_id = ?", postID).
		Select("COALESCE(SUM(count), 0)").
		Scan(&total).Error
	return total, err
}
