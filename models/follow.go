package models

// Follow is a directed edge: User follows Author.
type Follow struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	UserID   uint `gorm:"not null;uniqueIndex:idx_follow_user_author" json:"user_id"`
	AuthorID uint `gorm:"not null;index;uniqueIndex:idx_follow_user_author" json:"author_id"`
	User     User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"-"`
	Author   User `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;" json:"-"`
}
