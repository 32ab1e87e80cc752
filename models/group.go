package models

// Group is a themed community posts can optionally belong to.
type Group struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Title       *string `gorm:"size:200" json:"title"`
	Slug        string  `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Description string  `gorm:"size:200" json:"description"`
}

// String returns the title, or the slug for an untitled group.
func (g Group) String() string {
	if g.Title != nil {
		return *g.Title
	}
	return g.Slug
}
