package database

import (
	"strings"

	"gorm.io/gorm"
)

// likeEscaper escapes LIKE wildcards with '!', which every supported driver
// accepts as an ESCAPE character without string-literal quirks.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// OwnedBy restricts a query to rows owned by ownerID.
func OwnedBy(ownerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}
}

// WithStatus filters by exact status. An empty value is no constraint.
func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// WithPriority filters by exact priority. An empty value is no constraint.
func WithPriority(priority string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if priority == "" {
			return db
		}
		return db.Where("priority = ?", priority)
	}
}

// TitleContains filters titles containing search. Collation decides case
// sensitivity here, so callers needing an exact match must re-check.
func TitleContains(search string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		return db.Where("title LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(search)+"%")
	}
}
