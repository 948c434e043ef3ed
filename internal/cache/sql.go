package cache

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/utilbot/juxtapose/pkg/errorcode"
	"github.com/utilbot/juxtapose/pkg/models/juxtapose"
)

// resolvedEntry is the table row for one cached resolution.
type resolvedEntry struct {
	D               string `gorm:"primaryKey;type:varchar(768)"`
	LeftImageURL    string `gorm:"type:varchar(2048)"`
	RightImageURL   string `gorm:"type:varchar(2048)"`
	LeftImageLabel  string `gorm:"type:varchar(256)"`
	RightImageLabel string `gorm:"type:varchar(256)"`
	ExpiresAt       time.Time
}

func (resolvedEntry) TableName() string {
	return "resolved_comparisons"
}

// A SQLResolveCache is a ResolveCache backed by a SQL database through GORM.
type SQLResolveCache struct {
	DB  *gorm.DB
	TTL time.Duration
}

// NewSQLResolveCache opens the MySQL database at `dsn` and migrates the cache
// table.
func NewSQLResolveCache(dsn string, ttl time.Duration) (*SQLResolveCache, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to the resolve cache database")
	}

	if err := db.AutoMigrate(&resolvedEntry{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate the resolve cache table")
	}

	return &SQLResolveCache{DB: db, TTL: ttl}, nil
}

// Get implements ResolveCache. Expired rows read as misses.
func (c *SQLResolveCache) Get(ctx context.Context, d string) (*juxtapose.ResolvedComparison, error) {
	var entry resolvedEntry
	dbResult := c.DB.WithContext(ctx).Where("d = ?", d).Take(&entry)
	if dbResult.Error != nil {
		if errors.Is(dbResult.Error, gorm.ErrRecordNotFound) {
			return nil, errorcode.ErrorNotFound
		}

		return nil, errors.Wrap(dbResult.Error, "failed to read from the resolve cache")
	}

	if isExpired(&entry, time.Now()) {
		return nil, errorcode.ErrorNotFound
	}

	return &juxtapose.ResolvedComparison{
		LeftImageURL:    entry.LeftImageURL,
		RightImageURL:   entry.RightImageURL,
		LeftImageLabel:  entry.LeftImageLabel,
		RightImageLabel: entry.RightImageLabel,
	}, nil
}

// Put implements ResolveCache with an upsert so re-resolutions refresh the
// expiry.
func (c *SQLResolveCache) Put(ctx context.Context, d string, resolved *juxtapose.ResolvedComparison) error {
	entry := resolvedEntry{
		D:               d,
		LeftImageURL:    resolved.LeftImageURL,
		RightImageURL:   resolved.RightImageURL,
		LeftImageLabel:  resolved.LeftImageLabel,
		RightImageLabel: resolved.RightImageLabel,
		ExpiresAt:       time.Now().Add(c.TTL),
	}

	dbResult := c.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "d"}},
		UpdateAll: true,
	}).Create(&entry)
	if dbResult.Error != nil {
		return errors.Wrap(dbResult.Error, "failed to write to the resolve cache")
	}

	return nil
}

func isExpired(entry *resolvedEntry, now time.Time) bool {
	return !entry.ExpiresAt.After(now)
}
