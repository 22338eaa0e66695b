package persistence

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/progress"
)

// ProfileRow holds a profile's lifetime statistics.
type ProfileRow struct {
	Name         string `gorm:"primarykey"`
	Version      int
	Lines        int
	Tetrises     int
	GamesPlayed  int
	TimePlayed   float64
	BestScore    int
	BestCombo    int
	HighestLevel int
	UpdatedAt    time.Time
}

// UnlockRow is one unlocked achievement. Rows are insert-only.
type UnlockRow struct {
	ID            uint      `gorm:"primarykey"`
	Profile       string    `gorm:"uniqueIndex:idx_profile_achievement;not null"`
	AchievementID string    `gorm:"uniqueIndex:idx_profile_achievement;not null"`
	UnlockedAt    time.Time `gorm:"index"`
}

// SQLiteStore keeps profiles in a SQLite database through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// NewSQLiteStore opens (or creates) the database at path and migrates the
// schema. ":memory:" gives a private in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows one writer; a single connection also keeps an
	// in-memory database alive and shared.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&ProfileRow{}, &UnlockRow{}); err != nil {
		return nil, fmt.Errorf("migrating schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads a profile. An unknown profile yields an empty profile.
func (s *SQLiteStore) Load(name string) (*Profile, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	p := NewProfile(name)

	var row ProfileRow
	err := s.db.Where("name = ?", name).First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("reading profile %s: %w", name, err)
	default:
		p.Version = row.Version
		p.LastUpdated = row.UpdatedAt
		p.Lifetime = progress.LifetimeStats{
			Lines:        row.Lines,
			Tetrises:     row.Tetrises,
			GamesPlayed:  row.GamesPlayed,
			TimePlayed:   row.TimePlayed,
			BestScore:    row.BestScore,
			BestCombo:    row.BestCombo,
			HighestLevel: row.HighestLevel,
		}
	}

	var unlocks []UnlockRow
	if err := s.db.Where("profile = ?", name).Order("unlocked_at, id").Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("reading unlocks for %s: %w", name, err)
	}
	for _, u := range unlocks {
		p.Unlocks = append(p.Unlocks, achievement.UnlockEntry{ID: u.AchievementID, UnlockedAt: u.UnlockedAt})
	}
	return p, nil
}

// Save upserts the lifetime statistics and inserts any unlocks not yet
// stored, in one transaction. Stored unlocks are never rewritten.
func (s *SQLiteStore) Save(p *Profile) error {
	if err := ValidName(p.Name); err != nil {
		return err
	}
	p.Version = profileVersion
	p.LastUpdated = time.Now().UTC()

	row := ProfileRow{
		Name:         p.Name,
		Version:      p.Version,
		Lines:        p.Lifetime.Lines,
		Tetrises:     p.Lifetime.Tetrises,
		GamesPlayed:  p.Lifetime.GamesPlayed,
		TimePlayed:   p.Lifetime.TimePlayed,
		BestScore:    p.Lifetime.BestScore,
		BestCombo:    p.Lifetime.BestCombo,
		HighestLevel: p.Lifetime.HighestLevel,
		UpdatedAt:    p.LastUpdated,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&row).Error; err != nil {
			return err
		}
		if len(p.Unlocks) == 0 {
			return nil
		}
		rows := make([]UnlockRow, len(p.Unlocks))
		for i, u := range p.Unlocks {
			rows[i] = UnlockRow{Profile: p.Name, AchievementID: u.ID, UnlockedAt: u.UnlockedAt}
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("saving profile %s: %w", p.Name, err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
