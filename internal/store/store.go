// Package store persists finished match reports in a SQLite database through
// GORM, using the pure-Go glebarez driver.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Garsondee/Crater/internal/sim"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MatchResult is one stored match.
type MatchResult struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index:idx_result_created"`
	Seed        int64     `json:"seed" gorm:"index:idx_result_seed"`
	Ticks       int       `json:"ticks"`
	Seconds     float64   `json:"seconds"`
	Finished    bool      `json:"finished"`
	Outcome     string    `json:"outcome" gorm:"size:16"`
	Winner      string    `json:"winner" gorm:"size:16;index:idx_result_winner"`
	Description string    `json:"description" gorm:"size:64"`
	Turns       int       `json:"turns"`
	Shots       int       `json:"shots"`
	Explosions  int       `json:"explosions"`
	Bounces     int       `json:"bounces"`
	Jumps       int       `json:"jumps"`
	Deaths      int       `json:"deaths"`

	Teams []TeamResult `json:"teams" gorm:"foreignKey:MatchID;constraint:OnDelete:CASCADE"`
}

// TeamResult is one side's tally within a stored match.
type TeamResult struct {
	ID        uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	MatchID   string `json:"matchId" gorm:"size:36;index:idx_team_match"`
	Team      string `json:"team" gorm:"size:16"`
	Total     int    `json:"total"`
	Survivors int    `json:"survivors"`
	Health    int    `json:"health"`
	Dealt     int    `json:"dealt"`
	Taken     int    `json:"taken"`
}

// FromReport flattens a match report into a storable row. The ID is left
// empty; SaveResult assigns one.
func FromReport(r sim.MatchReport) MatchResult {
	res := MatchResult{
		Seed:        r.Seed,
		Ticks:       r.Ticks,
		Seconds:     r.Seconds,
		Finished:    r.Finished,
		Outcome:     r.Outcome.Outcome.String(),
		Winner:      r.WinnerName(),
		Description: r.Outcome.Description,
		Turns:       r.Turns,
		Shots:       r.Shots,
		Explosions:  r.Explosions,
		Bounces:     r.Bounces,
		Jumps:       r.Jumps,
		Deaths:      r.Deaths,
	}
	for _, t := range r.Outcome.Teams {
		res.Teams = append(res.Teams, TeamResult{
			Team:      t.Team.String(),
			Total:     t.Total,
			Survivors: t.Survivors,
			Health:    t.Health,
			Dealt:     r.Dealt[t.Team],
			Taken:     r.Taken[t.Team],
		})
	}
	return res
}

// Store is an open result database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at path and migrates the
// schema. An empty path opens a private in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open result database %q: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// every connection to ":memory:" would otherwise see its own database
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := db.AutoMigrate(&MatchResult{}, &TeamResult{}); err != nil {
		return nil, fmt.Errorf("failed to migrate result schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// SaveResult stores the report with its team rows and returns the new ID.
func (s *Store) SaveResult(ctx context.Context, r sim.MatchReport) (string, error) {
	res := FromReport(r)
	res.ID = uuid.NewString()
	for i := range res.Teams {
		res.Teams[i].MatchID = res.ID
	}
	if err := s.db.WithContext(ctx).Create(&res).Error; err != nil {
		return "", fmt.Errorf("failed to save match result: %w", err)
	}
	return res.ID, nil
}

func withTeams(db *gorm.DB) *gorm.DB {
	return db.Preload("Teams", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("id")
	})
}

// Results returns every stored match, oldest first, with team rows loaded.
func (s *Store) Results(ctx context.Context) ([]MatchResult, error) {
	var out []MatchResult
	err := withTeams(s.db.WithContext(ctx)).
		Order("created_at").
		Order("seed").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load match results: %w", err)
	}
	return out, nil
}

// Result loads a single match by ID.
func (s *Store) Result(ctx context.Context, id string) (MatchResult, error) {
	var out MatchResult
	err := withTeams(s.db.WithContext(ctx)).
		First(&out, "id = ?", id).Error
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to load match result %s: %w", id, err)
	}
	return out, nil
}

// WinCounts tallies stored matches by winner name ("red", "draw", "none").
func (s *Store) WinCounts(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Winner string
		N      int
	}
	err := s.db.WithContext(ctx).
		Model(&MatchResult{}).
		Select("winner, count(*) AS n").
		Group("winner").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count wins: %w", err)
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Winner] = r.N
	}
	return out, nil
}
