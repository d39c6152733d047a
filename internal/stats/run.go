// Package stats is the statistics sink of SPEC_FULL.md's supplemented
// feature 1: it persists one record per solved query (verdict, wall
// time, pivot/split/restoration counters) via gorm, and flushes a
// periodic summary on a robfig/cron schedule. Grounded on the
// teacher's gorm model conventions (uuid.UUID primary key generated in
// BeforeCreate, explicit TableName) from its identify/auth domain
// models, generalized from an auth/token record to a solver run
// record.
package stats

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run is one persisted solver invocation.
type Run struct {
	ID                       uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	QueryPath                string    `gorm:"type:varchar(500);index" json:"query_path"`
	Verdict                  string    `gorm:"type:varchar(32);not null" json:"verdict"`
	WallTimeMillis           int64     `gorm:"not null" json:"wall_time_millis"`
	NumSimplexPivots         int       `json:"num_simplex_pivots"`
	NumVisitedTreeStates     int       `json:"num_visited_tree_states"`
	NumTableauPivots         int       `json:"num_tableau_pivots"`
	MaxDegradation           float64   `json:"max_degradation"`
	NumPrecisionRestorations int       `json:"num_precision_restorations"`
	CreatedAt                time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName pins the table name independent of struct renames.
func (Run) TableName() string { return "solver_runs" }

// BeforeCreate generates a UUID for new records, matching the
// teacher's gorm model hook pattern.
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
