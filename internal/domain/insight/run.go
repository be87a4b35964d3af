// internal/domain/insight/run.go

package insight

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// RunStatus represents the lifecycle state of an analysis run
type RunStatus string

const (
	RunQueued    RunStatus = "queued"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// RunOptions are the per-run settings accepted at the input boundary
type RunOptions struct {
	CompetitorUsernames     []string `json:"competitor_usernames"`
	AutoDiscoverCompetitors bool     `json:"auto_discover_competitors"`
	SeedUsername            string   `json:"seed_username,omitempty"`
	MinCompetitors          int      `json:"min_competitors"`
	ReelsPerCompetitor      int      `json:"reels_per_competitor"`
	GenerateIdeas           bool     `json:"generate_ideas"`
}

// WithDefaults returns a copy with unset numeric options filled in
func (o RunOptions) WithDefaults() RunOptions {
	if o.MinCompetitors == 0 {
		o.MinCompetitors = 3
	}
	if o.ReelsPerCompetitor == 0 {
		o.ReelsPerCompetitor = 20
	}
	if o.SeedUsername == "" && len(o.CompetitorUsernames) > 0 {
		o.SeedUsername = o.CompetitorUsernames[0]
	}
	return o
}

// Validate checks the options before any processing starts. A failure here is
// fatal for the run.
func (o RunOptions) Validate() error {
	if o.ReelsPerCompetitor < 1 {
		return fmt.Errorf("%w: reels_per_competitor must be at least 1", ErrInvalidOptions)
	}
	if o.MinCompetitors < 1 {
		return fmt.Errorf("%w: min_competitors must be at least 1", ErrInvalidOptions)
	}
	if len(o.CompetitorUsernames) == 0 && !o.AutoDiscoverCompetitors {
		return fmt.Errorf("%w: competitor_usernames is empty and auto discovery is disabled", ErrInvalidOptions)
	}
	if len(o.CompetitorUsernames) == 0 && o.AutoDiscoverCompetitors && o.SeedUsername == "" {
		return fmt.Errorf("%w: auto discovery requires a seed_username when no competitors are listed", ErrInvalidOptions)
	}
	for _, handle := range o.CompetitorUsernames {
		if strings.TrimSpace(handle) == "" {
			return fmt.Errorf("%w: competitor_usernames contains an empty handle", ErrInvalidOptions)
		}
	}
	return nil
}

// Run tracks one analysis invocation from request to result
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	Options     RunOptions `json:"options"`
	Platform    string     `json:"platform,omitempty"`
	Competitors []string   `json:"competitors,omitempty"`
	TotalReels  int        `json:"total_reels,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Common errors
var (
	ErrInvalidOptions    = errors.New("invalid run options")
	ErrRunNotFound       = errors.New("run not found")
	ErrResultNotFound    = errors.New("result not found")
	ErrIncompletePayload = errors.New("incomplete prompt payload")
)
