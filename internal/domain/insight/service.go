// internal/domain/insight/service.go

package insight

import (
	"context"

	"reelscope/internal/domain/post"
)

// Analyzer defines the interface for the pattern extraction engine
type Analyzer interface {
	// Analyze turns per-competitor raw records into a cross-competitor aggregate
	Analyze(ctx context.Context, opts RunOptions, records map[string][]post.RawRecord) (*Aggregate, error)
}

// Formatter defines the interface for shaping aggregates into output structures
type Formatter interface {
	// BuildPayload assembles the prompt payload for the generative-model client
	BuildPayload(agg *Aggregate) (*PromptPayload, error)

	// BuildDocument assembles the serialized result document for a run
	BuildDocument(agg *Aggregate) ResultDocument
}

// Generator defines the interface for producing content ideas from a payload
type Generator interface {
	// Generate returns content ideas for the payload, falling back to a static
	// set when the generative model is unavailable or returns garbage
	Generate(ctx context.Context, payload PromptPayload) (*ContentIdeas, error)
}

// Coordinator defines the interface for managing analysis runs end to end
type Coordinator interface {
	// StartRun validates options, records a new run, and executes it asynchronously
	StartRun(ctx context.Context, opts RunOptions) (*Run, error)

	// GetRun returns a run by ID
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns recent runs, newest first
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// GetResult returns the result document of a completed run
	GetResult(ctx context.Context, id string) (*ResultDocument, error)

	// Stop waits for in-flight runs to finish
	Stop(ctx context.Context) error
}
