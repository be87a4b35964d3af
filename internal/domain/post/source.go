// internal/domain/post/source.go

package post

import (
	"context"
)

// Source defines the interface for fetching competitor post records
type Source interface {
	// Platform returns the name of the platform this source reads from
	Platform() string

	// FetchPosts returns up to limit recent raw post records for a competitor handle
	FetchPosts(ctx context.Context, handle string, limit int) ([]RawRecord, error)
}

// Discoverer defines the interface for finding candidate competitor handles
type Discoverer interface {
	// DiscoverCompetitors returns up to limit competitor handles related to the seed account
	DiscoverCompetitors(ctx context.Context, seedHandle string, limit int) ([]string, error)
}
