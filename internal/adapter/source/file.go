// internal/adapter/source/file.go

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"reelscope/internal/domain/post"
)

// fileFixture is the on-disk shape a FileSource reads
type fileFixture struct {
	Platform    string                      `json:"platform"`
	Competitors map[string][]post.RawRecord `json:"competitors"`
}

// FileSource serves posts from a JSON fixture file. It backs local runs and
// demos when no platform credentials are configured.
type FileSource struct {
	platform    string
	competitors map[string][]post.RawRecord
}

// NewFileSource loads a fixture file into memory
func NewFileSource(path string) (*FileSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading sample data: %w", err)
	}

	var fixture fileFixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("error parsing sample data: %w", err)
	}

	platform := fixture.Platform
	if platform == "" {
		platform = "sample"
	}

	competitors := make(map[string][]post.RawRecord, len(fixture.Competitors))
	for handle, records := range fixture.Competitors {
		competitors[strings.ToLower(strings.TrimPrefix(handle, "@"))] = records
	}

	return &FileSource{
		platform:    platform,
		competitors: competitors,
	}, nil
}

// Platform identifies the platform recorded in the fixture
func (s *FileSource) Platform() string {
	return s.platform
}

// FetchPosts returns up to limit records for a handle from the fixture
func (s *FileSource) FetchPosts(_ context.Context, handle string, limit int) ([]post.RawRecord, error) {
	records, ok := s.competitors[strings.ToLower(strings.TrimPrefix(handle, "@"))]
	if !ok {
		return nil, fmt.Errorf("no sample data for %s", handle)
	}

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	out := make([]post.RawRecord, len(records))
	copy(out, records)
	return out, nil
}

// Handles returns every competitor in the fixture, sorted
func (s *FileSource) Handles() []string {
	handles := make([]string, 0, len(s.competitors))
	for handle := range s.competitors {
		handles = append(handles, handle)
	}
	sort.Strings(handles)
	return handles
}

// DiscoverCompetitors returns the fixture's other competitors
func (s *FileSource) DiscoverCompetitors(_ context.Context, seedHandle string, limit int) ([]string, error) {
	seed := strings.ToLower(strings.TrimPrefix(seedHandle, "@"))

	var handles []string
	for _, handle := range s.Handles() {
		if handle == seed {
			continue
		}
		handles = append(handles, handle)
		if limit > 0 && len(handles) >= limit {
			break
		}
	}

	return handles, nil
}
