package formatter

import (
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/marquee/internal/shared"
)

// ExportResult is the outcome of exporting one collection.
type ExportResult struct {
	CollectionID   string
	CollectionName string
	Success        bool
	Files          []string
	Error          error
}

// BulkExportResult summarizes a bulk export run.
type BulkExportResult struct {
	OwnerID           string
	TotalCollections  int
	SuccessfulExports int
	FailedExports     int
	Results           []ExportResult
	OutputDirectory   string
	ManifestPath      string
}

type manifestEntry struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type manifest struct {
	ExportedAt        time.Time       `json:"exported_at"`
	Format            Format          `json:"format"`
	OwnerID           string          `json:"owner_id"`
	TotalCollections  int             `json:"total_collections"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	Collections       []manifestEntry `json:"collections"`
}

// WriteBulkExportManifest writes a JSON summary of result to path.
func WriteBulkExportManifest(result *BulkExportResult, format Format, path string) error {
	m := manifest{
		ExportedAt:        time.Now().UTC(),
		Format:            format,
		OwnerID:           result.OwnerID,
		TotalCollections:  result.TotalCollections,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Collections:       make([]manifestEntry, 0, len(result.Results)),
	}

	for _, r := range result.Results {
		entry := manifestEntry{ID: r.CollectionID, Name: r.CollectionName, Files: r.Files, Status: "success"}
		if !r.Success {
			entry.Status = "failed"
			if r.Error != nil {
				entry.Error = r.Error.Error()
			}
		}
		m.Collections = append(m.Collections, entry)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
