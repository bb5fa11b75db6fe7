package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ListCollections Phase = iota
	FetchCover
	ExportCollection
)

func (p Phase) String() string {
	switch p {
	case ListCollections:
		return "list_collections"
	case FetchCover:
		return "fetch_cover"
	case ExportCollection:
		return "export_collection"
	default:
		return ""
	}
}

func listingCollectionsUpdate(ownerID string, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ListCollections,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d watchlists for user %s", total, ownerID),
	}
}

func fetchingCoverUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchCover,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Downloading cover for %s...", step, total, name),
	}
}

func exportingCollectionUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportCollection,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
