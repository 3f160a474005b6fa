package tasks

import "fmt"

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
	RefreshFeed Phase = iota
	ResolveStream
	CacheItems
	ExportListing
)

func (p Phase) String() string {
	switch p {
	case RefreshFeed:
		return "refresh_feed"
	case ResolveStream:
		return "resolve_stream"
	case CacheItems:
		return "cache_items"
	case ExportListing:
		return "export_listing"
	default:
		return ""
	}
}

func refreshFeedUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RefreshFeed,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Refreshing %s feed...", name),
	}
}

func refreshDoneUpdate(step, total int, name string, err error) ProgressUpdate {
	message := fmt.Sprintf("[%d/%d] ✓ %s refreshed", step, total, name)
	if err != nil {
		message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err)
	}
	return ProgressUpdate{
		Phase:   RefreshFeed,
		Step:    step,
		Total:   total,
		Message: message,
	}
}

func resolvingUpdate(step, total int, videoID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveStream,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Resolving %s...", step, total, videoID),
	}
}

func resolveDoneUpdate(step, total int, result ResolveResult) ProgressUpdate {
	var message string
	if result.Error != nil {
		message = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, result.VideoID, result.Error)
	} else {
		message = fmt.Sprintf("[%d/%d] ✓ %s (%dp)", step, total, result.VideoID, result.Stream.Height)
	}
	return ProgressUpdate{
		Phase:   ResolveStream,
		Step:    step,
		Total:   total,
		Message: message,
		Data:    result.Stream,
	}
}

func cacheItemsUpdate(count int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheItems,
		Step:    count,
		Total:   count,
		Message: fmt.Sprintf("Cached %d items from %s", count, name),
	}
}

func exportListingUpdate(filename string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportListing,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Wrote %s", filename),
	}
}
