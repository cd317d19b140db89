package tui

import (
	"fmt"
	"strings"
)

// View types accepted by Run.
const (
	ViewInspectMetadata   = "inspect_metadata"
	ViewHistoryBatches    = "history_batches"
	ViewHistoryDeliveries = "history_deliveries"
)

// Run starts the appropriate TUI based on the view type.
// Returns an error if the view type doesn't support TUI.
func Run(viewType string, data any) error {
	if !IsTUISupported(viewType) {
		return fmt.Errorf("TUI mode is not supported for %s", viewType)
	}

	if strings.HasPrefix(viewType, "inspect_") {
		return RunInspectTUI(viewType, data)
	}
	if strings.HasPrefix(viewType, "history_") {
		return RunHistoryTUI(viewType, data)
	}

	return fmt.Errorf("unknown view type: %s", viewType)
}

// IsTUISupported returns true if the view type supports TUI mode.
// Only the read-only inspect and history commands do.
func IsTUISupported(viewType string) bool {
	for _, v := range SupportedTUIViews() {
		if v == viewType {
			return true
		}
	}
	return false
}

// SupportedTUIViews returns a list of view types that support TUI.
func SupportedTUIViews() []string {
	return []string{
		ViewInspectMetadata,
		ViewHistoryBatches,
		ViewHistoryDeliveries,
	}
}
