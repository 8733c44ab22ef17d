package mcp

import (
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// History answers snapshot and trend queries.
	History driving.History

	// Alerts lists triggered alerts.
	Alerts driving.Alerts

	// Sources is the source catalog.
	Sources driving.SourceCatalog
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.History == nil {
		return ErrMissingHistoryService
	}
	// Alerts and Sources are optional
	return nil
}
