// Package mcp provides an MCP (Model Context Protocol) server adapter for flowwatch.
// It lets AI assistants read snapshots, trends and alerts from the local store.
package mcp

import "errors"

// ErrMissingHistoryService is returned when the history service is not provided.
var ErrMissingHistoryService = errors.New("mcp: history service is required")
