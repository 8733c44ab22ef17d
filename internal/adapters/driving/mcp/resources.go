package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

const (
	// URIScheme is the custom URI scheme for flowwatch resources.
	uriScheme = "flowwatch://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "snapshots/latest",
		Name:        "latest-snapshot",
		Description: "The most recent attention-flow snapshot",
		MIMEType:    "application/json",
	}, s.handleLatestSnapshotResource)

	// Static resource for listing sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "The catalog of content sources with weights and categories",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Template for alerts of one type.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "alerts/{type}",
		Name:        "alerts-by-type",
		Description: "Alerts of one type from the last 7 days",
		MIMEType:    "application/json",
	}, s.handleAlertsResource)
}

// handleLatestSnapshotResource returns the latest snapshot as JSON.
func (s *Server) handleLatestSnapshotResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	snap, err := s.ports.History.LatestSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading latest snapshot: %w", err)
	}
	if snap == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, snapshotOutput(snap, len(snap.HotTopics)))
}

// handleSourcesResource returns the source catalog.
func (s *Server) handleSourcesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sources == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	type sourceInfo struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Category  string `json:"category"`
		Weight    int    `json:"weight"`
		Influence string `json:"influence"`
	}

	sources := s.ports.Sources.All()
	infos := make([]sourceInfo, len(sources))
	for i, src := range sources {
		infos[i] = sourceInfo{
			ID:        src.ID,
			Name:      src.Name,
			Category:  string(src.Category),
			Weight:    src.Weight,
			Influence: string(src.Influence),
		}
	}
	return jsonResource(req.Params.URI, infos)
}

// handleAlertsResource returns recent alerts of the type named in the URI.
func (s *Server) handleAlertsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Alerts == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	alertType, err := domain.ParseAlertType(extractAlertType(req.Params.URI))
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	alerts, err := s.ports.Alerts.History(ctx, defaultAlertsDays, alertType)
	if err != nil {
		return nil, fmt.Errorf("listing alerts: %w", err)
	}
	return jsonResource(req.Params.URI, alertOutputs(alerts))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractAlertType extracts the type from a URI like flowwatch://alerts/{type}.
func extractAlertType(uri string) string {
	const prefix = uriScheme + "alerts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
