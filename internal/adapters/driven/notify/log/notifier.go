// Package log provides a driven.Notifier that writes alert digests
// through slog.
package log

import (
	"context"
	"log/slog"
	"strings"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/logger"
)

// Ensure Notifier implements the interface.
var _ driven.Notifier = (*Notifier)(nil)

// Notifier logs each digest at warn level, one record per alert.
type Notifier struct {
	log *slog.Logger
}

// New creates a notifier. A nil logger uses the component logger.
func New(l *slog.Logger) *Notifier {
	if l == nil {
		l = logger.Component("notify")
	}
	return &Notifier{log: l}
}

// Notify writes the digest. It fails only when ctx is already done.
func (n *Notifier) Notify(ctx context.Context, digest domain.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.WarnContext(ctx, digest.Subject, "alerts", len(digest.Alerts))
	for _, a := range digest.Alerts {
		n.log.InfoContext(ctx, a.Title,
			"type", a.Type,
			"level", a.Level,
			"trigger", a.TriggerValue,
			"threshold", a.ThresholdValue,
			"body", strings.TrimSpace(a.Body))
	}
	return nil
}
