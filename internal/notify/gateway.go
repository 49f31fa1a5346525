package notify

import (
	"context"

	"go.uber.org/zap"
)

// Gateway delivers account lifecycle messages. Delivery failures are
// reported to the caller but never retried here.
type Gateway interface {
	SendWelcomeEmail(ctx context.Context, to, name string) error
	SendPasswordEmail(ctx context.Context, to, name, temporaryPassword string) error
}

// LogGateway writes notifications to the log instead of delivering them.
// Used when SMTP is not configured.
type LogGateway struct {
	logger *zap.Logger
}

// NewLogGateway builds the log-only gateway.
func NewLogGateway(logger *zap.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

func (g *LogGateway) SendWelcomeEmail(_ context.Context, to, name string) error {
	g.logger.Info("welcome email (smtp disabled)",
		zap.String("to", to),
		zap.String("name", name))
	return nil
}

func (g *LogGateway) SendPasswordEmail(_ context.Context, to, name, _ string) error {
	g.logger.Info("temporary password email (smtp disabled)",
		zap.String("to", to),
		zap.String("name", name))
	return nil
}
