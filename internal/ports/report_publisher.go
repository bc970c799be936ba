package ports

import (
	"context"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// ReportPublisher publishes backup reports to an external system.
type ReportPublisher interface {
	PublishProjectReport(ctx context.Context, report backup.ProjectReport) error
	PublishRunSummary(ctx context.Context, report backup.RunReport) error
	Close() error
}
