package ports

import "github.com/shempignon/docker-compose-backup/internal/domain/backup"

// DiagnosticSink receives the events emitted while a backup pass runs.
type DiagnosticSink interface {
	Report(event backup.Event)
}
