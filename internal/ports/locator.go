package ports

import (
	"context"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// ContainerLocator maps a compose service to its running container ID.
type ContainerLocator interface {
	Locate(ctx context.Context, project backup.ProjectConfig) (string, error)
}

// CommandRunner executes a program in a working directory and returns its stdout.
type CommandRunner interface {
	Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error)
}
