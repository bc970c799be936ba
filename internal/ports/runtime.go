package ports

import (
	"context"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// HelperHandle identifies a started helper container.
type HelperHandle struct {
	ID   string
	Name string

	// Done delivers the helper's exit code when a wait was requested before start.
	Done <-chan HelperExit
}

// HelperExit is the terminal state of a helper container.
type HelperExit struct {
	ExitCode int64
	Err      error
}

// ContainerRuntime is the subset of a container engine the backup workflow needs.
type ContainerRuntime interface {
	NeedsPull(ctx context.Context, ref backup.ImageReference) (bool, error)
	PullImage(ctx context.Context, ref backup.ImageReference) error
	Mounts(ctx context.Context, containerID string) (backup.Mounts, error)
	StartHelper(ctx context.Context, spec backup.HelperSpec, wait bool) (HelperHandle, error)
	WaitHelper(ctx context.Context, handle HelperHandle) (int64, error)
	Close() error
}
