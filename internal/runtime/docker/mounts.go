package docker

import (
	"context"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// Mounts inspects a container, without size statistics, and keys its mounts.
func (e *Engine) Mounts(ctx context.Context, containerID string) (backup.Mounts, error) {
	info, _, err := e.client.ContainerInspectWithRaw(ctx, containerID, false)
	if err != nil {
		return nil, &backup.RuntimeError{Op: "inspect container", Target: containerID, Err: err}
	}

	mounts := make(backup.Mounts, len(info.Mounts))
	for idx, mount := range info.Mounts {
		mounts.Add(mount.Name, idx, mount.Destination)
	}
	return mounts, nil
}
