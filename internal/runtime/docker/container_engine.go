package docker

import (
	"context"
	"errors"
	"fmt"
	"time"

	cerrdefs "github.com/containerd/errdefs"
	"github.com/docker/docker/api/types/container"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// ErrNotWaitable is returned by WaitHelper for helpers started without a wait.
var ErrNotWaitable = errors.New("helper was started without a wait")

// StartHelper creates and starts the helper container described by spec.
//
// It returns as soon as the container is started. When wait is set the exit
// is subscribed to before the start, so an auto-removed helper that finishes
// quickly is not missed; the outcome is then delivered on the handle's Done
// channel.
func (e *Engine) StartHelper(ctx context.Context, spec backup.HelperSpec, wait bool) (ports.HelperHandle, error) {
	resp, err := e.client.ContainerCreate(
		ctx,
		&container.Config{
			Image: spec.Image,
			Cmd:   spec.Cmd,
		},
		&container.HostConfig{
			Binds:       spec.Binds,
			VolumesFrom: spec.VolumesFrom,
			AutoRemove:  spec.AutoRemove,
		},
		nil,
		nil,
		spec.Name,
	)
	if err != nil {
		return ports.HelperHandle{}, &backup.RuntimeError{Op: "create container", Target: spec.Name, Err: err}
	}

	handle := ports.HelperHandle{ID: resp.ID, Name: spec.Name}
	if wait {
		handle.Done = e.subscribeExit(ctx, resp.ID, spec.AutoRemove)
	}

	if err := e.client.ContainerStart(ctx, spec.Name, container.StartOptions{}); err != nil {
		// AutoRemove only applies once the container has run.
		if rmErr := e.removeHelper(resp.ID); rmErr != nil {
			err = errors.Join(err, rmErr)
		}
		return ports.HelperHandle{}, &backup.RuntimeError{Op: "start container", Target: spec.Name, Err: err}
	}

	return handle, nil
}

// WaitHelper blocks until a helper started with a wait exits and returns its exit code.
func (e *Engine) WaitHelper(ctx context.Context, handle ports.HelperHandle) (int64, error) {
	if handle.Done == nil {
		return 0, &backup.RuntimeError{Op: "wait container", Target: handle.Name, Err: ErrNotWaitable}
	}

	var timeout <-chan time.Time
	if e.config.WaitTimeout > 0 {
		timeout = e.config.Clock.After(e.config.WaitTimeout)
	}

	select {
	case exit := <-handle.Done:
		if exit.Err != nil {
			return exit.ExitCode, &backup.RuntimeError{Op: "wait container", Target: handle.Name, Err: exit.Err}
		}
		return exit.ExitCode, nil
	case <-timeout:
		return 0, &backup.RuntimeError{Op: "wait container", Target: handle.Name, Err: fmt.Errorf("timed out after %s", e.config.WaitTimeout)}
	case <-ctx.Done():
		return 0, &backup.RuntimeError{Op: "wait container", Target: handle.Name, Err: ctx.Err()}
	}
}

func (e *Engine) subscribeExit(ctx context.Context, containerID string, autoRemove bool) <-chan ports.HelperExit {
	condition := container.WaitConditionNextExit
	if autoRemove {
		condition = container.WaitConditionRemoved
	}

	statusCh, errCh := e.client.ContainerWait(ctx, containerID, condition)
	done := make(chan ports.HelperExit, 1)

	go func() {
		select {
		case status := <-statusCh:
			exit := ports.HelperExit{ExitCode: status.StatusCode}
			if status.Error != nil {
				exit.Err = fmt.Errorf("container error: %s", status.Error.Message)
			}
			done <- exit
		case err := <-errCh:
			done <- ports.HelperExit{ExitCode: -1, Err: err}
		case <-ctx.Done():
			done <- ports.HelperExit{ExitCode: -1, Err: ctx.Err()}
		}
	}()

	return done
}

func (e *Engine) removeHelper(containerID string) error {
	err := e.client.ContainerRemove(context.Background(), containerID, container.RemoveOptions{Force: true})
	if err != nil && !cerrdefs.IsNotFound(err) {
		return fmt.Errorf("remove container %s: %w", containerID, err)
	}
	return nil
}
