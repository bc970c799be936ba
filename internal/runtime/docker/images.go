package docker

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/docker/docker/pkg/jsonmessage"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// NeedsPull decides whether ref must be pulled before the helper can use it.
//
// The default search policy asks the registry index and pulls only when the
// search comes back empty. It is a heuristic: a broad search match does not
// prove the image exists locally.
func (e *Engine) NeedsPull(ctx context.Context, ref backup.ImageReference) (bool, error) {
	term := ref.String()

	switch e.config.PullPolicy {
	case backup.PullPolicyAlways:
		return true, nil
	case backup.PullPolicyNever:
		return false, nil
	case backup.PullPolicyMissing:
		images, err := e.client.ImageList(ctx, image.ListOptions{
			Filters: filters.NewArgs(filters.Arg("reference", term)),
		})
		if err != nil {
			return false, &backup.RuntimeError{Op: "list images", Target: term, Err: err}
		}
		return len(images) == 0, nil
	default:
		results, err := e.client.ImageSearch(ctx, term, registry.SearchOptions{})
		if err != nil {
			return false, &backup.RuntimeError{Op: "search image", Target: term, Err: err}
		}
		return len(results) == 0, nil
	}
}

// PullImage pulls ref and drains the progress stream.
func (e *Engine) PullImage(ctx context.Context, ref backup.ImageReference) error {
	term := ref.String()

	reader, err := e.client.ImagePull(ctx, term, image.PullOptions{})
	if err != nil {
		return &backup.RuntimeError{Op: "pull image", Target: term, Err: err}
	}
	defer reader.Close()

	// Registry failures arrive inside the stream with a 200 status.
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil); err != nil {
		return &backup.RuntimeError{Op: "pull image", Target: term, Err: fmt.Errorf("consume pull output: %w", err)}
	}
	return nil
}
