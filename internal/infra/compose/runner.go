package compose

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct{}

// ensure ExecRunner implements ports.CommandRunner.
var _ ports.CommandRunner = ExecRunner{}

// Output runs name with args in dir and returns stdout. A non-zero exit is
// an error carrying the command's stderr.
func (ExecRunner) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if msg := strings.TrimSpace(string(exitErr.Stderr)); msg != "" {
				return out, fmt.Errorf("%w: %s", err, msg)
			}
		}
		return out, err
	}
	return out, nil
}
