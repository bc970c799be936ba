package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// Locator finds a service's container through `<compose> ps --quiet <service>`.
type Locator struct {
	runner  ports.CommandRunner
	command []string
}

// ensure Locator implements ports.ContainerLocator.
var _ ports.ContainerLocator = (*Locator)(nil)

// NewLocator builds a Locator for a compose command line such as
// "docker-compose" or "docker compose".
func NewLocator(runner ports.CommandRunner, composeCommand string) (*Locator, error) {
	if runner == nil {
		return nil, errors.New("compose locator: command runner cannot be nil")
	}
	if strings.TrimSpace(composeCommand) == "" {
		composeCommand = backup.DefaultComposeCommand
	}

	command, err := shellquote.Split(composeCommand)
	if err != nil {
		return nil, &backup.ConfigError{Msg: fmt.Sprintf("invalid compose_command %q", composeCommand), Err: err}
	}
	if len(command) == 0 {
		return nil, &backup.ConfigError{Msg: "compose_command is empty"}
	}

	return &Locator{runner: runner, command: command}, nil
}

// Locate returns the first container ID reported for the project's service.
func (l *Locator) Locate(ctx context.Context, project backup.ProjectConfig) (string, error) {
	args := append(append([]string{}, l.command[1:]...), "ps", "--quiet", project.Service)
	full := append([]string{l.command[0]}, args...)

	out, err := l.runner.Output(ctx, project.DockerCompose, l.command[0], args...)
	if err != nil {
		return "", &backup.ProcessError{Command: full, Dir: project.DockerCompose, Err: err}
	}
	if !utf8.Valid(out) {
		return "", &backup.ProcessError{Command: full, Dir: project.DockerCompose, Err: errors.New("output is not valid UTF-8")}
	}

	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return "", &backup.ContainerNotFoundError{Service: project.Service, Dir: project.DockerCompose}
	}

	id, _, _ := strings.Cut(trimmed, "\n")
	return strings.TrimSpace(id), nil
}
