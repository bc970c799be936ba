package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/client"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// Engine implements ports.ContainerRuntime backed by the Docker Engine API.
type Engine struct {
	client dockerClient
	config Config
}

// ensure Engine implements ports.ContainerRuntime.
var _ ports.ContainerRuntime = (*Engine)(nil)

// New connects to the Docker daemon described by the environment and checks it answers.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, &backup.RuntimeConnectionError{Err: fmt.Errorf("create client: %w", err)}
	}

	engine := newEngineWithClient(cli, cfg)
	if err := engine.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, err
	}

	return engine, nil
}

func newEngineWithClient(cli dockerClient, cfg Config) *Engine {
	return &Engine{
		client: cli,
		config: cfg.withDefaults(),
	}
}

// Ping verifies the daemon is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if _, err := e.client.Ping(ctx); err != nil {
		return &backup.RuntimeConnectionError{Err: err}
	}
	return nil
}

// Close releases the Docker client.
func (e *Engine) Close() error {
	if e.client == nil {
		return nil
	}
	if err := e.client.Close(); err != nil {
		return fmt.Errorf("docker client: %w", err)
	}
	return nil
}
