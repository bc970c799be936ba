package docker

import (
	"time"

	"github.com/juju/clock"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

// Config describes how to create a Docker-backed runtime engine.
type Config struct {
	PullPolicy backup.PullPolicy

	// WaitTimeout bounds WaitHelper; zero waits until the context ends.
	WaitTimeout time.Duration
	Clock       clock.Clock
}

func (c Config) withDefaults() Config {
	if c.PullPolicy == "" {
		c.PullPolicy = backup.PullPolicySearch
	}
	if c.Clock == nil {
		c.Clock = clock.WallClock
	}
	return c
}
