package backup

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultShell runs the synthesized command inside the helper container.
	DefaultShell = "bash"
	// DefaultComposeCommand is used to look up service containers.
	DefaultComposeCommand = "docker-compose"
)

// PullPolicy controls how the helper image availability is decided.
type PullPolicy string

const (
	// PullPolicySearch pulls when an image search for the reference returns nothing.
	PullPolicySearch PullPolicy = "search"
	// PullPolicyMissing pulls when no local image matches the reference exactly.
	PullPolicyMissing PullPolicy = "missing"
	PullPolicyAlways  PullPolicy = "always"
	PullPolicyNever   PullPolicy = "never"
)

// RunConfiguration describes a single backup pass over every configured project.
type RunConfiguration struct {
	BackupDirectory string
	Image           string
	Projects        []ProjectConfig

	Shell           string
	ComposeCommand  string
	PullPolicy      PullPolicy
	Wait            bool
	WaitTimeout     time.Duration
	ContinueOnError bool
}

// ProjectConfig identifies one compose service to back up.
type ProjectConfig struct {
	Service       string
	DockerCompose string
	Path          string
	BackupCommand string
}

// HasOverride reports whether a user supplied backup command replaces the generated tar command.
func (p ProjectConfig) HasOverride() bool {
	return strings.TrimSpace(p.BackupCommand) != ""
}

// Normalize applies defaults and validates the configuration in place.
func (c *RunConfiguration) Normalize() error {
	if c == nil {
		return &ConfigError{Msg: "configuration is nil"}
	}

	c.BackupDirectory = strings.TrimSpace(c.BackupDirectory)
	if c.BackupDirectory == "" {
		return &ConfigError{Msg: "missing backup_directory"}
	}

	if strings.TrimSpace(c.Shell) == "" {
		c.Shell = DefaultShell
	}
	if strings.TrimSpace(c.ComposeCommand) == "" {
		c.ComposeCommand = DefaultComposeCommand
	}

	policy := PullPolicy(strings.ToLower(strings.TrimSpace(string(c.PullPolicy))))
	if policy == "" {
		policy = PullPolicySearch
	}
	switch policy {
	case PullPolicySearch, PullPolicyMissing, PullPolicyAlways, PullPolicyNever:
	default:
		return &ConfigError{Msg: fmt.Sprintf("invalid pull_policy %q", c.PullPolicy)}
	}
	c.PullPolicy = policy

	if c.WaitTimeout < 0 {
		return &ConfigError{Msg: fmt.Sprintf("invalid wait_timeout %s", c.WaitTimeout)}
	}

	if len(c.Projects) == 0 {
		return &ConfigError{Msg: "at least one project must be configured"}
	}

	seen := make(map[string]int, len(c.Projects))
	for i := range c.Projects {
		project := &c.Projects[i]
		project.Service = strings.TrimSpace(project.Service)
		project.DockerCompose = strings.TrimSpace(project.DockerCompose)

		if project.Service == "" {
			return &ConfigError{Msg: fmt.Sprintf("projects[%d]: missing service", i)}
		}
		if project.DockerCompose == "" {
			return &ConfigError{Msg: fmt.Sprintf("projects[%d]: missing docker_compose", i)}
		}

		// The helper container is named after the service, two projects
		// sharing a service name would collide on that name.
		if prev, ok := seen[project.Service]; ok {
			return &ConfigError{Msg: fmt.Sprintf("projects[%d]: service %q already configured in projects[%d]", i, project.Service, prev)}
		}
		seen[project.Service] = i
	}

	return nil
}
