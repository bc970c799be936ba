package backup

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrConfig            = errors.New("configuration error")
	ErrRuntimeConnection = errors.New("container runtime unreachable")
	ErrRuntimeOperation  = errors.New("container runtime operation failed")
	ErrContainerNotFound = errors.New("container not found")
	ErrProcess           = errors.New("process error")
	ErrHelperFailed      = errors.New("backup helper failed")
)

// ConfigError reports a configuration that could not be loaded or is invalid.
type ConfigError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// RuntimeConnectionError reports that the container runtime cannot be reached.
type RuntimeConnectionError struct {
	Err error
}

func (e *RuntimeConnectionError) Error() string {
	return fmt.Sprintf("connect to container runtime: %v", e.Err)
}

func (e *RuntimeConnectionError) Unwrap() error { return e.Err }

func (e *RuntimeConnectionError) Is(target error) bool { return target == ErrRuntimeConnection }

// RuntimeError reports a failed search, pull, inspect, create, start or wait call.
type RuntimeError struct {
	Op     string
	Target string
	Err    error
}

func (e *RuntimeError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Target, e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

func (e *RuntimeError) Is(target error) bool { return target == ErrRuntimeOperation }

// ContainerNotFoundError reports a compose service with no running container.
type ContainerNotFoundError struct {
	Service string
	Dir     string
}

func (e *ContainerNotFoundError) Error() string {
	return fmt.Sprintf("no container found for service %q in %s", e.Service, e.Dir)
}

func (e *ContainerNotFoundError) Is(target error) bool { return target == ErrContainerNotFound }

// ProcessError reports a compose invocation that could not run or produced unusable output.
type ProcessError struct {
	Command []string
	Dir     string
	Err     error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("run %q in %s: %v", strings.Join(e.Command, " "), e.Dir, e.Err)
}

func (e *ProcessError) Unwrap() error { return e.Err }

func (e *ProcessError) Is(target error) bool { return target == ErrProcess }

// HelperExitError reports a waited-for helper container that exited non-zero.
type HelperExitError struct {
	Helper   string
	ExitCode int64
}

func (e *HelperExitError) Error() string {
	return fmt.Sprintf("helper %s exited with code %d", e.Helper, e.ExitCode)
}

func (e *HelperExitError) Is(target error) bool { return target == ErrHelperFailed }
