package backup

import (
	"fmt"
	"strings"

	"github.com/juju/clock"
	"github.com/kballard/go-shellquote"
)

const (
	// BackupMountPoint is where the host backup directory appears inside the helper.
	BackupMountPoint = "/backup"

	// TimestampLayout is RFC 3339 with a numeric offset. Archive times are UTC, rendered as +00:00.
	TimestampLayout = "2006-01-02T15:04:05-07:00"
)

// BackupCommand is the shell command run by the helper container for one project.
type BackupCommand string

// Empty reports whether the command would back up nothing.
func (c BackupCommand) Empty() bool {
	return strings.TrimSpace(string(c)) == ""
}

// Synthesizer builds backup commands from a project's mounts.
type Synthesizer struct {
	clock clock.Clock
}

// NewSynthesizer returns a Synthesizer reading archive timestamps from clk.
func NewSynthesizer(clk clock.Clock) *Synthesizer {
	if clk == nil {
		clk = clock.WallClock
	}
	return &Synthesizer{clock: clk}
}

// Synthesize returns one `cd <destination> && <cmd>` per mount joined with &&.
//
// Without an override every mount is archived to
// /backup/<service>_<key>_<timestamp>.tar, all archives of the project
// sharing a single UTC timestamp.
func (s *Synthesizer) Synthesize(project ProjectConfig, mounts Mounts) BackupCommand {
	if len(mounts) == 0 {
		return ""
	}

	timestamp := s.clock.Now().UTC().Format(TimestampLayout)

	parts := make([]string, 0, len(mounts))
	for _, mount := range mounts.Descriptors() {
		cmd := project.BackupCommand
		if !project.HasOverride() {
			cmd = fmt.Sprintf("tar cf %s .", ArchivePath(project.Service, mount.Key, timestamp))
		}
		parts = append(parts, fmt.Sprintf("cd %s && %s", shellquote.Join(mount.Destination), cmd))
	}

	return BackupCommand(strings.Join(parts, " && "))
}

// ArchivePath is the in-helper path of the archive for one mount.
func ArchivePath(service, key, timestamp string) string {
	return fmt.Sprintf("%s/%s_%s_%s.tar", BackupMountPoint, service, key, timestamp)
}
