package backup

import "fmt"

// HelperSpec describes the ephemeral container that runs a backup command.
type HelperSpec struct {
	Name        string
	Image       string
	Cmd         []string
	Binds       []string
	VolumesFrom []string
	AutoRemove  bool
}

// HelperName is the name given to the helper container of a service.
func HelperName(service string) string {
	return service + "-backup"
}

// NewHelperSpec wires the backup directory and the service container's volumes into a helper.
func NewHelperSpec(cfg *RunConfiguration, project ProjectConfig, containerID string, ref ImageReference, command BackupCommand) HelperSpec {
	shell := cfg.Shell
	if shell == "" {
		shell = DefaultShell
	}

	return HelperSpec{
		Name:        HelperName(project.Service),
		Image:       ref.String(),
		Cmd:         []string{shell, "-c", string(command)},
		Binds:       []string{fmt.Sprintf("%s:%s", cfg.BackupDirectory, BackupMountPoint)},
		VolumesFrom: []string{containerID},
		AutoRemove:  true,
	}
}
