package backup

import "time"

// Status describes how far a project's backup got.
type Status string

const (
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// ProjectReport captures the outcome of backing up one project.
type ProjectReport struct {
	Project     ProjectConfig
	ContainerID string
	HelperID    string
	Image       string
	Mounts      Mounts
	Command     BackupCommand
	Status      Status
	ExitCode    *int64
	StartedAt   time.Time
	Err         error
}

// RunReport collects the project reports of one invocation in configured order.
type RunReport struct {
	Image    ImageReference
	Pulled   bool
	Projects []ProjectReport
}

// Failed returns the reports whose backup did not start or did not complete cleanly.
func (r RunReport) Failed() []ProjectReport {
	var failed []ProjectReport
	for _, report := range r.Projects {
		if report.Status == StatusFailed {
			failed = append(failed, report)
		}
	}
	return failed
}
