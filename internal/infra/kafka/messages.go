package kafka

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
)

const (
	messageTypeProject = "project"
	messageTypeSummary = "summary"
)

type projectEnvelope struct {
	Type          string            `json:"type"`
	Service       string            `json:"service"`
	DockerCompose string            `json:"docker_compose,omitempty"`
	Path          string            `json:"path,omitempty"`
	ContainerID   string            `json:"container_id,omitempty"`
	HelperID      string            `json:"helper_id,omitempty"`
	Image         string            `json:"image,omitempty"`
	Mounts        map[string]string `json:"mounts,omitempty"`
	Command       string            `json:"command,omitempty"`
	Status        backup.Status     `json:"status,omitempty"`
	ExitCode      *int64            `json:"exit_code,omitempty"`
	Error         string            `json:"error,omitempty"`
	StartedAt     *time.Time        `json:"started_at,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

type summaryEnvelope struct {
	Type      string    `json:"type"`
	Image     string    `json:"image"`
	Pulled    bool      `json:"pulled"`
	Projects  int       `json:"projects"`
	Completed int       `json:"completed"`
	Started   int       `json:"started"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// ReportMessage is a project report read back from the topic.
type ReportMessage struct {
	Service       string
	DockerCompose string
	ContainerID   string
	HelperID      string
	Image         string
	Mounts        backup.Mounts
	Command       string
	Status        backup.Status
	ExitCode      *int64
	Error         string
	Timestamp     time.Time
	Offset        int64
}

func encodeProjectReport(report backup.ProjectReport, now time.Time) ([]byte, error) {
	payload, err := json.Marshal(makeProjectEnvelope(report, now))
	if err != nil {
		return nil, fmt.Errorf("marshal project report: %w", err)
	}
	return payload, nil
}

func makeProjectEnvelope(report backup.ProjectReport, now time.Time) projectEnvelope {
	var startedAt *time.Time
	if !report.StartedAt.IsZero() {
		ts := report.StartedAt.UTC()
		startedAt = &ts
	}

	var mounts map[string]string
	if len(report.Mounts) > 0 {
		mounts = make(map[string]string, len(report.Mounts))
		for key, dest := range report.Mounts {
			mounts[key] = dest
		}
	}

	errMsg := ""
	if report.Err != nil {
		errMsg = report.Err.Error()
	}

	return projectEnvelope{
		Type:          messageTypeProject,
		Service:       report.Project.Service,
		DockerCompose: report.Project.DockerCompose,
		Path:          report.Project.Path,
		ContainerID:   report.ContainerID,
		HelperID:      report.HelperID,
		Image:         report.Image,
		Mounts:        mounts,
		Command:       string(report.Command),
		Status:        report.Status,
		ExitCode:      report.ExitCode,
		Error:         errMsg,
		StartedAt:     startedAt,
		Timestamp:     now.UTC(),
	}
}

func encodeRunSummary(report backup.RunReport, now time.Time) ([]byte, error) {
	summary := summaryEnvelope{
		Type:      messageTypeSummary,
		Image:     report.Image.String(),
		Pulled:    report.Pulled,
		Projects:  len(report.Projects),
		Timestamp: now.UTC(),
	}
	for _, project := range report.Projects {
		switch project.Status {
		case backup.StatusCompleted:
			summary.Completed++
		case backup.StatusStarted:
			summary.Started++
		case backup.StatusSkipped:
			summary.Skipped++
		case backup.StatusFailed:
			summary.Failed++
		}
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("marshal run summary: %w", err)
	}
	return payload, nil
}

// decodeReportMessage returns io.EOF for the summary that closes a run.
func decodeReportMessage(msg kafkago.Message) (ReportMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg.Value, &head); err != nil {
		return ReportMessage{}, fmt.Errorf("decode message: %w", err)
	}

	switch head.Type {
	case messageTypeProject, "":
		var envelope projectEnvelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			return ReportMessage{}, fmt.Errorf("decode project report: %w", err)
		}
		return envelope.toReportMessage(msg)
	case messageTypeSummary:
		return ReportMessage{}, io.EOF
	default:
		return ReportMessage{}, fmt.Errorf("unknown message type %q", head.Type)
	}
}

func (e projectEnvelope) toReportMessage(msg kafkago.Message) (ReportMessage, error) {
	service := e.Service
	if service == "" {
		service = string(msg.Key)
	}
	if service == "" {
		return ReportMessage{}, fmt.Errorf("project report missing service")
	}
	if e.Status == "" {
		return ReportMessage{}, fmt.Errorf("project report for %s missing status", service)
	}

	return ReportMessage{
		Service:       service,
		DockerCompose: e.DockerCompose,
		ContainerID:   e.ContainerID,
		HelperID:      e.HelperID,
		Image:         e.Image,
		Mounts:        backup.Mounts(e.Mounts),
		Command:       e.Command,
		Status:        e.Status,
		ExitCode:      e.ExitCode,
		Error:         e.Error,
		Timestamp:     e.Timestamp,
		Offset:        msg.Offset,
	}, nil
}
