package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	kafkainfra "github.com/shempignon/docker-compose-backup/internal/infra/kafka"
)

func renderOutcome(stdout, stderr io.Writer, report backup.RunReport, err error) {
	if err != nil {
		fmt.Fprintf(stderr, "\n %s %v\n", color.RedString("✗"), err)
		return
	}

	counts := make(map[backup.Status]int)
	for _, project := range report.Projects {
		counts[project.Status]++
	}

	parts := []string{fmt.Sprintf("%d started", counts[backup.StatusStarted]+counts[backup.StatusCompleted])}
	if n := counts[backup.StatusCompleted]; n > 0 {
		parts = append(parts, fmt.Sprintf("%d completed", n))
	}
	if n := counts[backup.StatusSkipped]; n > 0 {
		parts = append(parts, color.YellowString("%d skipped", n))
	}

	fmt.Fprintf(stdout, "\n %s Done with %s: %s\n", color.GreenString("✓"), report.Image, strings.Join(parts, ", "))
}

func formatReportLine(report kafkainfra.ReportMessage) string {
	status := string(report.Status)
	switch report.Status {
	case backup.StatusFailed:
		status = color.RedString(status)
	case backup.StatusSkipped:
		status = color.YellowString(status)
	default:
		status = color.GreenString(status)
	}

	line := fmt.Sprintf("%s %-10s %s", report.Timestamp.Format("2006-01-02 15:04:05"), report.Service, status)
	if report.HelperID != "" {
		line += " helper=" + report.HelperID
	}
	if report.ExitCode != nil {
		line += fmt.Sprintf(" exit=%d", *report.ExitCode)
	}
	if report.Error != "" {
		line += " error=" + report.Error
	}
	return line
}
