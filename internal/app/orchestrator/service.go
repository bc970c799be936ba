package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/juju/clock"

	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/ports"
)

// Options carries the optional collaborators of a Service.
type Options struct {
	Synthesizer *backup.Synthesizer
	Sink        ports.DiagnosticSink
	Publisher   ports.ReportPublisher
	Clock       clock.Clock
}

// Service runs a backup pass over the configured compose projects.
type Service struct {
	runtime     ports.ContainerRuntime
	locator     ports.ContainerLocator
	synthesizer *backup.Synthesizer
	sink        ports.DiagnosticSink
	publisher   ports.ReportPublisher
	clock       clock.Clock
}

// NewService constructs a Service around a container runtime and a locator.
func NewService(runtime ports.ContainerRuntime, locator ports.ContainerLocator, opts Options) *Service {
	clk := opts.Clock
	if clk == nil {
		clk = clock.WallClock
	}
	synthesizer := opts.Synthesizer
	if synthesizer == nil {
		synthesizer = backup.NewSynthesizer(clk)
	}

	return &Service{
		runtime:     runtime,
		locator:     locator,
		synthesizer: synthesizer,
		sink:        opts.Sink,
		publisher:   opts.Publisher,
		clock:       clk,
	}
}

// Run resolves the helper image, makes sure it is available and starts one
// backup helper per project, in configured order.
//
// Projects are processed one at a time. The first failing project ends the
// run unless cfg.ContinueOnError is set, in which case every project is
// attempted and the failures are joined. Image errors always end the run.
// The returned report holds every project attempted so far.
func (s *Service) Run(ctx context.Context, cfg backup.RunConfiguration) (backup.RunReport, error) {
	cfg.Projects = append([]backup.ProjectConfig(nil), cfg.Projects...)
	if err := cfg.Normalize(); err != nil {
		return backup.RunReport{}, err
	}

	ref := backup.ResolveReference(cfg.Image)
	report := backup.RunReport{Image: ref}
	s.emit(backup.LevelDebug, backup.StageResolve, "", "helper image %s", ref)

	needsPull, err := s.runtime.NeedsPull(ctx, ref)
	if err != nil {
		return report, err
	}
	if needsPull {
		s.emit(backup.LevelInfo, backup.StagePull, "", "pulling %s", ref)
		if err := s.runtime.PullImage(ctx, ref); err != nil {
			return report, err
		}
		report.Pulled = true
	}

	var errs []error
	for _, project := range cfg.Projects {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		projectReport := s.backupProject(ctx, &cfg, project, ref)
		report.Projects = append(report.Projects, projectReport)
		s.publish(ctx, projectReport)

		if projectReport.Err == nil {
			continue
		}
		errs = append(errs, fmt.Errorf("backup %s: %w", project.Service, projectReport.Err))
		if !cfg.ContinueOnError {
			break
		}
	}

	s.publishSummary(ctx, report)

	if err := errors.Join(errs...); err != nil {
		s.emit(backup.LevelError, backup.StageDone, "", "%d of %d attempted projects failed", len(report.Failed()), len(report.Projects))
		return report, err
	}
	s.emit(backup.LevelInfo, backup.StageDone, "", "%d projects processed", len(report.Projects))
	return report, nil
}

func (s *Service) backupProject(ctx context.Context, cfg *backup.RunConfiguration, project backup.ProjectConfig, ref backup.ImageReference) backup.ProjectReport {
	report := backup.ProjectReport{
		Project:   project,
		Image:     ref.String(),
		StartedAt: s.clock.Now(),
	}

	fail := func(stage backup.Stage, err error) backup.ProjectReport {
		report.Status = backup.StatusFailed
		report.Err = err
		s.emit(backup.LevelError, stage, project.Service, "%v", err)
		return report
	}

	containerID, err := s.locator.Locate(ctx, project)
	if err != nil {
		return fail(backup.StageLocate, err)
	}
	report.ContainerID = containerID
	s.emit(backup.LevelDebug, backup.StageLocate, project.Service, "container %s", containerID)

	mounts, err := s.runtime.Mounts(ctx, containerID)
	if err != nil {
		return fail(backup.StageInspect, err)
	}
	report.Mounts = mounts
	s.emit(backup.LevelDebug, backup.StageInspect, project.Service, "%d mounts", len(mounts))

	command := s.synthesizer.Synthesize(project, mounts)
	if command.Empty() {
		report.Status = backup.StatusSkipped
		s.emit(backup.LevelWarning, backup.StageSynthesize, project.Service, "container %s has no mounts, nothing to back up", containerID)
		return report
	}
	report.Command = command
	s.emit(backup.LevelDebug, backup.StageSynthesize, project.Service, "%s", command)

	spec := backup.NewHelperSpec(cfg, project, containerID, ref, command)
	handle, err := s.runtime.StartHelper(ctx, spec, cfg.Wait)
	if err != nil {
		return fail(backup.StageExecute, err)
	}
	report.HelperID = handle.ID
	report.Status = backup.StatusStarted
	s.emit(backup.LevelInfo, backup.StageExecute, project.Service, "helper %s started", handle.Name)

	if !cfg.Wait {
		return report
	}

	exitCode, err := s.runtime.WaitHelper(ctx, handle)
	if err != nil {
		return fail(backup.StageWait, err)
	}
	report.ExitCode = &exitCode
	if exitCode != 0 {
		return fail(backup.StageWait, &backup.HelperExitError{Helper: handle.Name, ExitCode: exitCode})
	}
	report.Status = backup.StatusCompleted
	s.emit(backup.LevelInfo, backup.StageWait, project.Service, "helper %s completed", handle.Name)
	return report
}

func (s *Service) publish(ctx context.Context, report backup.ProjectReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProjectReport(ctx, report); err != nil {
		s.emit(backup.LevelWarning, backup.StagePublish, report.Project.Service, "publish report: %v", err)
	}
}

func (s *Service) publishSummary(ctx context.Context, report backup.RunReport) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRunSummary(ctx, report); err != nil {
		s.emit(backup.LevelWarning, backup.StagePublish, "", "publish summary: %v", err)
	}
}

func (s *Service) emit(level backup.Level, stage backup.Stage, service, format string, args ...any) {
	if s.sink == nil {
		return
	}
	s.sink.Report(backup.Event{
		Level:   level,
		Stage:   stage,
		Service: service,
		Message: fmt.Sprintf(format, args...),
	})
}
