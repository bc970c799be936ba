//go:build integration

package integration_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"

	"github.com/shempignon/docker-compose-backup/internal/app/orchestrator"
	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	kafkainfra "github.com/shempignon/docker-compose-backup/internal/infra/kafka"
	"github.com/shempignon/docker-compose-backup/internal/runtime/docker"
	"github.com/shempignon/docker-compose-backup/internal/testhelpers"
)

type fixedLocator struct {
	ids map[string]string
}

func (l fixedLocator) Locate(ctx context.Context, project backup.ProjectConfig) (string, error) {
	id, ok := l.ids[project.Service]
	if !ok {
		return "", &backup.ContainerNotFoundError{Service: project.Service, Dir: project.DockerCompose}
	}
	return id, nil
}

func TestPipelineEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping pipeline integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	const reportsTopic = "integration-backup-reports"
	broker := testhelpers.StartKafka(ctx, t, reportsTopic)

	volume := fmt.Sprintf("dcbackup-it-%d", time.Now().UnixNano())
	serviceContainer, err := testcontainers.Run(ctx, "alpine:3.20",
		testcontainers.WithMounts(testcontainers.VolumeMount(volume, "/data")),
		testcontainers.WithCmd("sh", "-c", "echo hello > /data/greeting && sleep 600"),
	)
	if err != nil {
		t.Skipf("service container unavailable: %v", err)
	}
	testcontainers.CleanupContainer(t, serviceContainer, testcontainers.RemoveVolumes(volume))

	engine, err := docker.New(ctx, docker.Config{PullPolicy: backup.PullPolicyMissing, WaitTimeout: time.Minute})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	defer engine.Close()

	publisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
		Brokers: []string{broker},
		Topic:   reportsTopic,
	})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	defer publisher.Close()

	backupDir := t.TempDir()
	service := orchestrator.NewService(
		engine,
		fixedLocator{ids: map[string]string{"store": serviceContainer.GetContainerID()}},
		orchestrator.Options{Publisher: publisher},
	)

	report, err := service.Run(ctx, backup.RunConfiguration{
		BackupDirectory: backupDir,
		Image:           "alpine:3.20",
		Shell:           "sh",
		Wait:            true,
		Projects:        []backup.ProjectConfig{{Service: "store", DockerCompose: backupDir}},
	})
	if err != nil {
		t.Fatalf("backup run failed: %v", err)
	}
	if len(report.Projects) != 1 || report.Projects[0].Status != backup.StatusCompleted {
		t.Fatalf("unexpected report %+v", report.Projects)
	}

	archives, err := filepath.Glob(filepath.Join(backupDir, "store_"+volume+"_*.tar"))
	if err != nil {
		t.Fatalf("glob archives: %v", err)
	}
	if len(archives) != 1 {
		entries, _ := os.ReadDir(backupDir)
		t.Fatalf("expected one archive for %s, found %v", volume, entries)
	}

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: []string{broker},
		Topic:   reportsTopic,
		GroupID: "pipeline-integration-reports",
	})
	if err != nil {
		t.Fatalf("new consumer: %v", err)
	}
	defer consumer.Close()

	msgCtx, msgCancel := context.WithTimeout(ctx, time.Minute)
	defer msgCancel()

	published, err := consumer.NextReport(msgCtx)
	if err != nil {
		t.Fatalf("read report message: %v", err)
	}
	if published.Service != "store" || published.Status != backup.StatusCompleted {
		t.Fatalf("unexpected published report %+v", published)
	}
	if published.ExitCode == nil || *published.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", published.ExitCode)
	}
	if !strings.Contains(published.Command, "tar cf /backup/store_"+volume) {
		t.Fatalf("unexpected command %q", published.Command)
	}

	if _, err := consumer.NextReport(msgCtx); !errors.Is(err, io.EOF) {
		t.Fatalf("expected the run summary after the project report, got %v", err)
	}
}
