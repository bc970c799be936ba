package docker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/registry"
	"github.com/juju/clock/testclock"

	"github.com/shempignon/docker-compose-backup/internal/app/orchestrator"
	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/infra/compose"
)

type composeStub struct {
	out  map[string]string
	dirs []string
}

func (c *composeStub) Output(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	c.dirs = append(c.dirs, dir)
	return []byte(c.out[args[len(args)-1]]), nil
}

func TestBackupPassAgainstFakeDaemon(t *testing.T) {
	t.Parallel()

	client := newFakeDockerClient()
	client.searchResults["ubuntu"] = []registry.SearchResult{{Name: "ubuntu"}}
	client.setInspectMounts("abc123", container.MountPoint{Name: "dbdata", Destination: "/var/lib/data"})

	runner := &composeStub{out: map[string]string{"db": "abc123\n"}}
	locator, err := compose.NewLocator(runner, "")
	if err != nil {
		t.Fatalf("NewLocator returned error: %v", err)
	}

	clk := testclock.NewClock(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	engine := newEngineWithClient(client, Config{Clock: clk})
	service := orchestrator.NewService(engine, locator, orchestrator.Options{Clock: clk})

	report, err := service.Run(context.Background(), backup.RunConfiguration{
		BackupDirectory: "/srv/backups",
		Projects:        []backup.ProjectConfig{{Service: "db", DockerCompose: "/srv/app"}},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(client.imagePulls) != 0 {
		t.Fatalf("expected no pull when the search finds ubuntu, got %v", client.imagePulls)
	}
	if len(runner.dirs) != 1 || runner.dirs[0] != "/srv/app" {
		t.Fatalf("expected compose to run in /srv/app, got %v", runner.dirs)
	}

	if len(client.createCalls) != 1 {
		t.Fatalf("expected one helper, got %d", len(client.createCalls))
	}
	call := client.createCalls[0]
	if call.name != "db-backup" || call.config.Image != "ubuntu" {
		t.Fatalf("unexpected helper %s from %s", call.name, call.config.Image)
	}
	wantCmd := []string{"bash", "-c", "cd /var/lib/data && tar cf /backup/db_dbdata_2024-01-01T00:00:00+00:00.tar ."}
	if strings.Join(call.config.Cmd, "|") != strings.Join(wantCmd, "|") {
		t.Fatalf("unexpected cmd %q", call.config.Cmd)
	}
	if call.hostConfig.Binds[0] != "/srv/backups:/backup" || call.hostConfig.VolumesFrom[0] != "abc123" || !call.hostConfig.AutoRemove {
		t.Fatalf("unexpected host config %+v", call.hostConfig)
	}
	if len(client.startCalls) != 1 || client.startCalls[0] != "db-backup" {
		t.Fatalf("expected db-backup to be started, got %v", client.startCalls)
	}

	if len(report.Projects) != 1 || report.Projects[0].Status != backup.StatusStarted || report.Projects[0].HelperID != "helper-0" {
		t.Fatalf("unexpected report %+v", report.Projects)
	}
}

func TestBackupPassPullsUnknownImage(t *testing.T) {
	t.Parallel()

	client := newFakeDockerClient()
	client.setInspectMounts("abc123", container.MountPoint{Destination: "/data"})

	locator, err := compose.NewLocator(&composeStub{out: map[string]string{"db": "abc123"}}, "")
	if err != nil {
		t.Fatalf("NewLocator returned error: %v", err)
	}
	service := orchestrator.NewService(newEngineWithClient(client, Config{}), locator, orchestrator.Options{})

	report, err := service.Run(context.Background(), backup.RunConfiguration{
		BackupDirectory: "/srv/backups",
		Image:           "registry.local:5000/tools",
		Projects:        []backup.ProjectConfig{{Service: "db", DockerCompose: "/srv/app", BackupCommand: "cp -a . /backup/db"}},
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !report.Pulled || len(client.imagePulls) != 1 || client.imagePulls[0] != "registry.local:5000/tools" {
		t.Fatalf("expected the reference to be pulled, got %v", client.imagePulls)
	}
	if got := client.createCalls[0].config.Cmd[2]; got != "cd /data && cp -a . /backup/db" {
		t.Fatalf("unexpected override command %q", got)
	}
}
