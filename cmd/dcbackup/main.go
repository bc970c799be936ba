package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	cli "github.com/jawher/mow.cli"

	"github.com/shempignon/docker-compose-backup/internal/app/orchestrator"
	"github.com/shempignon/docker-compose-backup/internal/config"
	"github.com/shempignon/docker-compose-backup/internal/domain/backup"
	"github.com/shempignon/docker-compose-backup/internal/infra/compose"
	kafkainfra "github.com/shempignon/docker-compose-backup/internal/infra/kafka"
	"github.com/shempignon/docker-compose-backup/internal/infra/logging"
	"github.com/shempignon/docker-compose-backup/internal/ports"
	"github.com/shempignon/docker-compose-backup/internal/runtime/docker"
)

var version = "dev"

func main() {
	app := cli.App("dcbackup", "Back up the volumes of docker-compose services")
	app.Version("version", "dcbackup "+version)

	configPath := app.String(cli.StringOpt{
		Name:   "c config",
		Desc:   "Configuration file (TOML, or YAML for .yml/.yaml)",
		EnvVar: "CONFIG",
	})
	verbose := app.BoolOpt("v verbose", false, "Log every step")
	quiet := app.BoolOpt("q quiet", false, "Only log warnings and errors")
	logSpec := app.String(cli.StringOpt{
		Name:   "log-config",
		Desc:   "loggo specification, e.g. dcbackup.pull=DEBUG",
		EnvVar: "DCBACKUP_LOG",
	})
	continueOnError := app.BoolOpt("continue-on-error", false, "Attempt every project even after a failure")
	wait := app.BoolOpt("wait", false, "Wait for every helper container to finish")

	app.Action = func() {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := runOptions{
			ConfigPath:      *configPath,
			LogLevel:        logLevelFor(*verbose, *quiet),
			LogSpec:         *logSpec,
			ContinueOnError: *continueOnError,
			Wait:            *wait,
		}
		report, err := runBackup(ctx, opts, loadAppConfig(), os.Stderr)
		renderOutcome(os.Stdout, os.Stderr, report, err)
		if err != nil {
			cli.Exit(1)
		}
	}

	app.Command("reports", "Print the backup reports published to Kafka until a run summary arrives", func(cmd *cli.Cmd) {
		group := cmd.String(cli.StringOpt{
			Name:   "group",
			Value:  defaultKafkaGroupID,
			Desc:   "Consumer group",
			EnvVar: "KAFKA_GROUP_ID",
		})

		cmd.Action = func() {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := printReports(ctx, loadAppConfig(), *group, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, " %s %v\n", color.RedString("✗"), err)
				cli.Exit(1)
			}
		}
	})

	_ = app.Run(os.Args)
}

type runOptions struct {
	ConfigPath      string
	LogLevel        string
	LogSpec         string
	ContinueOnError bool
	Wait            bool
}

func runBackup(ctx context.Context, opts runOptions, appCfg appConfig, logOut io.Writer) (backup.RunReport, error) {
	if opts.ConfigPath == "" {
		return backup.RunReport{}, &backup.ConfigError{Msg: "no configuration file given, use --config or CONFIG"}
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return backup.RunReport{}, err
	}
	if opts.ContinueOnError {
		cfg.ContinueOnError = true
	}
	if opts.Wait {
		cfg.Wait = true
	}

	level, err := logging.ParseLevel(opts.LogLevel)
	if err != nil {
		return backup.RunReport{}, &backup.ConfigError{Msg: "log level", Err: err}
	}
	sink, err := logging.New(level, logOut)
	if err != nil {
		return backup.RunReport{}, err
	}
	if err := sink.Configure(opts.LogSpec); err != nil {
		return backup.RunReport{}, &backup.ConfigError{Msg: "log configuration", Err: err}
	}
	logger := sink.Logger("")

	engine, err := docker.New(ctx, docker.Config{
		PullPolicy:  cfg.PullPolicy,
		WaitTimeout: cfg.WaitTimeout,
	})
	if err != nil {
		return backup.RunReport{}, err
	}
	defer func() {
		if cerr := engine.Close(); cerr != nil {
			logger.Warningf("failed to close docker client: %v", cerr)
		}
	}()

	locator, err := compose.NewLocator(compose.ExecRunner{}, cfg.ComposeCommand)
	if err != nil {
		return backup.RunReport{}, err
	}

	var publisher ports.ReportPublisher
	if len(appCfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := kafkainfra.NewPublisher(kafkainfra.PublisherConfig{
			Brokers: appCfg.KafkaBrokers,
			Topic:   appCfg.ReportsTopic,
		})
		if err != nil {
			return backup.RunReport{}, fmt.Errorf("initialize kafka publisher: %w", err)
		}
		defer func() {
			if cerr := kafkaPublisher.Close(); cerr != nil {
				logger.Warningf("failed to close kafka publisher: %v", cerr)
			}
		}()
		publisher = kafkaPublisher
		logger.Debugf("publishing reports to %s on %v", appCfg.ReportsTopic, appCfg.KafkaBrokers)
	}

	service := orchestrator.NewService(engine, locator, orchestrator.Options{
		Sink:      sink,
		Publisher: publisher,
	})
	return service.Run(ctx, cfg)
}

func printReports(ctx context.Context, appCfg appConfig, group string, out io.Writer) error {
	if len(appCfg.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is not set")
	}

	consumer, err := kafkainfra.NewConsumer(kafkainfra.Config{
		Brokers: appCfg.KafkaBrokers,
		Topic:   appCfg.ReportsTopic,
		GroupID: group,
	})
	if err != nil {
		return fmt.Errorf("initialize kafka consumer: %w", err)
	}
	defer consumer.Close()

	for {
		report, err := consumer.NextReport(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("read report: %w", err)
		}
		fmt.Fprintln(out, formatReportLine(report))
	}
}
