package main

import (
	"os"
	"strings"
)

const (
	defaultKafkaTopic   = "backup-reports"
	defaultKafkaGroupID = "dcbackup-reports"
)

type appConfig struct {
	KafkaBrokers []string
	ReportsTopic string
}

func loadAppConfig() appConfig {
	return appConfig{
		KafkaBrokers: parseBrokerList(os.Getenv("KAFKA_BROKERS")),
		ReportsTopic: envOrDefault("KAFKA_TOPIC", defaultKafkaTopic),
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseBrokerList(raw string) []string {
	fields := strings.Split(raw, ",")
	brokers := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

func logLevelFor(verbose, quiet bool) string {
	switch {
	case verbose:
		return "DEBUG"
	case quiet:
		return "WARNING"
	default:
		return "INFO"
	}
}
