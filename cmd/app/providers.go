package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/comfortlab/roomsense/internal/domain/label"
	"github.com/comfortlab/roomsense/internal/domain/monitor"
	"github.com/comfortlab/roomsense/internal/domain/occupancy"
	"github.com/comfortlab/roomsense/internal/infra/config"
	"github.com/comfortlab/roomsense/internal/infra/homeassistant"
	"github.com/comfortlab/roomsense/internal/infra/influxhistory"
	"github.com/comfortlab/roomsense/internal/infra/labelarchive"
	"github.com/comfortlab/roomsense/internal/infra/labelqueue"
	"github.com/comfortlab/roomsense/internal/infra/labelrepo"
	httpiface "github.com/comfortlab/roomsense/internal/interface/http"
)

func provideStoreOptions(cfg *config.Config) monitor.Options {
	return monitor.Options{
		RefreshInterval: cfg.Store.RefreshInterval,
		DayStartHour:    cfg.Store.DayStartHour,
		Occupancy: occupancy.Params{
			BaselineCO2:  cfg.Occupancy.BaselineCO2,
			EmissionRate: cfg.Occupancy.EmissionRate,
			Elapsed:      cfg.Occupancy.Interval,
		},
	}
}

func provideLiveSource(cfg *config.Config, logger *slog.Logger) monitor.LiveSource {
	return homeassistant.NewClient(cfg.HomeAssistant.BaseURL, cfg.HomeAssistant.Token, cfg.HomeAssistant.Timeout, logger)
}

func provideHistorySource(cfg *config.Config, logger *slog.Logger) monitor.HistorySource {
	return influxhistory.NewSource(cfg.Influx, logger)
}

func provideStore(live monitor.LiveSource, history monitor.HistorySource, opts monitor.Options, logger *slog.Logger) *monitor.Store {
	return monitor.New(live, history, opts, logger)
}

func provideLabelRepository(cfg *config.Config, logger *slog.Logger) label.Repository {
	fallback := labelrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Labels.Postgres.DSN)
	if dsn == "" {
		logger.Info("labels postgres dsn not set, using memory repository")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory repository", "error", err)
		return fallback
	}
	if cfg.Labels.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Labels.Postgres.MaxConns
	}
	if cfg.Labels.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Labels.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("labels postgres repository enabled")
	return labelrepo.NewPostgresRepository(pool)
}

func provideLabelQueue(cfg *config.Config, repo label.Repository, logger *slog.Logger) label.Queue {
	if cfg.Labels.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Labels.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, using immediate queue", "error", err)
			return labelqueue.NewImmediateQueue(repo)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, using immediate queue", "error", err)
			return labelqueue.NewImmediateQueue(repo)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, using immediate queue", "error", err)
		} else {
			logger.Info("label valkey queue enabled", "addr", cfg.Labels.Valkey.Addr)
			queue := labelqueue.NewValkeyQueue(client, repo, "", logger)
			queue.Start()
			return queue
		}
	}
	return labelqueue.NewImmediateQueue(repo)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideLabelArchive(cfg *config.Config, logger *slog.Logger) label.Archive {
	if strings.TrimSpace(cfg.Labels.Archive.Endpoint) == "" {
		logger.Info("archive endpoint not set, using memory archive")
		return labelarchive.NewMemoryArchive()
	}
	archive, err := labelarchive.NewS3Archive(cfg.Labels.Archive, logger)
	if err != nil {
		logger.Error("failed to initialize object storage, using memory archive", "error", err)
		return labelarchive.NewMemoryArchive()
	}
	logger.Info("label archive enabled", "bucket", cfg.Labels.Archive.Bucket)
	return archive
}

func provideLabelService(queue label.Queue, repo label.Repository, archive label.Archive, logger *slog.Logger) *label.Service {
	return label.NewService(queue, repo, archive, logger, nil)
}

func provideHandler(store *monitor.Store, labels *label.Service, logger *slog.Logger) *httpiface.Handler {
	return httpiface.NewHandler(store, labels, logger, nil)
}
