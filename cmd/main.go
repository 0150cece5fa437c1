package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/CATRANCO-Fleet-Management-System/tracker/config"
	"github.com/CATRANCO-Fleet-Management-System/tracker/db"
	"github.com/CATRANCO-Fleet-Management-System/tracker/service"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config failed", "error", err)
		os.Exit(1)
	}

	logger := slog.New(service.NewContextHandler(newHandler(cfg.Logging)))
	slog.SetDefault(logger)

	// Database pool
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	queries := db.New(pool)

	var directory service.DirectoryLookup = service.NewPostgresDirectory(queries)

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.Error("invalid redis URL", "error", err)
			os.Exit(1)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
		directory = service.NewCachedDirectory(directory, rdb, cfg.Redis.CacheTTL)
	}

	// Broadcast facilities
	hub := service.NewHub()
	fanout := service.NewFanout().Add("websocket", hub)

	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic != "" {
		producer := service.NewKafkaBroadcaster(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer producer.Close()
		fanout.Add("kafka", producer)
	}

	if cfg.NATS.Enabled {
		nc, err := service.DialNATS(cfg.NATS.URL)
		if err != nil {
			slog.Error("nats connection failed", "error", err)
			os.Exit(1)
		}
		defer nc.Drain()
		fanout.Add("nats", service.NewNATSBroadcaster(nc, cfg.NATS.SubjectPrefix))
	}

	zones := make([]service.Zone, len(cfg.Blacklist.Zones))
	for i, z := range cfg.Blacklist.Zones {
		zones[i] = service.Zone{Latitude: z.Latitude, Longitude: z.Longitude, Tolerance: z.Tolerance}
	}

	pipeline := service.NewPipeline(service.PipelineDeps{
		Blacklist: service.NewBlacklist(zones),
		Directory: directory,
		Dispatch:  service.NewPostgresDispatch(queries),
		Broadcast: fanout,
		Pacer:     service.NewPacer(cfg.Publish.MinInterval, cfg.Publish.GlobalRate, cfg.Publish.GlobalBurst),
		Logger:    logger,
	})

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var kafkaConsumer *service.KafkaConsumer
	if cfg.Kafka.Source.Enabled {
		kafkaConsumer = service.NewKafkaConsumer(service.KafkaConsumerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Source.Topic,
			GroupID:      cfg.Kafka.Source.GroupID,
			BatchSize:    cfg.Kafka.Source.BatchSize,
			BatchTimeout: cfg.Kafka.Source.BatchTimeout,
		}, func(ctx context.Context, batch []json.RawMessage) {
			resp := pipeline.Process(ctx, batch)
			slog.Info("processed stream batch", "count", len(resp.Responses))
		})
		go kafkaConsumer.Run(ctx)
	}

	handler := service.NewHandler(pipeline, logger)
	router := service.NewRouter(handler, hub, healthHandler(pool, rdb))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr,
		"blacklist_zones", len(zones),
		"min_interval", cfg.Publish.MinInterval,
		"redis", cfg.Redis.Enabled,
		"nats", cfg.NATS.Enabled,
		"kafka_source", cfg.Kafka.Source.Enabled,
	)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		srv.Shutdown(shutdownCtx)
		if kafkaConsumer != nil {
			kafkaConsumer.Close()
		}
		hub.CloseAll()
		close(done)
	}()

	slog.Info("tracker service listening", "addr", cfg.Server.Addr)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("shutdown complete")
}

func newHandler(cfg config.LoggingConfig) slog.Handler {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

func healthHandler(pool *pgxpool.Pool, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := pool.Ping(r.Context()); err != nil {
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}
