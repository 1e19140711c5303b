// launchdash - interactive dashboard over SpaceX launch records.
//
// Usage:
//
//	launchdash [--config path] [--addr :8050] [--data spacex_launch_dash.csv]
//
// Flags:
//
//	--config  Path to launchdash.yaml (optional, defaults make the binary runnable as is)
//	--addr    Override server.addr from config
//	--data    Override source.path from config
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/ruslano69/launchdash/internal/api"
	"github.com/ruslano69/launchdash/pkg/dashboard"
	"github.com/ruslano69/launchdash/pkg/resultlog"
	"github.com/ruslano69/launchdash/pkg/source"
)

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "path to config file")
		addr       = pflag.String("addr", "", "listen address override (e.g. :8050)")
		data       = pflag.StringP("data", "d", "", "data source path override (file or s3://bucket/key)")
	)
	pflag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("config load failed")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *data != "" {
		cfg.Source.Path = *data
		cfg.Source.Type = ""
	}
	if err := cfg.validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	setupLogging(cfg.Log)

	cfg.Source.Retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("data load failed, retrying")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, loadErr := source.Load(ctx, cfg.Source)
	publishResult(ctx, cfg, res, loadErr)
	if loadErr != nil {
		log.Fatal().Err(loadErr).Msg("data load failed")
	}
	log.Info().
		Str("source", res.Source).
		Int("rows", res.Rows).
		Strs("sites", res.Table.Sites()).
		Str("checksum", res.Checksum).
		Str("raw_checksum", res.RawChecksum).
		Dur("took", res.Duration).
		Msg("launch table loaded")

	dash, err := dashboard.New(res.Table, cfg.Dashboard.Options())
	if err != nil {
		log.Fatal().Err(err).Msg("dashboard setup failed")
	}

	router, err := api.NewRouter(dash, api.Info{
		Source:      res.Source,
		Checksum:    res.Checksum,
		RawChecksum: res.RawChecksum,
		Columns:     cfg.Source.Columns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup failed")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.Addr).Str("config", *configPath).Msg("launchdash started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped")
}

// setupLogging applies the configured level and format to the global logger.
func setupLogging(c LogSection) {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// publishResult announces the load outcome on Redis when enabled.
// Publishing never stops the dashboard.
func publishResult(ctx context.Context, cfg *Config, res *source.Result, loadErr error) {
	if !cfg.ResultLog.Enabled {
		return
	}
	pub := resultlog.NewRedisPublisher(cfg.ResultLog)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result := resultlog.NewLoadResult(cfg.ResultLog.Name, cfg.Source.Path, res, loadErr, time.Now())
	if err := pub.Publish(ctx, result); err != nil {
		log.Warn().Err(err).Str("redis", cfg.ResultLog.Address).Msg("result log publish failed")
		return
	}
	log.Debug().Str("dataset", cfg.ResultLog.Name).Str("status", result.Status).Msg("load result published")
}
