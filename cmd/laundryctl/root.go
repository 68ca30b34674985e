// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ManuGH/golaundry/internal/config"
	"github.com/ManuGH/golaundry/internal/laundry"
	xglog "github.com/ManuGH/golaundry/internal/log"
	"github.com/ManuGH/golaundry/internal/telemetry"
	"github.com/ManuGH/golaundry/internal/transport"
	"github.com/ManuGH/golaundry/internal/version"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

const serviceName = "laundryctl"

type rootOptions struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           serviceName,
		Short:         "Inspect and start laundry machines through the vendor API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	pf.StringVar(&opts.envFile, "env-file", ".env", "path to a .env file (ignored if missing)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	root.AddCommand(
		newStatusCmd(opts),
		newKeysCmd(opts),
		newTopoffCmd(opts),
		newVendCmd(opts),
		newDecodeRequestCmd(),
		newVersionCmd(),
	)
	return root
}

// loadDotEnv loads environment variables from path. A missing file is not an error.
func loadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// loadConfig resolves the effective configuration and installs the logger.
func (o *rootOptions) loadConfig(logOut io.Writer) (config.AppConfig, error) {
	if err := loadDotEnv(o.envFile); err != nil {
		return config.AppConfig{}, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.NewLoader(o.configPath, version.Version).Load()
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(o.logLevel)); err != nil {
			return cfg, fmt.Errorf("invalid --log-level %q", o.logLevel)
		}
		cfg.LogLevel = strings.ToLower(o.logLevel)
	}
	xglog.Reconfigure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  logOut,
		Service: serviceName,
		Version: cfg.Version,
	})
	return cfg, nil
}

// runtime is everything a vendor command needs: a logged-in client plus
// the resources that must be released afterwards.
type runtime struct {
	cfg      config.AppConfig
	client   *laundry.Client
	http     *transport.HTTPClient
	provider *telemetry.Provider
	logger   zerolog.Logger
}

// start loads configuration, starts telemetry and logs in.
func (o *rootOptions) start(ctx context.Context, cmd *cobra.Command) (*runtime, error) {
	cfg, err := o.loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if err := config.RequireCredentials(cfg); err != nil {
		return nil, fmt.Errorf("credentials missing (set %s and %s): %w", config.EnvUsername, config.EnvPassword, err)
	}

	logger := xglog.WithComponent(serviceName)
	provider, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.Version,
		ExporterType:   cfg.Telemetry.Exporter,
		Endpoint:       cfg.Telemetry.Endpoint,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("start telemetry: %w", err)
	}

	httpClient := transport.NewHTTPClient(transport.Options{
		Timeout:          cfg.Timeout,
		UserAgent:        cfg.UserAgent,
		RateLimit:        rate.Limit(cfg.RateLimit),
		RateLimitBurst:   cfg.RateBurst,
		BreakerThreshold: cfg.Breaker.Threshold,
		BreakerReset:     cfg.Breaker.Reset,
	})
	rt := &runtime{
		cfg:      cfg,
		http:     httpClient,
		provider: provider,
		logger:   logger,
		client: laundry.New(laundry.Options{
			Endpoint:  cfg.Endpoint,
			Transport: httpClient,
		}),
	}

	logger.Debug().Str(xglog.FieldEndpoint, cfg.Endpoint).Msg("logging in")
	if err := rt.client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		rt.close()
		return nil, fmt.Errorf("login: %w", err)
	}
	return rt, nil
}

func (r *runtime) close() {
	r.http.CloseIdleConnections()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.provider.Shutdown(ctx); err != nil {
		r.logger.Warn().Err(err).Msg("telemetry shutdown failed")
	}
}
