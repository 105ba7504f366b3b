package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/ecopredict/internal/alarm"
	"github.com/rshade/ecopredict/internal/config"
	"github.com/rshade/ecopredict/internal/logging"
	"github.com/rshade/ecopredict/internal/server"
)

type serveParams struct {
	address     string
	watchConfig bool
	noAlarm     bool
	seed        int64
}

// NewServeCmd creates the serve command, which runs the HTTP API alongside
// the usage monitor.
func NewServeCmd() *cobra.Command {
	var params serveParams

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the prediction HTTP API",
		Long: `Serves the prediction API, Prometheus metrics and a health check.

When the alarm is enabled in config the usage monitor runs alongside the
server and its state is available on /api/v1/alarm. With --watch-config the
config file is reloaded on change and new alarm settings and log level take
effect immediately.`,
		Example: `  ecopredict serve --address :8080
  ecopredict serve --watch-config`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.address, "address", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&params.watchConfig, "watch-config", false, "reload the config file when it changes")
	cmd.Flags().BoolVar(&params.noAlarm, "no-alarm", false, "do not run the usage monitor")
	cmd.Flags().Int64Var(&params.seed, "seed", 0, "seed for the simulated usage source")

	return cmd
}

func runServe(cmd *cobra.Command, params *serveParams) error {
	cfg := config.GetGlobalConfig()
	log := logging.FromContext(cmd.Context())

	addr := cfg.Server.Address
	if cmd.Flags().Changed("address") {
		addr = params.address
	}
	watch := cfg.Server.WatchConfig || params.watchConfig

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	predictor, cleanup := openPredictor(ctx, cfg, predictorOptions{})
	defer cleanup()

	settings := alarm.SettingsFromConfig(cfg.Alarm)
	monitor := alarm.NewMonitor(settings)
	srv := server.New(predictor,
		server.WithMonitor(monitor),
		server.WithLogger(logging.ComponentLogger(*log, "server")),
	)

	var src alarm.Source
	if !params.noAlarm {
		var closeSrc func()
		var err error
		if src, closeSrc, err = openUsageSource(ctx, cfg.Alarm, params.seed); err != nil {
			return err
		}
		defer closeSrc()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx, addr, time.Duration(cfg.Server.ReadTimeoutSeconds)*time.Second)
	})

	if src != nil {
		g.Go(func() error {
			return monitor.Run(gctx, srv.InstrumentSource(src), srv.RecordAlarm)
		})
	}

	if watch && cfg.Path() != "" {
		g.Go(func() error {
			err := config.Watch(gctx, cfg.Path(), func(next *config.Config) {
				applyReload(gctx, monitor, next)
			})
			if err != nil {
				log.Warn().Ctx(gctx).Err(err).Str("path", cfg.Path()).Msg("config watch disabled")
			}
			return nil
		})
	}

	cmd.Printf("Serving on %s\n", addr)
	return g.Wait()
}

// applyReload pushes reloadable settings from a changed config file.
func applyReload(ctx context.Context, monitor *alarm.Monitor, next *config.Config) {
	config.SetGlobalConfig(next)
	monitor.UpdateSettings(alarm.SettingsFromConfig(next.Alarm))

	if lvl, err := zerolog.ParseLevel(next.Logging.Level); err == nil && next.Logging.Level != "" {
		zerolog.SetGlobalLevel(lvl)
	}
	logging.FromContext(ctx).Info().Ctx(ctx).
		Str("component", "config").
		Float64("alarm_threshold", next.Alarm.Threshold).
		Str("log_level", next.Logging.Level).
		Msg("configuration reloaded")
}
