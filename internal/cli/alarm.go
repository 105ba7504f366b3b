package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/ecopredict/internal/alarm"
	"github.com/rshade/ecopredict/internal/config"
)

type alarmParams struct {
	source    string
	threshold float64
	duration  time.Duration
	interval  time.Duration
	cooldown  time.Duration
	broker    string
	topic     string
	seed      int64
}

// NewAlarmCmd creates the alarm command, which watches usage and prints an
// alert whenever it crosses the threshold.
func NewAlarmCmd() *cobra.Command {
	var params alarmParams

	cmd := &cobra.Command{
		Use:   "alarm",
		Short: "Watch energy usage and alert when it is excessive",
		Long: `Polls a usage source and prints an alert whenever usage exceeds the
threshold. Alerts are rate-limited by the cooldown so a sustained spike is
reported once per cooldown period.

The simulated source generates plausible household usage; the mqtt source
subscribes to a broker topic carrying usage percentages.`,
		Example: `  # Watch simulated usage for one minute
  ecopredict alarm --duration 1m

  # Alert above 85% from an MQTT feed
  ecopredict alarm --source mqtt --broker tcp://localhost:1883 --topic home/usage --threshold 85`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAlarm(cmd, &params)
		},
	}

	cmd.Flags().StringVar(&params.source, "source", "", "usage source: simulated or mqtt (default from config)")
	cmd.Flags().Float64Var(&params.threshold, "threshold", 0, "usage percent above which to alert (default from config)")
	cmd.Flags().DurationVar(&params.duration, "duration", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().DurationVar(&params.interval, "interval", 0, "polling interval (default from config)")
	cmd.Flags().DurationVar(&params.cooldown, "cooldown", 0, "minimum time between alerts (default from config)")
	cmd.Flags().StringVar(&params.broker, "broker", "", "MQTT broker URL (default from config)")
	cmd.Flags().StringVar(&params.topic, "topic", "", "MQTT usage topic (default from config)")
	cmd.Flags().Int64Var(&params.seed, "seed", 0, "seed for the simulated source (0 uses the clock)")

	return cmd
}

// applyTo overlays the flags the user set onto the alarm config section.
func (p *alarmParams) applyTo(cmd *cobra.Command, c config.AlarmConfig) (config.AlarmConfig, alarm.Settings) {
	if cmd.Flags().Changed("source") {
		c.Source = p.source
	}
	if cmd.Flags().Changed("broker") {
		c.MQTT.Broker = p.broker
	}
	if cmd.Flags().Changed("topic") {
		c.MQTT.Topic = p.topic
	}

	s := alarm.SettingsFromConfig(c)
	s.Enabled = true
	if cmd.Flags().Changed("threshold") {
		s.Threshold = p.threshold
	}
	if cmd.Flags().Changed("interval") {
		s.Interval = p.interval
	}
	if cmd.Flags().Changed("cooldown") {
		s.Cooldown = p.cooldown
	}
	return c, s
}

func runAlarm(cmd *cobra.Command, params *alarmParams) error {
	alarmCfg, settings := params.applyTo(cmd, config.GetGlobalConfig().Alarm)
	if err := settings.Validate(); err != nil {
		return validationError(err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if params.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, params.duration)
		defer cancel()
	}

	src, closeSrc, err := openUsageSource(ctx, alarmCfg, params.seed)
	if err != nil {
		return err
	}
	defer closeSrc()

	monitor := alarm.NewMonitor(settings)
	count := 0
	cmd.Printf("Watching energy usage (threshold %g%%). Press Ctrl+C to stop.\n", settings.Threshold)

	if err := monitor.Run(ctx, src, func(ev alarm.Event) {
		count++
		printAlarm(cmd, ev)
	}); err != nil {
		return err
	}

	last := monitor.Last()
	if last.Timestamp.IsZero() {
		cmd.Printf("%d alert(s) raised; no usage readings received\n", count)
	} else {
		cmd.Printf("%d alert(s) raised; last usage %.1f%%\n", count, last.Usage)
	}
	return nil
}

func printAlarm(cmd *cobra.Command, ev alarm.Event) {
	cmd.Printf("[%s] %s %s\n  %s\n",
		ev.Time.Format(time.TimeOnly), ev.Message(), ev.Description(), alarm.ReduceUsageHint)
}

// openUsageSource builds the configured usage source. The returned func
// releases it.
func openUsageSource(ctx context.Context, c config.AlarmConfig, seed int64) (alarm.Source, func(), error) {
	switch c.Source {
	case config.SourceSimulated, "":
		return alarm.NewSimulatedSource(seed), func() {}, nil
	case config.SourceMQTT:
		src := alarm.NewMQTTSource(c.MQTT)
		if err := src.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return nil, nil, validationError(fmt.Errorf("unknown usage source %q", c.Source))
	}
}
