package app

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Temutjin2k/vehicle-tracker/config"
	tracker "github.com/Temutjin2k/vehicle-tracker/internal/app"
	"github.com/Temutjin2k/vehicle-tracker/pkg/logger"
)

type options struct {
	configPath string
}

// NewTrackerCommand creates the root command of the vehicle tracker.
func NewTrackerCommand(ctx context.Context) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Live tracking view for one vehicle",
		Long: `tracker follows a single device by IMEI: it loads the last known
state from the platform API, keeps it current from the push socket and
streams map commands to renderers attached at /ws/map.

Settings come from flags, TRACKER_* environment variables (TRACKER_PUSH_URL,
TRACKER_PLATFORM_TOKEN, ...) and the optional yaml file, in that order.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ctx, opts, cmd.Flags())
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&opts.configPath, "config", "", "Path to the config yaml file")
	fs.String("imei", "", "IMEI of the tracked device")
	fs.String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
	fs.String("port", "", "HTTP port for the map socket and the API")
	fs.String("token", "", "Session token for the platform API and the push socket")

	return cmd
}

func run(ctx context.Context, opts *options, flags *pflag.FlagSet) error {
	cfg, err := config.NewConfig(opts.configPath, flags)
	if err != nil {
		log := logger.InitLogger("vehicle-tracker", logger.LevelInfo)
		log.Error(ctx, "failed to configure application", err)
		return err
	}

	log := logger.InitLogger(cfg.ServiceName, cfg.LogLevel)

	application, err := tracker.NewApplication(ctx, *cfg, log)
	if err != nil {
		log.Error(ctx, "failed to init application", err)
		return err
	}

	if err := application.Run(ctx); err != nil {
		log.Error(ctx, "failed to run application", err)
		return err
	}
	return nil
}
