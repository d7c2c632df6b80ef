package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/zulandar/calyard/internal/config"
	"github.com/zulandar/calyard/internal/db"
	"github.com/zulandar/calyard/internal/logx"
	"github.com/zulandar/calyard/internal/schedule"
	"github.com/zulandar/calyard/internal/store"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const defaultConfigPath = "calyard.yaml"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cy",
		Short: "Calyard: automatic calendar scheduling for habits and tasks",
		Long:  "Calyard places recurring habits and deadline-bound tasks onto workspace calendars.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBCmd())
	cmd.AddCommand(newWorkspaceCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScheduleCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cy %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// app is everything a command needs once config and database are up.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *store.Store
	service *schedule.Service
}

func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return cfg, gormDB, nil
}

func newApp(cmd *cobra.Command, configPath string) (*app, error) {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return nil, err
	}
	hours, err := schedule.HoursFromConfig(cfg.Hours)
	if err != nil {
		return nil, fmt.Errorf("load hours: %w", err)
	}
	log := logx.NewWriter(cmd.ErrOrStderr(), cfg.Log)
	st := store.New(gormDB, cfg.Scheduling.LockTimeout, log)
	return &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		service: schedule.NewService(st, store.NewSink(gormDB), hours, cfg.Scheduling, log),
	}, nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
