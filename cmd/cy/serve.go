package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zulandar/calyard/internal/api"
	"github.com/zulandar/calyard/internal/cronrun"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scheduling API and run the cron scheduler",
		Long:  "Starts the HTTP API. When cron is enabled, every auto-scheduling workspace is committed on the configured schedule.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Calyard config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, configPath string, port int) error {
	a, err := newApp(cmd, configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = a.cfg.Server.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	var wg sync.WaitGroup
	if a.cfg.Cron.Enabled {
		runner, err := cronrun.New(a.cfg.Cron.Schedule, nil, a.service, a.store, a.log)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			runner.Run(ctx)
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Cron schedule %q enabled\n", a.cfg.Cron.Schedule)
	}

	err = api.Start(ctx, api.StartOpts{
		Scheduler:  a.service,
		Directory:  a.store,
		Port:       port,
		CronSecret: a.cfg.Server.CronSecret,
		RateLimit:  a.cfg.RateLimit,
		Log:        a.log,
		Out:        cmd.OutOrStdout(),
	})
	cancel()
	wg.Wait()
	return err
}
