package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zulandar/calyard/internal/schedule"
)

const eventLayout = "Mon 2006-01-02 15:04"

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run, preview and inspect workspace schedules",
	}

	cmd.AddCommand(newScheduleRunCmd())
	cmd.AddCommand(newSchedulePreviewCmd())
	cmd.AddCommand(newScheduleStatusCmd())
	return cmd
}

type scheduleFlags struct {
	configPath string
	workspace  string
	window     int
	force      bool
	asJSON     bool
}

func (f *scheduleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", defaultConfigPath, "path to Calyard config file")
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "workspace id (required)")
	cmd.Flags().IntVar(&f.window, "window", 0, "scheduling window in days (7-90, default from config)")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the result as JSON")
	cmd.MarkFlagRequired("workspace")
}

func newScheduleRunCmd() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Schedule a workspace and write the events",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleRun(cmd, f)
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.force, "force", false, "discard unlocked future engine events first")
	return cmd
}

func newSchedulePreviewCmd() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what a run would schedule without writing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedulePreview(cmd, f)
		},
	}
	f.register(cmd)
	return cmd
}

func newScheduleStatusCmd() *cobra.Command {
	var f scheduleFlags
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last run of a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScheduleStatus(cmd, f)
		},
	}
	cmd.Flags().StringVarP(&f.configPath, "config", "c", defaultConfigPath, "path to Calyard config file")
	cmd.Flags().StringVarP(&f.workspace, "workspace", "w", "", "workspace id (required)")
	cmd.MarkFlagRequired("workspace")
	return cmd
}

func (f scheduleFlags) options() schedule.Options {
	opts := schedule.Options{Force: f.force}
	if f.window != 0 {
		opts.WindowDays = schedule.ClampWindowDays(f.window)
	}
	return opts
}

func runScheduleRun(cmd *cobra.Command, f scheduleFlags) error {
	a, err := newApp(cmd, f.configPath)
	if err != nil {
		return err
	}
	res, err := a.service.Commit(context.Background(), f.workspace, f.options())
	if err != nil {
		return fmt.Errorf("schedule run: %w", err)
	}
	out := cmd.OutOrStdout()
	if f.asJSON {
		return writeJSON(out, res)
	}
	printResult(out, res)
	return nil
}

func runSchedulePreview(cmd *cobra.Command, f scheduleFlags) error {
	a, err := newApp(cmd, f.configPath)
	if err != nil {
		return err
	}
	res, err := a.service.Preview(context.Background(), f.workspace, f.options())
	if err != nil {
		return fmt.Errorf("schedule preview: %w", err)
	}
	out := cmd.OutOrStdout()
	if f.asJSON {
		return writeJSON(out, res)
	}
	printResult(out, res)
	if len(res.Steps) > 0 {
		fmt.Fprintln(out, "\nSteps:")
		for _, s := range res.Steps {
			fmt.Fprintf(out, "  %3d  %-10s %s\n", s.Step, s.Type, s.Description)
		}
	}
	return nil
}

func runScheduleStatus(cmd *cobra.Command, f scheduleFlags) error {
	a, err := newApp(cmd, f.configPath)
	if err != nil {
		return err
	}
	st, err := a.store.Status(context.Background(), f.workspace)
	if err != nil {
		return fmt.Errorf("schedule status: %w", err)
	}
	out := cmd.OutOrStdout()
	if st.LastScheduledAt == nil {
		fmt.Fprintf(out, "Workspace %s has never been scheduled\n", f.workspace)
	} else {
		fmt.Fprintf(out, "Last run:   %s (%s)\n", st.LastScheduledAt.Format(time.RFC3339), st.LastStatus)
		fmt.Fprintf(out, "Message:    %s\n", st.LastMessage)
		s := st.Statistics
		fmt.Fprintf(out, "Statistics: %d habits, %d tasks, %d events, %d bumped, %d rescheduled over %d days\n",
			s.HabitsScheduled, s.TasksScheduled, s.EventsCreated, s.BumpedHabits, s.RescheduledHabits, s.WindowDays)
	}
	fmt.Fprintf(out, "Schedulable: %d active habits, %d auto-schedule tasks\n", st.ActiveHabits, st.AutoScheduleTasks)
	return nil
}

func printResult(out io.Writer, res *schedule.Result) {
	fmt.Fprintf(out, "%s: %s\n", res.Status, res.Message)
	if len(res.Events) > 0 {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\nSTART\tEND\tSOURCE\tTITLE")
		for _, e := range res.Events {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Start.Format(eventLayout), e.End.Format("15:04"), e.Source, e.Title)
		}
		w.Flush()
	}
	for _, b := range res.Bumps {
		fmt.Fprintf(out, "Bumped %q on %s for task %q\n", b.HabitName, b.OccurrenceDate, b.TaskName)
	}
	if len(res.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
