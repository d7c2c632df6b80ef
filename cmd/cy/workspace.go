package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm/clause"

	"github.com/zulandar/calyard/internal/db"
	"github.com/zulandar/calyard/internal/models"
)

func newWorkspaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace management commands",
	}
	cmd.AddCommand(newWorkspaceAddCmd())
	return cmd
}

func newWorkspaceAddCmd() *cobra.Command {
	var (
		configPath string
		id         string
		name       string
		timezone   string
		members    []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create or update a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkspaceAdd(cmd, configPath, id, name, timezone, members)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to Calyard config file")
	cmd.Flags().StringVar(&id, "id", "", "workspace id (UUID, generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "workspace name")
	cmd.Flags().StringVar(&timezone, "timezone", "UTC", "IANA timezone")
	cmd.Flags().StringSliceVar(&members, "member", nil, "user id to grant access (repeatable)")
	cmd.MarkFlagRequired("name")
	return cmd
}

func runWorkspaceAdd(cmd *cobra.Command, configPath, id, name, timezone string, members []string) error {
	out := cmd.OutOrStdout()
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid workspace id %q: %w", id, err)
	}

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if err := db.SeedWorkspace(gormDB, id, name, timezone); err != nil {
		return err
	}
	for _, user := range members {
		m := models.WorkspaceMember{WorkspaceID: id, UserID: user, Role: "member"}
		if err := gormDB.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
			return fmt.Errorf("add member %s: %w", user, err)
		}
	}
	fmt.Fprintf(out, "Workspace %s (%s) ready with %d members\n", id, name, len(members))
	return nil
}
