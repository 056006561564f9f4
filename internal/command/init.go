package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/service"
)

// NewInitCmd writes the client config file.
func NewInitCmd() *cobra.Command {
	var config core.Config

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the greenroom config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.UserID == "" || config.DisplayName == "" {
				return fmt.Errorf("--user and --name are required")
			}
			if config.BackendURL != "" {
				normalized, err := service.NormalizeBaseURL(config.BackendURL)
				if err != nil {
					return err
				}
				config.BackendURL = normalized
			}
			if err := core.WriteConfig(config); err != nil {
				return err
			}
			cmd.Println("config written")
			return nil
		},
	}

	cmd.Flags().StringVar(&config.UserID, "user", "", "your user id")
	cmd.Flags().StringVar(&config.DisplayName, "name", "", "your display name")
	cmd.Flags().StringVar(&config.BackendURL, "backend", "", "backend base url")
	cmd.Flags().StringVar(&config.Token, "token", "", "backend API token")
	cmd.Flags().StringVar(&config.DataDir, "data-dir", "", "local data directory")
	cmd.Flags().StringVar(&config.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}
