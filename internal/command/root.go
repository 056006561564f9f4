// Package command wires the greenroom CLI.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "greenroom"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Greenroom - band chat client",
		Long:          "Greenroom is the chat client for the greenroom band app.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("log-level", "", "override configured log level")

	cmd.AddCommand(
		NewInitCmd(),
		NewChatCmd(),
	)
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd(Version).Execute()
}
