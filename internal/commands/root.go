package commands

import (
	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/config"
)

// NewRootCommand creates the trovi command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "trovi",
		Short: "trovi - Manage research artifacts on Trovi",
		Long: `trovi is a command line client for the Trovi artifact registry.
It lists, inspects and updates artifacts, their versions and tags, and
packages new artifacts as RO-Crate archives.`,
		Version: buildinfo.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Set active profile from flag (env var is handled in config package)
			profile, _ := cmd.Flags().GetString(flagProfile)
			config.SetActiveProfile(profile)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addGlobalFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewTagCommand())
	rootCmd.AddCommand(NewArtifactCommand())
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewContentsCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewProfileCommand())

	return rootCmd
}
