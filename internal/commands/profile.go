package commands

import (
	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/config"
)

// NewProfileCommand creates the profile command with subcommands
func NewProfileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage configuration profiles",
		Long:  "Manage multiple configuration profiles for switching between Trovi deployments.",
	}

	cmd.AddCommand(newProfileListCommand())
	cmd.AddCommand(newProfileUseCommand())
	cmd.AddCommand(newProfileCurrentCommand())
	cmd.AddCommand(newProfileRemoveCommand())

	return cmd
}

func newProfileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all profiles",
		Args:  cobra.NoArgs,
		RunE:  runProfileList,
	}
}

func newProfileUseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile-name>",
		Short: "Switch to a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileUse,
	}
}

func newProfileCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current active profile",
		Args:  cobra.NoArgs,
		RunE:  runProfileCurrent,
	}
}

func newProfileRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <profile-name>",
		Short: "Remove a profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfileRemove,
	}
}

func runProfileList(cmd *cobra.Command, args []string) error {
	styledOut := newOutputHelper(cmd).styled()

	f, err := config.LoadFile()
	if err != nil {
		return err
	}

	names := f.ProfileNames()
	if len(names) == 0 {
		styledOut.Muted("No profiles configured. Run 'trovi config set' to create one.")
		return nil
	}

	active := config.ActiveProfileName(f)
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		p, _ := f.GetProfile(name)
		marker := ""
		if name == active {
			marker = "*"
		}
		rows = append(rows, []string{marker, name, p.GetBaseURL(), p.KeycloakURL})
	}
	styledOut.Table([]string{"", "Profile", "Trovi", "Identity"}, rows)
	return nil
}

func runProfileUse(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	profileName := args[0]

	f, err := config.LoadFile()
	if err != nil {
		return err
	}
	if err := f.SetDefaultProfile(profileName); err != nil {
		return err
	}
	if err := config.SaveFile(ctx, f); err != nil {
		return err
	}

	newOutputHelper(cmd).styled().Success("Switched to profile: " + profileName)
	return nil
}

func runProfileCurrent(cmd *cobra.Command, args []string) error {
	f, err := config.LoadFile()
	if err != nil {
		return err
	}

	newOutputHelper(cmd).println(config.ActiveProfileName(f))
	return nil
}

func runProfileRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	profileName := args[0]

	f, err := config.LoadFile()
	if err != nil {
		return err
	}
	if err := f.DeleteProfile(profileName); err != nil {
		return err
	}
	if err := config.SaveFile(ctx, f); err != nil {
		return err
	}

	newOutputHelper(cmd).styled().Success("Removed profile: " + profileName)
	return nil
}
