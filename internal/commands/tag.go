package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTagCommand creates the tag command
func NewTagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Manage artifact tags (list, create)",
	}

	cmd.AddCommand(newTagListCommand())
	cmd.AddCommand(newTagCreateCommand())

	return cmd
}

func newTagListCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tags artifacts can carry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagList(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newTagCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create <tag>",
		Short: "Create a new tag (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTagCreate(cmd, args[0])
		},
	}
}

func runTagList(cmd *cobra.Command, jsonOutput bool) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd)

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	tags, err := fetch(cmd, "Fetching tags", jsonOutput, func() ([]string, error) {
		return client.ListTags(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}

	if jsonOutput {
		return out.printJSON(tags)
	}

	rows := make([][]string, 0, len(tags))
	for _, tag := range tags {
		rows = append(rows, []string{tag})
	}
	out.styled().Table([]string{"Tag"}, rows)
	return nil
}

func runTagCreate(cmd *cobra.Command, tag string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	created, err := client.CreateTag(ctx, tag)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}

	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Created tag %s", created))
	return nil
}
