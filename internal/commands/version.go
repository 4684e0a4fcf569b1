package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/trovi"
	"github.com/chameleoncloud/trovi/internal/ui/components"
	"github.com/chameleoncloud/trovi/internal/urn"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Manage artifact versions (list, create, delete, migrate, metric)",
	}

	cmd.AddCommand(newVersionListCommand())
	cmd.AddCommand(newVersionCreateCommand())
	cmd.AddCommand(newVersionDeleteCommand())
	cmd.AddCommand(newVersionMigrateCommand())
	cmd.AddCommand(newVersionMetricCommand())

	return cmd
}

func newVersionListCommand() *cobra.Command {
	var sharingKey string

	cmd := &cobra.Command{
		Use:   "list <uuid>",
		Short: "List the versions of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionList(cmd, args[0], sharingKey)
		},
	}

	cmd.Flags().StringVar(&sharingKey, "sharing-key", "", "Sharing key for private artifacts")

	return cmd
}

func newVersionCreateCommand() *cobra.Command {
	var links []string
	var createdAt string

	cmd := &cobra.Command{
		Use:   "create <uuid> <contents-urn>",
		Short: "Register new contents as a version",
		Long: `Register new contents as a version of an artifact. Links are given as
label=urn. --created-at backdates the version and requires admin rights.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionCreate(cmd, args[0], args[1], links, createdAt)
		},
	}

	cmd.Flags().StringArrayVar(&links, "link", nil, "Link as label=urn (repeatable)")
	cmd.Flags().StringVar(&createdAt, "created-at", "", "Creation time (RFC 3339 or YYYY-MM-DD)")

	return cmd
}

func newVersionDeleteCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <uuid> <slug>",
		Short: "Delete a version",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionDelete(cmd, args[0], args[1], yes)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newVersionMigrateCommand() *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "migrate <uuid> <slug>",
		Short: "Copy a version to an archival backend",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionMigrate(cmd, args[0], args[1], backend)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", trovi.DefaultMigrationBackend, "Archival backend")

	return cmd
}

func newVersionMetricCommand() *cobra.Command {
	var origin, metric string
	var amount int

	cmd := &cobra.Command{
		Use:   "metric <uuid> <slug>",
		Short: "Increment a version metric",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersionMetric(cmd, args[0], args[1], origin, metric, amount)
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "Origin token identifying the caller")
	cmd.Flags().StringVar(&metric, "metric", trovi.DefaultMetric, "Metric to increment")
	cmd.Flags().IntVar(&amount, "amount", 1, "Amount to add")
	_ = cmd.MarkFlagRequired("origin")

	return cmd
}

func runVersionList(cmd *cobra.Command, id, sharingKey string) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	artifact, err := fetch(cmd, "Fetching artifact", false, func() (trovi.Artifact, error) {
		return client.GetArtifact(ctx, id, sharingKey)
	})
	if err != nil {
		return fmt.Errorf("failed to get artifact: %w", err)
	}

	versions := artifact.Versions()
	rows := make([][]string, 0, len(versions))
	for _, v := range versions {
		created, _ := v["created_at"].(string)
		rows = append(rows, []string{v.Slug(), created, v.ContentsURN()})
	}
	newOutputHelper(cmd).styled().Table([]string{"Slug", "Created", "Contents"}, rows)
	return nil
}

// parseLinks parses label=urn pairs.
func parseLinks(values []string) ([]trovi.Link, error) {
	links := make([]trovi.Link, 0, len(values))
	for _, v := range values {
		label, target, ok := strings.Cut(v, "=")
		if !ok || label == "" || target == "" {
			return nil, fmt.Errorf("invalid link %q: expected label=urn", v)
		}
		links = append(links, trovi.Link{Label: label, URN: target})
	}
	return links, nil
}

// parseCreatedAt accepts RFC 3339 timestamps or plain dates.
func parseCreatedAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --created-at %q: expected RFC 3339 or YYYY-MM-DD", s)
}

func runVersionCreate(cmd *cobra.Command, id, contentsURN string, linkValues []string, createdAt string) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}
	if _, err := urn.ParseContents(contentsURN); err != nil {
		return fmt.Errorf("invalid contents urn %q: %w", contentsURN, err)
	}
	links, err := parseLinks(linkValues)
	if err != nil {
		return err
	}
	created, err := parseCreatedAt(createdAt)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	version, err := client.CreateVersion(ctx, id, contentsURN, trovi.VersionOptions{
		Links:     links,
		CreatedAt: created,
	})
	if err != nil {
		return fmt.Errorf("failed to create version: %w", err)
	}

	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Created version %s", version.Slug()))
	return nil
}

func runVersionDelete(cmd *cobra.Command, id, slug string, yes bool) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}

	if !yes {
		ok, err := components.ConfirmWithIO(
			fmt.Sprintf("Delete version %s of %s?", slug, id), cmd.InOrStdin(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if !ok {
			newOutputHelper(cmd).printErr("Aborted.")
			return nil
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if err := client.DeleteVersion(ctx, id, slug); err != nil {
		return fmt.Errorf("failed to delete version: %w", err)
	}

	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Deleted version %s", slug))
	return nil
}

func runVersionMigrate(cmd *cobra.Command, id, slug, backend string) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd)

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	status, err := client.MigrateVersion(ctx, id, slug, backend)
	if err != nil {
		return fmt.Errorf("failed to migrate version: %w", err)
	}

	out.styled().Success(fmt.Sprintf("Migration of %s to %s started", slug, backend))
	printProperties(out, status)
	return nil
}

func runVersionMetric(cmd *cobra.Command, id, slug, origin, metric string, amount int) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}
	if amount < 1 {
		return fmt.Errorf("invalid --amount %d: must be positive", amount)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if err := client.IncrementMetricCount(ctx, id, slug, origin, metric, amount); err != nil {
		return fmt.Errorf("failed to increment metric: %w", err)
	}

	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Incremented %s by %d", metric, amount))
	return nil
}
