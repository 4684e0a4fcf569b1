package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"

	"github.com/chameleoncloud/trovi/internal/trovi"
	"github.com/chameleoncloud/trovi/internal/ui"
	"github.com/chameleoncloud/trovi/internal/urn"
	"github.com/chameleoncloud/trovi/internal/utils"
)

// openBrowser is swapped out in tests.
var openBrowser = browser.OpenURL

// ownerPrefix is stripped from owner URNs in listings.
const ownerPrefix = urn.Prefix + urn.TypeUser + ":"

// NewArtifactCommand creates the artifact command
func NewArtifactCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifact",
		Short: "Manage artifacts (list, show, create, patch)",
		Long:  "Browse, inspect and update artifacts in Trovi.",
	}

	cmd.AddCommand(newArtifactListCommand())
	cmd.AddCommand(newArtifactShowCommand())
	cmd.AddCommand(newArtifactOpenCommand())
	cmd.AddCommand(newArtifactCreateCommand())
	cmd.AddCommand(newArtifactPatchCommand())
	cmd.AddCommand(newArtifactLinkProjectCommand())
	cmd.AddCommand(newArtifactGenerateCommand())

	return cmd
}

func newArtifactListCommand() *cobra.Command {
	var sortBy string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactList(cmd, sortBy, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&sortBy, "sort-by", trovi.DefaultSortBy, "Field to order artifacts by")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newArtifactShowCommand() *cobra.Command {
	var sharingKey string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <uuid>",
		Short: "Show every property of an artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactShow(cmd, args[0], sharingKey, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&sharingKey, "sharing-key", "", "Sharing key for private artifacts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newArtifactOpenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <uuid>",
		Short: "Open the artifact page in a browser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactOpen(cmd, args[0])
		},
	}
}

func newArtifactCreateCommand() *cobra.Command {
	var file string
	var force bool

	cmd := &cobra.Command{
		Use:   "create --file <artifact.json>",
		Short: "Create an artifact from a JSON document",
		Long:  "Create an artifact from a JSON document. Use '-' to read it from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactCreate(cmd, file, force)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Artifact JSON document")
	cmd.Flags().BoolVar(&force, "force", false, "Skip server-side checks (admin only)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type patchFlags struct {
	file        string
	title       string
	description string
	visibility  string
	force       bool
	dryRun      bool
}

func newArtifactPatchCommand() *cobra.Command {
	var f patchFlags

	cmd := &cobra.Command{
		Use:   "patch <uuid>",
		Short: "Update an artifact with JSON Patch operations",
		Long: `Update an artifact with JSON Patch operations read from --file, and/or
replace common fields directly with --title, --description and --visibility.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactPatch(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.file, "file", "f", "", "JSON array of patch operations ('-' for stdin)")
	cmd.Flags().StringVar(&f.title, "title", "", "Replace the title")
	cmd.Flags().StringVar(&f.description, "description", "", "Replace the short description")
	cmd.Flags().StringVar(&f.visibility, "visibility", "", "Replace the visibility (public, private)")
	cmd.Flags().BoolVar(&f.force, "force", false, "Skip server-side checks (admin only)")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Apply the patch locally and show the result without saving")

	return cmd
}

func newArtifactLinkProjectCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "link-project <uuid> <charge-code>",
		Short: "Link an artifact to a Chameleon project",
		Long: `Link an artifact to a Chameleon project. An existing Chameleon project
link is replaced; links to other providers are kept.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactLinkProject(cmd, args[0], args[1], dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the resulting links without saving")

	return cmd
}

func runArtifactList(cmd *cobra.Command, sortBy string, jsonOutput bool) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd)

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	artifacts, err := fetch(cmd, "Fetching artifacts", jsonOutput, func() ([]trovi.Artifact, error) {
		return client.ListArtifacts(ctx, sortBy)
	})
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	if jsonOutput {
		return out.printJSON(artifacts)
	}

	rows := make([][]string, 0, len(artifacts))
	for _, a := range artifacts {
		rows = append(rows, []string{
			a.Title(),
			a.UUID(),
			a.CreatedAt(),
			ownerLabel(a.OwnerURN()),
			a.Visibility(),
		})
	}
	out.styled().Table([]string{"Title", "UUID", "Created", "Owner", "Visibility"}, rows)
	return nil
}

func runArtifactShow(cmd *cobra.Command, id, sharingKey string, jsonOutput bool) error {
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

	artifact, err := fetch(cmd, "Fetching artifact", jsonOutput, func() (trovi.Artifact, error) {
		return client.GetArtifact(ctx, id, sharingKey)
	})
	if err != nil {
		return fmt.Errorf("failed to get artifact: %w", err)
	}

	if jsonOutput {
		return out.printJSON(artifact)
	}
	printProperties(out, artifact)
	return nil
}

func runArtifactOpen(cmd *cobra.Command, id string) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}

	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	target := trovi.ArtifactWebURL(p.PortalURL, id)

	out := newOutputHelper(cmd).styled()
	out.Info("Opening " + target)
	if err := openBrowser(target); err != nil {
		out.Warning(fmt.Sprintf("Could not open a browser: %v", err))
	}
	return nil
}

func runArtifactCreate(cmd *cobra.Command, file string, force bool) error {
	data, err := readInput(cmd, file)
	if err != nil {
		return err
	}
	var artifact trovi.Artifact
	if err := decodeDocument(data, &artifact); err != nil {
		return fmt.Errorf("invalid artifact document: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	created, err := client.CreateArtifact(ctx, artifact, force)
	if err != nil {
		return fmt.Errorf("failed to create artifact: %w", err)
	}

	out := newOutputHelper(cmd).styled()
	out.Success(fmt.Sprintf("Created artifact %s", created.UUID()))
	out.KeyValue("URL", client.WebURL(created.UUID()))
	return nil
}

// buildPatches collects operations from the patch file and field flags.
func buildPatches(cmd *cobra.Command, f patchFlags) ([]trovi.Patch, error) {
	var patches []trovi.Patch
	if f.file != "" {
		data, err := readInput(cmd, f.file)
		if err != nil {
			return nil, err
		}
		if err := decodeDocument(data, &patches); err != nil {
			return nil, fmt.Errorf("invalid patch document: %w", err)
		}
	}

	flags := cmd.Flags()
	for _, field := range []struct {
		flag, path, value string
	}{
		{"title", "/title", f.title},
		{"description", "/short_description", f.description},
		{"visibility", "/visibility", f.visibility},
	} {
		if flags.Changed(field.flag) {
			patches = append(patches, trovi.ReplaceOp(field.path, field.value))
		}
	}

	if len(patches) == 0 {
		return nil, errors.New("nothing to change: pass --file or a field flag")
	}
	return patches, nil
}

func runArtifactPatch(cmd *cobra.Command, id string, f patchFlags) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}
	patches, err := buildPatches(cmd, f)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd)

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if f.dryRun {
		current, err := client.GetArtifact(ctx, id, "")
		if err != nil {
			return fmt.Errorf("failed to get artifact: %w", err)
		}
		preview, err := trovi.ApplyPatches(current, patches)
		if err != nil {
			return err
		}
		out.styled().Info("Dry run, nothing was saved")
		printProperties(out, preview)
		return nil
	}

	updated, err := client.PatchArtifact(ctx, id, patches, f.force)
	if err != nil {
		return fmt.Errorf("failed to patch artifact: %w", err)
	}
	out.styled().Success(fmt.Sprintf("Updated artifact %s", updated.UUID()))
	return nil
}

func runArtifactLinkProject(cmd *cobra.Command, id, chargeCode string, dryRun bool) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd).styled()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	if dryRun {
		current, err := client.GetArtifact(ctx, id, "")
		if err != nil {
			return fmt.Errorf("failed to get artifact: %w", err)
		}
		op, err := trovi.LinkChameleonProjectPatch(current, chargeCode)
		if err != nil {
			return err
		}
		preview, err := trovi.ApplyPatches(current, []trovi.Patch{op})
		if err != nil {
			return err
		}
		out.Info(fmt.Sprintf("Dry run: %s %s", op.Op, op.Path))
		out.List(preview.LinkedProjects())
		return nil
	}

	updated, err := client.SetLinkedChameleonProject(ctx, id, chargeCode)
	if err != nil {
		return fmt.Errorf("failed to link project: %w", err)
	}
	out.Success(fmt.Sprintf("Linked %s to %s", id, urn.ChameleonProject(chargeCode)))
	out.List(updated.LinkedProjects())
	return nil
}

// ownerLabel shortens an owner URN to provider:id.
func ownerLabel(owner string) string {
	if o, err := urn.ParseOwner(owner); err == nil {
		return o.Provider + ":" + o.ID
	}
	return strings.TrimPrefix(owner, ownerPrefix)
}

func printProperties(out *outputHelper, obj map[string]any) {
	out.styled().Table([]string{"Property", "Value"}, ui.PropertyRows(obj))
}

func validateArtifactID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid artifact id %q: %w", id, err)
	}
	return nil
}

// decodeDocument parses JSON input. Comments and trailing commas are allowed.
func decodeDocument(data []byte, v any) error {
	std, err := hujson.Standardize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(std, v)
}

// readInput reads a file, or the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	expanded, err := utils.ExpandTilde(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
