package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/rocrate"
	"github.com/chameleoncloud/trovi/internal/utils"
)

type generateFlags struct {
	title       string
	description string
	keywords    []string
	authors     []string
	environment string
	license     string
	outputDir   string
}

func newArtifactGenerateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Package artifact metadata as an RO-Crate archive",
		Long: `Generate an RO-Crate 1.1 metadata package describing an artifact and
write it as <title>.crate.zip. Authors are given as name:institution.`,
		Example: `  trovi artifact generate --title "Latency study" \
    --author "Ada Lovelace:University of Chicago" --keyword networking`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArtifactGenerate(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.title, "title", "", "Artifact title")
	cmd.Flags().StringVar(&f.description, "description", "", "Artifact description")
	cmd.Flags().StringSliceVar(&f.keywords, "keyword", nil, "Keyword (repeatable)")
	cmd.Flags().StringArrayVar(&f.authors, "author", nil, "Author as name:institution (repeatable)")
	cmd.Flags().StringVar(&f.environment, "environment", rocrate.DefaultEnvironment,
		fmt.Sprintf("Reproduction environment (%s)", strings.Join(rocrate.EnvironmentKeys(), ", ")))
	cmd.Flags().StringVar(&f.license, "license", rocrate.DefaultLicense, "License URL")
	cmd.Flags().StringVarP(&f.outputDir, "output-dir", "o", ".", "Directory to write the archive to")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("author")

	return cmd
}

func runArtifactGenerate(cmd *cobra.Command, f generateFlags) error {
	out := newOutputHelper(cmd).styled()

	authors, err := rocrate.ParseAuthors(f.authors)
	if errors.Is(err, rocrate.ErrMalformedAuthor) {
		// Malformed authors are reported without a failing exit code.
		out.Error(err.Error())
		return nil
	}
	if err != nil {
		return err
	}

	crate, err := rocrate.Generate(rocrate.Options{
		Title:       f.title,
		Description: f.description,
		Keywords:    f.keywords,
		Authors:     authors,
		Environment: f.environment,
		License:     f.license,
		Generator:   buildinfo.GetCreator(),
	})
	if err != nil {
		return fmt.Errorf("failed to generate crate: %w", err)
	}

	dir, err := utils.ExpandTilde(f.outputDir)
	if err != nil {
		return err
	}
	path, err := rocrate.WriteArchive(crate, dir)
	if err != nil {
		return err
	}

	out.Success("Wrote " + path)
	return nil
}
