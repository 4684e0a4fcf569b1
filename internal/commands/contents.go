package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/trovi"
	"github.com/chameleoncloud/trovi/internal/ui"
	"github.com/chameleoncloud/trovi/internal/urn"
	"github.com/chameleoncloud/trovi/internal/utils"
)

// downloadTimeout bounds a whole contents download, body included.
const downloadTimeout = 30 * time.Minute

// NewContentsCommand creates the contents command
func NewContentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contents",
		Short: "Inspect version contents",
	}

	cmd.AddCommand(newContentsShowCommand())
	cmd.AddCommand(newContentsDownloadCommand())

	return cmd
}

func newContentsShowCommand() *cobra.Command {
	var sharingKey string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <contents-urn>",
		Short: "Show how a contents URN can be accessed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContentsShow(cmd, args[0], sharingKey, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&sharingKey, "sharing-key", "", "Sharing key for private artifacts")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

type downloadFlags struct {
	sharingKey string
	output     string
	force      bool
}

func newContentsDownloadCommand() *cobra.Command {
	var f downloadFlags

	cmd := &cobra.Command{
		Use:   "download <contents-urn>",
		Short: "Download version contents over HTTP",
		Long: `Download version contents through their http access method. The file is
named after the download URL unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContentsDownload(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVar(&f.sharingKey, "sharing-key", "", "Sharing key for private artifacts")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "File to write")
	cmd.Flags().BoolVar(&f.force, "force", false, "Overwrite an existing file")

	return cmd
}

func runContentsShow(cmd *cobra.Command, contentsURN, sharingKey string, jsonOutput bool) error {
	parsed, err := urn.ParseContents(contentsURN)
	if err != nil {
		return fmt.Errorf("invalid contents urn %q: %w", contentsURN, err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := newOutputHelper(cmd)

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	contents, err := fetch(cmd, "Fetching contents", jsonOutput, func() (map[string]any, error) {
		return client.GetContents(ctx, contentsURN, sharingKey)
	})
	if err != nil {
		return fmt.Errorf("failed to get contents: %w", err)
	}

	if jsonOutput {
		return out.printJSON(contents)
	}

	styled := out.styled()
	styled.KeyValue("Provider", parsed.Provider)
	styled.KeyValue("ID", parsed.ID)
	printProperties(out, contents)
	return nil
}

func runContentsDownload(cmd *cobra.Command, contentsURN string, f downloadFlags) (err error) {
	parsed, err := urn.ParseContents(contentsURN)
	if err != nil {
		return fmt.Errorf("invalid contents urn %q: %w", contentsURN, err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, downloadTimeout)
	defer cancel()

	client, err := newClient(cmd)
	if err != nil {
		return err
	}

	contents, err := fetch(cmd, "Resolving contents", false, func() (map[string]any, error) {
		return client.GetContents(ctx, contentsURN, f.sharingKey)
	})
	if err != nil {
		return fmt.Errorf("failed to get contents: %w", err)
	}
	method, err := trovi.HTTPAccessMethod(contents)
	if err != nil {
		return err
	}

	target := f.output
	if target == "" {
		target = downloadName(method.URL, parsed)
	}
	target, err = utils.ExpandTilde(target)
	if err != nil {
		return err
	}

	body, size, err := client.OpenContents(ctx, method)
	if err != nil {
		return fmt.Errorf("failed to download contents: %w", err)
	}
	defer body.Close()

	flags := os.O_CREATE | os.O_WRONLY | os.O_EXCL
	if f.force {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	file, err := os.OpenFile(target, flags, 0644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%s already exists, use --force to overwrite", target)
	}
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(target)
		}
	}()

	stderr := cmd.ErrOrStderr()
	bar := progressbar.NewOptions64(
		size,
		progressbar.OptionSetDescription(filepath.Base(target)),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetVisibility(ui.IsTTY(stderr) && !ui.NoColor()),
	)

	written, err := io.Copy(io.MultiWriter(file, bar), body)
	_ = bar.Finish()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}

	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Downloaded %d bytes to %s", written, target))
	return nil
}

// downloadName picks a file name from the last URL path segment, falling
// back to the contents id.
func downloadName(rawURL string, parsed urn.ContentsURN) string {
	if u, err := url.Parse(rawURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && base != "" {
			return base
		}
	}
	if slug := utils.Slugify(parsed.ID); slug != "" {
		return slug
	}
	return "contents"
}
