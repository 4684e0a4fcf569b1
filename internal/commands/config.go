package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/cache"
	"github.com/chameleoncloud/trovi/internal/config"
	"github.com/chameleoncloud/trovi/internal/ui/components"
	"github.com/chameleoncloud/trovi/internal/utils"
)

// ConfigOutput represents the full config output for JSON serialization
type ConfigOutput struct {
	Version     VersionInfo   `json:"version"`
	Platform    PlatformInfo  `json:"platform"`
	Profile     ProfileInfo   `json:"profile"`
	Directories DirectoryInfo `json:"directories"`
}

type VersionInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

type PlatformInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

type ProfileInfo struct {
	Name         string   `json:"name"`
	BaseURL      string   `json:"baseUrl"`
	PortalURL    string   `json:"portalUrl,omitempty"`
	KeycloakURL  string   `json:"keycloakUrl,omitempty"`
	Realm        string   `json:"keycloakRealm,omitempty"`
	ClientID     string   `json:"oidcClientId,omitempty"`
	ClientSecret string   `json:"oidcClientSecret"`
	Admin        bool     `json:"admin"`
	Scopes       []string `json:"scopes,omitempty"`
	Discovery    bool     `json:"oidcDiscovery"`
}

type DirectoryInfo struct {
	ConfigFile   string `json:"configFile"`
	ConfigExists bool   `json:"configExists"`
	Cache        string `json:"cache"`
	LogFile      string `json:"logFile"`
}

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change the CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigSetSecretCommand())
	cmd.AddCommand(newConfigDeleteSecretCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  "Show the settings in effect after flags, environment variables and the config file are combined.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a setting in the active profile",
		Long:  "Save a setting in the active profile. Keys: " + strings.Join(config.SettableKeys, ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(cmd, args[0], args[1])
		},
	}
}

func newConfigSetSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-secret",
		Short: "Store the client secret in the OS keyring",
		Long: `Store the OIDC client secret in the OS keyring under the configured client
id. It is used whenever no secret is given by flag, environment or file.`,
		Args: cobra.NoArgs,
		RunE: runConfigSetSecret,
	}
}

func newConfigDeleteSecretCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-secret",
		Short: "Remove the client secret from the OS keyring",
		Args:  cobra.NoArgs,
		RunE:  runConfigDeleteSecret,
	}
}

func gatherConfig(cmd *cobra.Command) (*ConfigOutput, error) {
	f, err := config.LoadFile()
	if err != nil {
		return nil, err
	}
	p, err := loadProfile(cmd)
	if err != nil {
		return nil, err
	}

	configFile, err := utils.GetConfigFile()
	if err != nil {
		return nil, err
	}
	cacheDir, err := cache.GetCacheDir()
	if err != nil {
		return nil, err
	}

	return &ConfigOutput{
		Version: VersionInfo{
			Version: buildinfo.Version,
			Commit:  buildinfo.Commit,
			Date:    buildinfo.Date,
		},
		Platform: PlatformInfo{OS: runtime.GOOS, Arch: runtime.GOARCH},
		Profile: ProfileInfo{
			Name:         config.ActiveProfileName(f),
			BaseURL:      p.GetBaseURL(),
			PortalURL:    p.PortalURL,
			KeycloakURL:  p.KeycloakURL,
			Realm:        p.Realm,
			ClientID:     p.ClientID,
			ClientSecret: maskSecret(p.ClientSecret),
			Admin:        p.Admin,
			Scopes:       p.Scopes,
			Discovery:    p.Discovery,
		},
		Directories: DirectoryInfo{
			ConfigFile:   configFile,
			ConfigExists: utils.FileExists(configFile),
			Cache:        cacheDir,
			LogFile:      filepath.Join(cacheDir, "trovi.log"),
		},
	}, nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	out := newOutputHelper(cmd)

	info, err := gatherConfig(cmd)
	if err != nil {
		return err
	}
	if jsonOutput {
		return out.printJSON(info)
	}

	styled := out.styled()
	styled.Header("Trovi CLI " + info.Version.Version)
	styled.Muted(fmt.Sprintf("commit %s, built %s, %s/%s",
		info.Version.Commit, info.Version.Date, info.Platform.OS, info.Platform.Arch))
	styled.Newline()

	pi := info.Profile
	styled.Header("Profile " + pi.Name)
	styled.Table([]string{"Setting", "Value"}, [][]string{
		{"base_url", pi.BaseURL},
		{"portal_url", pi.PortalURL},
		{"keycloak_url", pi.KeycloakURL},
		{"keycloak_realm", pi.Realm},
		{"oidc_client_id", pi.ClientID},
		{"oidc_client_secret", pi.ClientSecret},
		{"admin", strconv.FormatBool(pi.Admin)},
		{"scopes", strings.Join(pi.Scopes, " ")},
		{"oidc_discovery", strconv.FormatBool(pi.Discovery)},
	})
	styled.Newline()

	dirs := info.Directories
	configState := dirs.ConfigFile
	if !dirs.ConfigExists {
		configState += " (not created)"
	}
	styled.KeyValue("Config file", configState)
	styled.KeyValue("Cache", dirs.Cache)
	styled.KeyValue("Log file", dirs.LogFile)
	return nil
}

func runConfigSet(cmd *cobra.Command, key, value string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	f, err := config.LoadFile()
	if err != nil {
		return err
	}
	name := config.ActiveProfileName(f)
	if err := f.EnsureProfile(name).Set(key, value); err != nil {
		return err
	}
	if err := config.SaveFile(ctx, f); err != nil {
		return err
	}

	shown := value
	if key == "oidc_client_secret" {
		shown = maskSecret(value)
	}
	newOutputHelper(cmd).styled().Success(fmt.Sprintf("Set %s = %s in profile %s", key, shown, name))
	return nil
}

func runConfigSetSecret(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	if p.ClientID == "" {
		return fmt.Errorf("%w: oidc_client_id", config.ErrMissingField)
	}

	secret, err := components.PasswordWithIO("Client secret for "+p.ClientID, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if secret == "" {
		return errors.New("empty secret, nothing stored")
	}
	if err := config.StoreSecret(p.ClientID, secret); err != nil {
		return err
	}

	newOutputHelper(cmd).styled().Success("Stored client secret for " + p.ClientID + " in the keyring")
	return nil
}

func runConfigDeleteSecret(cmd *cobra.Command, args []string) error {
	p, err := loadProfile(cmd)
	if err != nil {
		return err
	}
	if p.ClientID == "" {
		return fmt.Errorf("%w: oidc_client_id", config.ErrMissingField)
	}
	if err := config.DeleteSecret(p.ClientID); err != nil {
		return err
	}

	newOutputHelper(cmd).styled().Success("Removed client secret for " + p.ClientID)
	return nil
}

// maskSecret hides all but the last four characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
