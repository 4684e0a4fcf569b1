package main

import (
	"os"
	"strings"

	"github.com/chameleoncloud/trovi/internal/buildinfo"
	"github.com/chameleoncloud/trovi/internal/commands"
	"github.com/chameleoncloud/trovi/internal/logger"
)

func main() {
	log := logger.Get()
	cwd, _ := os.Getwd()

	log.Info("command invoked",
		"version", buildinfo.String(),
		"command", redactArgs(os.Args[1:]),
		"cwd", cwd)

	if err := commands.NewRootCommand().Execute(); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// redactArgs joins the arguments for logging with the client secret masked.
func redactArgs(args []string) string {
	out := make([]string, len(args))
	for i, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--oidc-client-secret="):
			out[i] = "--oidc-client-secret=***"
		case i > 0 && args[i-1] == "--oidc-client-secret":
			out[i] = "***"
		default:
			out[i] = arg
		}
	}
	return strings.Join(out, " ")
}
