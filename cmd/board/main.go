package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath  string
	serverURL   string
	offlineDemo bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "board",
		Short:        "Local-first message board client",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to board.yaml")
	flags.StringVar(&opts.serverURL, "server", "", "server base URL, overrides server_url")
	flags.BoolVar(&opts.offlineDemo, "offline-demo", false, "use an in-process service instead of a server")

	root.AddCommand(
		newChatCmd(opts),
		newPostCmd(opts),
		newListCmd(opts),
		newFlushCmd(opts),
		newPendingCmd(opts),
	)
	return root
}
