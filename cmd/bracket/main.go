package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	debug      bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Printf("bracket: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "bracket",
		Short:        "Rank the cast and your notes by dragging them into order",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.debug {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			}
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "bracket.yaml", "path to config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newDeleteUserCommand(opts))
	return cmd
}
