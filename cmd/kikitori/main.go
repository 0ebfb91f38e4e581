package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mkondo/kikitori/internal/cli"
	"github.com/mkondo/kikitori/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	p := processor.NewProcessor(flags)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "fetch",
			Short: "Fetch actively learned vocabulary from WaniKani",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.Fetch(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "sentences",
			Short: "Generate practice sentences with an LLM",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.GenerateSentences(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "audio",
			Short: "Narrate the practice sentences with OpenAI TTS",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.GenerateAudio(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "images",
			Short: "Illustrate the practice sentences with OpenAI image generation",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.GenerateImages(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "models",
			Short: "List available OpenAI models for the current API key",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.ListModels()
			},
		},
		&cobra.Command{
			Use:   "sync",
			Short: "Copy sentence data into the trainer page directory",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.Sync()
			},
		},
		&cobra.Command{
			Use:   "push",
			Short: "Push queued \"too easy\" reviews back to WaniKani",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.PushReviews(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the trainer page locally with an offline cache",
			RunE: func(cmd *cobra.Command, args []string) error {
				return p.Serve(cmd.Context())
			},
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
