package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the matcher as MCP tools over stdio",
	Run: func(_ *cobra.Command, _ []string) {
		serveMCP()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// serveMCP keeps stdout for the protocol; logs go to stderr.
func serveMCP() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	inputs, err := loadInputs(config)
	if err != nil {
		logger.Fatal("loading match inputs", zap.Error(err))
	}

	logger.Info("starting the mcp server", zap.String("version", version))

	err = mcptool.Serve(ctx, version, &mcptool.Tools{
		Logger:     logger,
		Vocabulary: inputs.vocabulary,
		Candidate:  inputs.candidate,
		Display:    inputs.display,
		Badge:      inputs.badge,
	})
	if err != nil && ctx.Err() == nil {
		logger.Fatal("serving mcp", zap.Error(err))
	}
}
