package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analyze API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default is server.addr from the config)")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	inputs, err := loadInputs(config)
	if err != nil {
		logger.Fatal("loading match inputs", zap.Error(err))
	}

	cfg := config.Server
	cfg.MaxUploadSize = config.Upload.MaxSize

	srv, err := server.New(cfg, server.Deps{
		Logger:     logger,
		Vocabulary: inputs.vocabulary,
		Candidate:  inputs.candidate,
		Display:    inputs.display,
		Badge:      inputs.badge,
	})
	if err != nil {
		logger.Fatal("creating the server", zap.Error(err))
	}

	logger.Info("starting the skill-matcher server", zap.String("version", version))

	if err := srv.Start(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}
}
