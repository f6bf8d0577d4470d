package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/queue"
	"github.com/spigell/skill-matcher/internal/secrets"
)

// rabbitmqURLEnv is read when neither queue.url-file nor queue.url is set.
const rabbitmqURLEnv = "RABBITMQ_URL"

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analyze requests from an AMQP queue",
	Run: func(_ *cobra.Command, _ []string) {
		work()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func work() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	config := mustConfig(logger)

	url, err := secrets.Load(secrets.Source{
		Name:  "amqp url",
		Value: config.Queue.URL,
		File:  config.Queue.URLFile,
		Env:   rabbitmqURLEnv,
	})
	if err != nil {
		logger.Fatal(
			"loading amqp url",
			zap.Error(err),
			zap.String("hint", "set SKILL_MATCHER_AMQP_URL_FILE or RABBITMQ_URL environment variable or the 'queue.url-file' key in the configuration file"),
		)
	}

	inputs, err := loadInputs(config)
	if err != nil {
		logger.Fatal("loading match inputs", zap.Error(err))
	}

	logger.Info("starting the skill-matcher worker", zap.String("version", version))

	err = queue.Run(ctx, queue.Config{
		URL:      url,
		Queue:    config.Queue.Queue,
		Prefetch: config.Queue.Prefetch,
	}, queue.Deps{
		Logger:     logger,
		Vocabulary: inputs.vocabulary,
		Candidate:  inputs.candidate,
		Display:    inputs.display,
		Badge:      inputs.badge,
	})
	if err != nil {
		logger.Fatal("running the worker", zap.Error(err))
	}
}
