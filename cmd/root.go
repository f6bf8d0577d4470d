package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skill-matcher/internal/document"
	"github.com/spigell/skill-matcher/internal/filtering"
	"github.com/spigell/skill-matcher/internal/logger"
	"github.com/spigell/skill-matcher/internal/presentation"
	"github.com/spigell/skill-matcher/internal/queue"
	"github.com/spigell/skill-matcher/internal/server"
)

const (
	app = "skill-matcher"
)

type Config struct {
	Candidate struct {
		Skills []string `mapstructure:"skills"`
	} `mapstructure:"candidate"`
	Vocabulary struct {
		File string `mapstructure:"file"`
	} `mapstructure:"vocabulary"`
	Presentation struct {
		Display []presentation.Band `mapstructure:"display"`
		Badge   []presentation.Band `mapstructure:"badge"`
	} `mapstructure:"presentation"`
	Server server.Config `mapstructure:"server"`
	Upload struct {
		MaxSize int64 `mapstructure:"max-size"`
	} `mapstructure:"upload"`
	Rank  RankConfig  `mapstructure:"rank"`
	Queue QueueConfig `mapstructure:"queue"`
}

type RankConfig struct {
	MinScore         int      `mapstructure:"min-score"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	Workers          int      `mapstructure:"workers"`
}

func (c RankConfig) filteringConfig() *filtering.Config {
	return &filtering.Config{
		ExcludeFile:      c.ExcludeFile,
		ExcludeCompanies: c.ExcludeCompanies,
		MinScore:         c.MinScore,
		Workers:          c.Workers,
	}
}

type QueueConfig struct {
	URL      string `mapstructure:"url"`
	URLFile  string `mapstructure:"url-file"`
	Queue    string `mapstructure:"queue"`
	Prefetch int    `mapstructure:"prefetch"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skill-matcher compares candidate skills with job descriptions and scores the match",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("queue.url-file", "SKILL_MATCHER_AMQP_URL_FILE"); err != nil {
		log.Fatalf("binding SKILL_MATCHER_AMQP_URL_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("queue.url", "SKILL_MATCHER_AMQP_URL"); err != nil {
		log.Fatalf("binding SKILL_MATCHER_AMQP_URL environment variable: %v", err)
	}

	setDefaults(viper.GetViper())

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skill-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", server.DefaultAddr)
	v.SetDefault("server.cors-origins", []string{"http://localhost:3000"})
	v.SetDefault("server.rate-limit", 10)
	v.SetDefault("server.burst", server.DefaultBurst)
	v.SetDefault("upload.max-size", document.DefaultMaxSize)
	v.SetDefault("rank.workers", 4)
	v.SetDefault("queue.queue", queue.DefaultQueue)
	v.SetDefault("queue.prefetch", queue.DefaultPrefetch)
}

// initConfig reads the config file when present. Every key has a default, so only
// an explicitly requested file is mandatory.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		App:   app,
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

// mustConfig loads the config or stops the command.
func mustConfig(l *zap.Logger) *Config {
	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}
	if config == nil {
		config = &Config{}
	}
	return config
}
