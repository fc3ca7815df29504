package cmd

import (
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/perf-predictor/internal/watch"
)

const (
	app = "perf-predictor"
)

type Config struct {
	Model    *ModelConfig    `mapstructure:"model"`
	Encoding *EncodingConfig `mapstructure:"encoding"`
	Output   *OutputConfig   `mapstructure:"output"`
	Watch    *watch.Config   `mapstructure:"watch"`
	AI       *AIConfig       `mapstructure:"ai"`
}

type ModelConfig struct {
	Path string `mapstructure:"path"`
}

type EncodingConfig struct {
	UnknownPolicy  string `mapstructure:"unknown-policy"`
	VocabularyFile string `mapstructure:"vocabulary-file"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
	Dump   bool   `mapstructure:"dump"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "perf-predictor predicts employee performance ratings from uploaded or manually entered records",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("model.path", "PERF_MODEL_FILE"); err != nil {
		log.Fatalf("binding PERF_MODEL_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	viper.SetDefault("encoding.unknown-policy", "reject")
	viper.SetDefault("output.format", "table")
	viper.SetDefault("watch.pattern", watch.DefaultPattern)
	viper.SetDefault("watch.debounce", watch.DefaultDebounce)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is perf-predictor.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("model", "m", "", "path to the model artifact (.json or .yaml)")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("model.path", rootCmd.PersistentFlags().Lookup("model"))
}

func initConfig() {
	// A missing .env file is fine, the variables may be exported already.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional, but we can't proceed if it exists and is broken.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Model == nil {
		config.Model = &ModelConfig{}
	}
	if config.Encoding == nil {
		config.Encoding = &EncodingConfig{}
	}
	if config.Output == nil {
		config.Output = &OutputConfig{}
	}
	if config.Watch == nil {
		config.Watch = &watch.Config{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
