package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/josephgoksu/TaskTalk/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configName = ".tasktalk"
	envPrefix  = "TASKTALK"
)

// GlobalAppConfig holds the global application configuration instance.
var GlobalAppConfig types.AppConfig

// validate is a single instance, it caches struct info
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateAppConfig performs validation on the AppConfig struct.
func validateAppConfig(config *types.AppConfig) error {
	return validate.Struct(config)
}

// InitConfig reads in config file and ENV variables if set.
func InitConfig() {
	// Load .env file first if present. It's okay if it doesn't exist.
	_ = godotenv.Load()

	// Environment variable handling must be set up BEFORE reading the
	// config file, so env vars can influence config loading.
	viper.SetEnvPrefix(envPrefix) // e.g., TASKTALK_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config") // Value from --config flag

	if cfgFileFlag != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFileFlag)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)       // $HOME/.tasktalk.yaml
		viper.AddConfigPath(".")        // ./.tasktalk.yaml
		viper.SetConfigName(configName)
	}

	// Attempt to read the configuration file.
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if cfgFileFlag != "" {
				fmt.Fprintln(os.Stderr, "Error: Specified config file not found:", cfgFileFlag)
			} else if viper.GetBool("verbose") {
				fmt.Fprintln(os.Stderr, "No config file found. Using defaults and environment variables.")
			}
		} else {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		}
	}

	// Set default values
	viper.SetDefault("project.rootDir", ".tasktalk")
	viper.SetDefault("project.templatesDir", "templates")

	viper.SetDefault("data.file", "todos.json")
	viper.SetDefault("data.format", "json")
	viper.SetDefault("data.backend", "file")
	viper.SetDefault("data.retryAttempts", 3)
	viper.SetDefault("data.retryBackoffMs", 1000)

	// Defaults for LLMConfig
	viper.SetDefault("llm.provider", "groq")
	viper.SetDefault("llm.modelName", "llama-3.3-70b-versatile")
	viper.SetDefault("llm.apiKey", "")
	viper.SetDefault("llm.baseURL", "")
	viper.SetDefault("llm.maxOutputTokens", 800)
	viper.SetDefault("llm.temperature", 0.5)
	viper.SetDefault("llm.requestTimeoutSeconds", 60)

	viper.SetDefault("server.port", 8911)
	viper.SetDefault("server.origins", []string{"http://localhost:3000"})

	viper.SetDefault("auth.userId", "local")

	// The Groq key is commonly exported without the env prefix.
	if viper.GetString("llm.apiKey") == "" {
		if key := os.Getenv("GROQ_API_KEY"); key != "" {
			viper.Set("llm.apiKey", key)
		}
	}

	// After all sources are configured, unmarshal into GlobalAppConfig
	if err := viper.Unmarshal(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Error unmarshaling config: %s\n", err)
		os.Exit(1)
	}

	// Validate the populated configuration
	if err := validateAppConfig(&GlobalAppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %s\n", err)
		os.Exit(1)
	}
}

// GetConfig returns a pointer to the global types.AppConfig instance.
func GetConfig() *types.AppConfig {
	return &GlobalAppConfig
}
