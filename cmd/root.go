/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/josephgoksu/TaskTalk/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables verbose output.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tasktalk",
	Short: "TaskTalk is a conversational todo manager.",
	Long: `TaskTalk manages your todo list through natural conversation.
Tell the assistant what you need in plain language and it adds, completes,
edits and deletes tasks for you. Run 'tasktalk chat' for the interactive
terminal UI or 'tasktalk serve' to expose the same assistant over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			os.Exit(0)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.tasktalk.yaml or ./.tasktalk.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	// Bind persistent flags to Viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// NewLogger builds the operator log. Chat output goes to the UI; this is
// for diagnostics only, so it writes to stderr.
func NewLogger() *slog.Logger {
	level := slog.LevelWarn
	if GetConfig().Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// GetDataFilePath returns the full path to the todo data file
func GetDataFilePath() string {
	config := GetConfig()
	return filepath.Join(config.Project.RootDir, config.Data.File)
}

// GetStore initializes and returns the todo store selected by the unified
// types.AppConfig, wrapped with the configured retry policy.
func GetStore(logger *slog.Logger) (store.TodoStore, error) {
	config := GetConfig()

	var inner store.TodoStore
	switch config.Data.Backend {
	case "sqlite":
		inner = store.NewSQLiteTodoStore()
	default:
		inner = store.NewFileTodoStore()
	}

	dataFilePath := GetDataFilePath()

	err := inner.Initialize(map[string]string{
		"dataFile":       dataFilePath,
		"dataFileFormat": config.Data.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store at %s: %w", dataFilePath, err)
	}

	return store.WithRetry(inner, config.Data.RetryAttempts, config.Data.RetryBackoff(), logger), nil
}
