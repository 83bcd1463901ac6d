package cli

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"cibrief/internal/model"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cibrief",
	Short: "Cibrief - deterministic competitive-intelligence briefs",
	Long: `Cibrief turns structured competitive-intelligence facts into reviewed
analyst briefs.

Facts flow through a fixed pipeline: a rule table classifies each fact
into impact signals, a stance analyzer weighs every signal against your
program profile, a writer drafts a templated report, and a critic
validates the draft against its own evidence. A brief that fails review
is never written to disk.

Every score and every sentence traces back to a quoted source. There is
no free-form generation anywhere in the pipeline.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for Cibrief.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cibrief v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.cibrief/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.cibrief")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CIBRIEF_*
	viper.SetEnvPrefix("CIBRIEF")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

var (
	configOnce sync.Once
	config     *model.Config
	configErr  error
)

// loadConfig materializes the effective configuration once per process:
// defaults, overridden by the config file, overridden by CIBRIEF_* env
// vars. The extraction API key only ever comes from the environment.
func loadConfig() (*model.Config, error) {
	configOnce.Do(func() {
		cfg := model.DefaultConfig()
		if err := viper.Unmarshal(cfg); err != nil {
			configErr = fmt.Errorf("load config: %w", err)
			return
		}
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.Extract.APIKey = key
		}
		config = cfg
	})
	return config, configErr
}

var (
	loggerOnce sync.Once
	logger     *zap.Logger
)

// newLogger builds the process logger once. Verbose runs get readable
// development output at debug level; otherwise structured production
// output.
func newLogger() *zap.Logger {
	loggerOnce.Do(func() {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			logger = zap.NewNop()
		}
	})
	return logger
}
