package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/chrisdamba/foodwaste/internal/logging"
	"github.com/chrisdamba/foodwaste/internal/models"
)

var (
	cfgFile string
	cfg     *models.Config
)

var rootCmd = &cobra.Command{
	Use:   "foodwaste",
	Short: "Builds food over-production reports from dining venue exports",
	Long: `foodwaste turns the transaction exports of residential dining venues into
spreadsheet reports: a monthly over-production summary broken down by
disposition category, and a weekly pre/post service cost and margin summary.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(viper.GetViper(), cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		return logging.Init(cfg.LogLevel, cfg.LogFormat)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./foodwaste.yaml)")
	flags.String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	flags.String("log-format", "console", "Log format (console or json)")
	flags.String("coercion-policy", models.CoercionZeroFill, "Handling of unparseable numbers (zero-fill or strict)")
	flags.String("output-dir", ".", "Directory for locally stored reports")
	flags.String("output-destination", "local", "Where reports are stored (local, cloud or none)")
	flags.StringSlice("exclude-courses", nil, "Course names left out of every report")

	bindFlags(flags, map[string]string{
		"log_level":          "log-level",
		"log_format":         "log-format",
		"coercion_policy":    "coercion-policy",
		"output_dir":         "output-dir",
		"output_destination": "output-destination",
		"exclude_courses":    "exclude-courses",
	})
}

// bindFlags binds config keys to the flags that override them.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		cobra.CheckErr(viper.BindPFlag(key, flags.Lookup(name)))
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
