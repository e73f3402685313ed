package cmd

import (
	"fmt"
	"os"

	"github.com/killallgit/sanbao/pkg/config"
	"github.com/killallgit/sanbao/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sanbao",
	Short: "Sanbao chat stream consumer",
	Long: `Consume Sanbao chat NDJSON streams and print the finalized message:
artifacts, clarify questions and legal references.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() {
	err := rootCmd.Execute()
	_ = logger.Close()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is .sanbao/settings.yaml)")

	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level")
	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("base-url", "", "chat backend base URL")
	viper.BindPFlag("transport.base_url", rootCmd.PersistentFlags().Lookup("base-url"))

	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(streamCmd)
}

func initConfig() error {
	if _, err := config.Load(cfgFile); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(); err != nil {
		return err
	}
	logger.Debug("Using config file: %s", viper.ConfigFileUsed())
	return nil
}
