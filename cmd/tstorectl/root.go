package main

import (
	"context"

	"github.com/forbearing/tstore/config"
	"github.com/forbearing/tstore/datasource"
	"github.com/forbearing/tstore/logger/zap"
	"github.com/forbearing/tstore/router"
	"github.com/spf13/cobra"
)

var (
	configFile string
	rootName   string
	logDir     string
	logLevel   string

	ds *datasource.DataSource
)

var rootCmd = &cobra.Command{
	Use:     "tstorectl",
	Short:   "tstore administration CLI",
	Version: "1.0.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		if err := config.Init(configFile); err != nil {
			return err
		}
		if err := zap.Init(logDir, logLevel, "console", 28, 100, 7); err != nil {
			return err
		}
		rt := router.New(router.Options(config.App.Router))
		var err error
		ds, err = datasource.Open(context.Background(), config.App, rt, rootName)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tstorectl version",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(rootCmd.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&rootName, "name", "tstorectl", "database-name component identifying this CLI instance")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "logs", "directory for rotated log files")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd, datasetCmd, dropCmd)
}
