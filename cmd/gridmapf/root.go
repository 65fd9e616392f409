package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfg = viper.New()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gridmapf",
		Short: "Run cooperative grid path-finding solvers",
	}

	root.PersistentFlags().Int("width", 20, "grid width")
	root.PersistentFlags().Int("height", 20, "grid height")
	root.PersistentFlags().Int("agents", 8, "number of randomly placed agents")
	root.PersistentFlags().Int64("seed", 1, "random seed")
	root.PersistentFlags().String("log-format", "json", "log output format: json or text")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")

	cobra.CheckErr(cfg.BindPFlags(root.PersistentFlags()))
	cfg.SetEnvPrefix("GRIDMAPF")
	cfg.AutomaticEnv()

	root.AddCommand(newRunCmd())
	root.AddCommand(newBenchCmd())

	return root
}

func logLevel() slog.Level {
	switch cfg.GetString("log-level") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
