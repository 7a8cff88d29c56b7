// Command tienda runs the store API and its maintenance tasks.
//
//	tienda serve      start HTTP (and gRPC health when GRPC_ADDR is set)
//	tienda migrate    apply the bootstrap schema
//	tienda seed       load the demo catalog into an empty store
//
// @title                       tienda API
// @version                     1.0
// @description                 Accounts, catalog and order placement.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/MikeMC777/tienda/internal/config"
	"github.com/MikeMC777/tienda/internal/logger"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "tienda",
	Short:         "tienda is a small store backend: accounts, catalog and orders.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd, accountCmd)
}

// boot loads configuration and builds the process logger.
func boot() (config.Config, *slog.Logger) {
	cfg := config.Load()
	log := logger.New(os.Stderr, cfg.Production(), cfg.LogLevel)
	slog.SetDefault(log)
	return cfg, log
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}
