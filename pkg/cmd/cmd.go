// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/filevault/pkg/app"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:     configs.AppName,
		Short:   "A multi-tenant file storage service",
		Version: configs.AppVersion,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			cfg := configs.GetConfig()
			log.Setup(cfg.Log, cfg.Server.Debug || debug)

			return nil
		},
		SilenceUsage: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API with in-process workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := app.NewWithConfig(ctx, configs.GetConfig())
			if err != nil {
				return err
			}

			return a.Serve(ctx)
		},
	}

	workerCmd = &cobra.Command{
		Use:   "worker",
		Short: "consume thumbnail and welcome jobs from the message broker",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			a, err := app.NewWithConfig(ctx, configs.GetConfig())
			if err != nil {
				return err
			}

			return a.Work(ctx)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd, workerCmd)

	registerConfigsCommands()
	registerDBCommands()
	registerKVCommands()
	registerMQCommands()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
