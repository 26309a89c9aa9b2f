package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/m3rciful/partyfinder/core/bootstrap"
	"github.com/m3rciful/partyfinder/core/buildinfo"
	corecmd "github.com/m3rciful/partyfinder/core/cmd"
	coreconfig "github.com/m3rciful/partyfinder/core/config"
	"github.com/m3rciful/partyfinder/internal/app"
	"github.com/m3rciful/partyfinder/internal/export"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigPath = "config.yaml"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "partyfinder",
		Short:         "Telegram bot that matches players into parties",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file (default: $"+configEnvVar+" or "+defaultConfigPath+")")

	root.AddCommand(
		serveCmd(&configPath),
		migrateCmd(&configPath),
		exportCmd(&configPath),
		versionCmd(),
	)
	return root
}

func resolveConfigPath(flag string) string {
	if p := strings.TrimSpace(flag); p != "" {
		return p
	}
	if p := os.Getenv(configEnvVar); p != "" {
		return p
	}
	return defaultConfigPath
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the ops endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return corecmd.Run(corecmd.Options{
				ConfigPath:        *configPath,
				ConfigEnvVar:      configEnvVar,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					cfg, err := app.LoadConfig(path)
					if err != nil {
						return nil, err
					}
					return cfg, nil
				},
				Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
					appCfg, ok := cfg.(*app.Config)
					if !ok {
						return nil, fmt.Errorf("unexpected config type %T", cfg)
					}
					a, err := app.Bootstrap(appCfg)
					if err != nil {
						return nil, err
					}
					return a, nil
				},
			})
		},
	}
}

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(resolveConfigPath(*configPath))
			if err != nil {
				return err
			}
			a, err := app.Bootstrap(cfg)
			if err != nil {
				return err
			}
			return a.Close()
		},
	}
}

func exportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print every stored profile, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(resolveConfigPath(*configPath))
			if err != nil {
				return err
			}
			// stdout carries the dump, so the structured logger stays uninitialized
			a, err := app.BootstrapWith(cfg, bootstrap.Options{
				LoggerInit: func(*coreconfig.Config) error { return nil },
			})
			if err != nil {
				return err
			}
			defer a.Close()

			lines, err := a.Exporter.Lines(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(lines) == 0 {
				_, err = fmt.Fprintln(out, export.EmptyText)
				return err
			}
			for _, l := range lines {
				if _, err := fmt.Fprintln(out, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
