// Command macroasm-ls is a language server and command line toolkit for Z80
// macro assembler sources.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/z80asm/macroasm-ls/config"
	"github.com/z80asm/macroasm-ls/languageServer"
	"github.com/z80asm/macroasm-ls/util"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:          "macroasm-ls",
		Short:        "Z80 macro assembler language server",
		Long:         "macroasm-ls serves hover, completion, definitions, rename and formatting for Z80/Z80N assembler sources over the Language Server Protocol.",
		SilenceUsage: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().Bool("debug", false, "Trace every request and log at debug level")
	rootCmd.PersistentFlags().Int("indent-size", 8, "Columns per indentation level")
	rootCmd.PersistentFlags().Bool("indent-spaces", false, "Indent with spaces instead of tabs")
	rootCmd.PersistentFlags().Bool("seek-workspace", false, "Also resolve symbols outside the include graph")

	// Bind flags to viper.
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("indentSize", rootCmd.PersistentFlags().Lookup("indent-size"))
	viper.BindPFlag("indentSpaces", rootCmd.PersistentFlags().Lookup("indent-spaces"))
	viper.BindPFlag("seekSymbolsThroughWorkspace", rootCmd.PersistentFlags().Lookup("seek-workspace"))

	// Env vars: Z80ASM_DEBUG, Z80ASM_FORMAT_HEXANUMBERSTYLE, etc.
	viper.SetEnvPrefix("Z80ASM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".z80-macroasm")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSymbolsCmd())
	rootCmd.AddCommand(newFormatCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger. Logs always go to stderr so stdout
// stays free for the stdio transport.
func newLogger() *slog.Logger {
	cfg := util.LoadLogConfigFromEnv("macroasm-ls")
	if viper.GetBool("debug") {
		cfg.Level = slog.LevelDebug
		util.LoggingEnabled = true
	}
	logger := util.NewLogger(cfg)
	util.SetTraceLogger(logger)
	return logger
}

func loadProps() (config.Props, error) {
	props, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Props{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return props, nil
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print macroasm-ls version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "macroasm-ls %s\n", version)
		},
	}
}

// newServeCmd creates the "serve" command.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server",
		Long:  "Serve speaks the Language Server Protocol on stdin and stdout, or on TCP and WebSocket listeners when --tcp or --ws is given.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().String("tcp", "", "Accept TCP connections on this address (e.g. :2035)")
	cmd.Flags().String("ws", "", "Accept WebSocket connections on this address (e.g. :2036)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	tcpAddr, _ := cmd.Flags().GetString("tcp")
	wsAddr, _ := cmd.Flags().GetString("ws")

	props, err := loadProps()
	if err != nil {
		return err
	}
	logger := newLogger()
	languageServer.Version = version

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if tcpAddr == "" && wsAddr == "" {
		return languageServer.ListenAndServe(ctx, props, logger)
	}

	g, gctx := errgroup.WithContext(ctx)
	if tcpAddr != "" {
		g.Go(func() error {
			return languageServer.ListenAndServeTCP(gctx, tcpAddr, props, logger)
		})
	}
	if wsAddr != "" {
		g.Go(func() error {
			return languageServer.ListenAndServeWebSocket(gctx, wsAddr, props, logger)
		})
	}
	return g.Wait()
}
