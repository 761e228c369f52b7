package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bactn/vidloader/internal/app"
)

var sessionFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an offline session to the playback engine",
	Long: `Serve buffers the session's initial manifest, then answers the
playback engine's resource-loading requests through the local gateway:
persistent keys from the key store, the buffered master manifest once,
and every other playlist via fetch-and-rewrite.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&sessionFile, "session", "s", "",
		"session description file (required)")
	serveCmd.MarkFlagRequired("session")

	serveCmd.Flags().String("gateway-addr", "",
		"gateway listen address (overrides config)")
	viper.BindPFlag("gateway.addr", serveCmd.Flags().Lookup("gateway-addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := &app.Context{
		ConfigFile:  configFile,
		SessionFile: sessionFile,
		Verbose:     verbose,
	}

	loaderApp, err := app.NewLoaderApp(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer loaderApp.Close()

	fmt.Fprintf(os.Stderr, "Playback URL: %s\n", loaderApp.InternalMasterURL())

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return loaderApp.Run(runCtx)
}
