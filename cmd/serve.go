package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/chrisdamba/foodwaste/internal/report"
	"github.com/chrisdamba/foodwaste/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve report generation over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if cfg.LogLevel != "debug" && cfg.LogLevel != "trace" {
			gin.SetMode(gin.ReleaseMode)
		}

		gen, closeFn, err := report.NewGeneratorFromConfig(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeFn()

		return server.New(gen).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().StringSlice("cors-allowed-origins", nil, "Origins allowed to call the API")
	bindFlags(serveCmd.Flags(), map[string]string{
		"server.port":                 "port",
		"server.cors_allowed_origins": "cors-allowed-origins",
	})
	rootCmd.AddCommand(serveCmd)
}
