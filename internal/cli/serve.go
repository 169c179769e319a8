package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobmentalconstruct/codehub/internal/export"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/scan"
	"github.com/jacobmentalconstruct/codehub/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interactive file index",
	Long: `Serve scans the project directory on every request and hosts the
interactive index page: a tree view with content cards, search, live reload,
and client-side export actions.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("directory", "d", ".", "project directory to serve")
	serveCmd.Flags().String("host", "127.0.0.1", "host/IP to bind")
	serveCmd.Flags().IntP("port", "p", 8000, "port to run the server on")
	serveCmd.Flags().Bool("open", false, "open the default browser to the server URL")
	serveCmd.Flags().Bool("watch", true, "push live-reload events on file changes")
	serveCmd.Flags().Bool("report", false, "also write ai_report.txt under _logs/codehub/")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	flags := cmd.Flags()
	cfg.Open, _ = flags.GetBool("open")
	if flags.Changed("watch") {
		cfg.Watch, _ = flags.GetBool("watch")
	}
	if flags.Changed("report") {
		cfg.Report, _ = flags.GetBool("report")
	}

	root, err := cfg.ResolveRoot()
	if err != nil {
		return err
	}

	rules, err := ignore.Load(root)
	if err != nil {
		logger.Warn("could not read .gitignore, continuing without patterns", zap.Error(err))
	}

	srv, err := server.New(root, rules, cfg, logger)
	if err != nil {
		return err
	}

	// Bind before any scan work so a port conflict fails fast
	if err := srv.Listen(); err != nil {
		return err
	}

	if cfg.Report {
		res, err := scan.New(root, rules, cfg, logger).Scan()
		if err != nil {
			logger.Warn("initial scan for AI report failed", zap.Error(err))
		} else if dest, err := export.WriteReport(root, res); err != nil {
			logger.Warn("failed to write AI report", zap.Error(err))
		} else {
			logger.Info("wrote AI report", zap.String("path", dest))
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving project",
		zap.String("root", root),
		zap.String("url", srv.URL()),
		zap.Int("ignore_patterns", rules.Len()))

	return srv.Serve(ctx)
}
