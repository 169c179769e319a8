package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jacobmentalconstruct/codehub/internal/export"
	"github.com/jacobmentalconstruct/codehub/internal/ignore"
	"github.com/jacobmentalconstruct/codehub/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a consolidated HTML index and serve it",
	Long: `Export walks the project directory once, writes a single
self-contained index.html with escaped file contents and a table of
contents, then serves the directory until interrupted. The generated file
is removed on exit unless --keep-file is set.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("directory", "d", ".", "project directory to index")
	exportCmd.Flags().String("host", "127.0.0.1", "host/IP to bind")
	exportCmd.Flags().IntP("port", "p", 8000, "port to run the server on")
	exportCmd.Flags().Bool("keep-file", false, "do not delete the generated index.html on exit")
	exportCmd.Flags().Bool("no-browser", false, "do not automatically open a web browser")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	flags := cmd.Flags()
	if flags.Changed("keep-file") {
		cfg.KeepFile, _ = flags.GetBool("keep-file")
	}
	noBrowser, _ := flags.GetBool("no-browser")
	cfg.Open = !noBrowser

	root, err := cfg.ResolveRoot()
	if err != nil {
		return err
	}

	srv := server.NewStatic(root, cfg, logger)

	// A port conflict must surface before anything is generated or served
	if err := srv.Listen(); err != nil {
		return err
	}

	rules, err := ignore.Load(root)
	if err != nil {
		logger.Warn("could not read .gitignore, continuing without patterns", zap.Error(err))
	}

	dest, count, err := export.WriteMonolithic(root, rules, cfg, logger, printProgress)
	if err != nil {
		return err
	}
	fmt.Println()
	logger.Info("indexed files", zap.Int("count", count), zap.String("dest", dest))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("serving project", zap.String("root", root), zap.String("url", srv.URL()))

	serveErr := srv.Serve(ctx)

	if cfg.KeepFile {
		logger.Info("kept generated file", zap.String("path", dest))
	} else if err := os.Remove(dest); err != nil {
		// Cleanup failure must not mask the original exit path
		logger.Warn("could not remove generated index file", zap.Error(err))
	}
	return serveErr
}

// printProgress draws an in-terminal progress bar while indexing. It is a
// display side effect only.
func printProgress(done, total int) {
	if total == 0 {
		return
	}
	width := 50
	filled := done * width / total
	fmt.Printf("\r  Indexing: [%s%s] %d/%d files",
		repeat('#', filled), repeat('-', width-filled), done, total)
}

func repeat(c byte, n int) string {
	if n < 0 {
		n = 0
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = c
	}
	return string(b)
}
