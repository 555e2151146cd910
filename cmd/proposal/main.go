// Command proposal generates and inspects AI transformation proposals from
// the command line, sharing the cache of the API server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	config "ai-proposal-api/configs"
	"ai-proposal-api/pkg/app"
)

var (
	verbose bool

	logger      *zap.Logger
	application *app.App
)

var rootCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Generate AI transformation proposals",
	Long: `proposal runs the proposal pipeline against a company website and
manages the per-company stage cache shared with the API server.

Configuration is read from the environment and from a local .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		logger, err = app.NewLogger(verbose)
		if err != nil {
			return err
		}
		application, err = app.New(cmd.Context(), config.LoadConfig(), logger)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	generateCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	generateCmd.Flags().StringVar(&companyURL, "url", "", "Company website URL")
	_ = generateCmd.MarkFlagRequired("name")
	_ = generateCmd.MarkFlagRequired("url")

	showCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	showCmd.Flags().StringVar(&companyURL, "url", "", "Company website URL (optional)")
	_ = showCmd.MarkFlagRequired("name")

	exportCmd.Flags().StringVar(&companyName, "name", "", "Company name")
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (defaults to <company>-strategies.xlsx)")
	_ = exportCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(generateCmd, showCmd, clearCacheCmd, exportCmd, reindexCmd)
}

// execute runs the command line args and releases the application, also
// when the command failed.
func execute(ctx context.Context, args []string, out io.Writer) error {
	rootCmd.SetArgs(args)
	rootCmd.SetOut(out)
	defer func() {
		if application != nil {
			if err := application.Close(); err != nil {
				logger.Warn("shutdown incomplete", zap.Error(err))
			}
			application = nil
		}
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
