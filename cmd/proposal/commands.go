package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ai-proposal-api/pkg/cache"
	"ai-proposal-api/pkg/services"
)

var (
	companyName string
	companyURL  string
	outFile     string
)

// errNoCachedProposal makes show exit non-zero.
var errNoCachedProposal = errors.New("no cached proposal")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a proposal and print it as JSON",
	Long: `Runs the full pipeline for a company, reusing cached stages, and prints
the proposal. A failed run prints the canned proposal instead.

Example:
  proposal generate --name "Acme Corp" --url https://acme.example`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := application.Orchestrator.GenerateProposal(cmd.Context(), companyURL, companyName)
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cached proposal of a company",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := application.Orchestrator.LoadCachedProposal(companyName, companyURL)
		if !ok {
			return fmt.Errorf("%w for %s", errNoCachedProposal, companyName)
		}
		return printJSON(cmd.OutOrStdout(), p)
	},
}

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache [company...]",
	Short: "Delete every cached stage of the given companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			id := cache.CompanyID(name)
			if err := application.Cache.Clear(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", id)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the ranked strategies of a cached proposal to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, ok := application.Orchestrator.LoadCachedProposal(companyName, "")
		if !ok {
			return fmt.Errorf("%w for %s", errNoCachedProposal, companyName)
		}
		data, err := services.ExportXLSX(p)
		if err != nil {
			return err
		}
		path := outFile
		if path == "" {
			path = cache.CompanyID(companyName) + "-strategies.xlsx"
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d strategies)\n", path, len(p.AIOpportunities))
		return nil
	},
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [company...]",
	Short: "Archive cached proposals in the similar-strategy index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if application.Index == nil {
			return services.ErrIndexDisabled
		}
		for _, name := range args {
			p, ok := application.Orchestrator.LoadCachedProposal(name, "")
			if !ok {
				logger.Warn("skipping company without cached proposal", zap.String("company", name))
				continue
			}
			if err := application.Index.IndexProposal(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %s (%d strategies)\n", cache.CompanyID(name), len(p.AIOpportunities))
		}
		return nil
	},
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
