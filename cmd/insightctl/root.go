package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mind-engage/langinsight/internal/dataset"
	"github.com/mind-engage/langinsight/internal/interpret"
	"github.com/mind-engage/langinsight/internal/logger"
	"github.com/mind-engage/langinsight/internal/report"
	"github.com/mind-engage/langinsight/internal/users"
)

type globalFlags struct {
	csvPath   string
	rulesPath string
	verbose   bool
}

func newRootCmd() *cobra.Command {
	gf := &globalFlags{}
	root := &cobra.Command{
		Use:   "insightctl",
		Short: "Language assessment reports from the command line",
		Long: `insightctl loads an assessment CSV and an interpretation rule table and
prints students, reports, heuristic insights or the plain-text export.

Example:
  insightctl --csv scores.csv --rules configs/rules.yaml report S1 --audience family`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&gf.csvPath, "csv", os.Getenv("DATASET_PATH"), "Assessment CSV (or set DATASET_PATH)")
	root.PersistentFlags().StringVar(&gf.rulesPath, "rules", envOr("RULES_PATH", "./configs/rules.yaml"), "Rule table YAML/JSON (or set RULES_PATH)")
	root.PersistentFlags().BoolVarP(&gf.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newStudentsCmd(gf),
		newReportCmd(gf),
		newInsightsCmd(gf),
		newExportCmd(gf),
		newHashPasswordCmd(),
	)
	return root
}

// open loads the rule table (when needed) and the CSV into a dataset service.
func (gf *globalFlags) open(ctx context.Context, needRules bool) (*dataset.Service, error) {
	if gf.csvPath == "" {
		return nil, errors.New("--csv is required")
	}
	log, err := logger.New("dev", gf.verbose)
	if err != nil {
		return nil, err
	}
	asm := &report.Assembler{Now: time.Now}
	if needRules {
		tbl, err := interpret.LoadTableFile(gf.rulesPath)
		if err != nil {
			return nil, fmt.Errorf("rules %s: %w", gf.rulesPath, err)
		}
		asm.Matcher = interpret.NewMatcher(tbl)
	}
	svc := dataset.NewService(dataset.Config{Assembler: asm, Log: log})
	f, err := os.Open(gf.csvPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dataset.ErrIngest, err)
	}
	defer f.Close()
	if _, err := svc.Load(ctx, f, "file:"+gf.csvPath, ""); err != nil {
		return nil, err
	}
	return svc, nil
}

func newStudentsCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "students",
		Short: "List students in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := gf.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			students, err := svc.Students()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, s := range students {
				fmt.Fprintf(tw, "%s\t%s\n", s.ID, s.Name)
			}
			return tw.Flush()
		},
	}
}

func newReportCmd(gf *globalFlags) *cobra.Command {
	var audience string
	cmd := &cobra.Command{
		Use:   "report [student-id]",
		Short: "Print the interpretation report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aud, err := interpret.ParseAudience(audience)
			if err != nil {
				return err
			}
			svc, err := gf.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			rep, err := svc.Report(args[0], aud)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&audience, "audience", string(interpret.Clinician), "clinician or family")
	return cmd
}

func newInsightsCmd(gf *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "insights [student-id]",
		Short: "Print heuristic insights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := gf.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			ins, err := svc.Insights(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ins) == 0 {
				fmt.Fprintln(out, "No insights.")
				return nil
			}
			for _, in := range ins {
				fmt.Fprintln(out, in.Title+":")
				for _, item := range in.Items {
					fmt.Fprintln(out, "  • "+item)
				}
			}
			return nil
		},
	}
}

func newExportCmd(gf *globalFlags) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "export [student-id]",
		Short: "Write the plain-text report",
		Long: `Writes the plain-text report to stdout, or into --out-dir using the
report_<id>_<date>.txt file name.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := gf.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			if outDir == "" {
				_, err := svc.Export(cmd.Context(), cmd.OutOrStdout(), args[0], "")
				return err
			}
			tmp, err := os.CreateTemp(outDir, ".export-*")
			if err != nil {
				return err
			}
			name, err := svc.Export(cmd.Context(), tmp, args[0], "")
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				_ = os.Remove(tmp.Name())
				return err
			}
			dst := filepath.Join(outDir, name)
			if err := os.Rename(tmp.Name(), dst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for the report file (default: stdout)")
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASS_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := users.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
