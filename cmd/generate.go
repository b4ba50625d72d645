package main

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pesisirlab/rob-infografis/internal/infographic"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a flood infographic",
	Long: `Generates a daily distribution or monthly recap infographic for the
given affected sub-districts and writes the composed PNG under the
configured output directory.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		areasStr, _ := cmd.Flags().GetString("areas")
		period, _ := cmd.Flags().GetString("period")
		monthly, _ := cmd.Flags().GetBool("monthly")
		outDir, _ := cmd.Flags().GetString("out")

		areas := splitAndTrim(areasStr)
		if len(areas) == 0 {
			return eris.New("generate: --areas requires at least one sub-district name")
		}

		opts := infographic.OptionsFromConfig(cfg)
		if outDir != "" {
			opts.OutputBaseDir = outDir
		}

		svc := infographic.New(opts)
		if err := svc.EnsureOutputDirs(); err != nil {
			return err
		}

		log := zap.L().With(zap.String("command", "generate"))
		log.Info("generating infographic",
			zap.Strings("areas", areas),
			zap.String("period", period),
			zap.Bool("monthly", monthly),
		)

		res := svc.Generate(cmd.Context(), infographic.Request{
			AffectedAreas: areas,
			PeriodLabel:   period,
			MonthlyRecap:  monthly,
		})
		if !res.Success {
			return eris.Errorf("generate: %s", res.Error)
		}

		if res.Warning != "" {
			fmt.Printf("warning: %s\n", res.Warning)
		}
		if res.FilePath != "" {
			fmt.Printf("infographic written to %s\n", res.FilePath)
		} else {
			fmt.Printf("infographic %s generated (not persisted)\n", res.FileName)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("areas", "", "comma-separated affected sub-district names (required)")
	generateCmd.Flags().String("period", "", "period label drawn on the infographic, e.g. \"12 Januari 2026\"")
	generateCmd.Flags().Bool("monthly", false, "generate the monthly recap variant instead of the daily one")
	generateCmd.Flags().String("out", "", "override the configured output base directory")
	_ = generateCmd.MarkFlagRequired("areas")
	rootCmd.AddCommand(generateCmd)
}

// splitAndTrim splits a comma-separated flag value into trimmed non-empty parts.
func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
