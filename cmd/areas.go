package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pesisirlab/rob-infografis/internal/boundary"
)

var areasCmd = &cobra.Command{
	Use:   "areas",
	Short: "List sub-district names in the boundary dataset",
	Long: `Lists every distinct sub-district name in the configured boundary
dataset, in dataset scan order. Useful for diagnosing affected-area
names that fail to match.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		ds, err := boundary.LoadShapefile(cfg.Spatial.DatasetPath, cfg.Spatial.NameField)
		if err != nil {
			return err
		}
		for _, name := range ds.Names() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() { rootCmd.AddCommand(areasCmd) }
