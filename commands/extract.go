package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"livepop-server/models/live_popularity"
	"livepop-server/popularity"
	"livepop-server/util"
)

func newExtractCmd() *cobra.Command {
	var (
		labelsFile string
		resultFile string
		placeName  string
		showTags   bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extracts live popularity from a JSON array of labels.",
		Long: "Extracts live popularity from a JSON array of labels, or with " +
			"--result-file reclassifies a saved record from its percentages.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if resultFile != "" {
				res, err := util.ReadResultFromJSON(resultFile)
				if err != nil {
					return err
				}
				if placeName != "" {
					res.PlaceName = placeName
				}
				popularity.Reclassify(res)
				return writeResult(out, res)
			}

			labels, err := util.ReadLabelsFromJSON(labelsFile)
			if err != nil {
				return err
			}

			if showTags {
				t := table.NewWriter()
				t.SetOutputMirror(out)
				t.AppendHeader(table.Row{"#", "Tag", "Label"})
				for i, l := range labels {
					t.AppendRow(table.Row{i, popularity.Tag(l), l})
				}
				t.SetStyle(table.StyleRounded)
				t.Render()
			}

			res := popularity.Extract(placeName, labels)
			return writeResult(out, &res)
		},
	}
	cmd.Flags().StringVar(&labelsFile, "labels-file", "", "JSON file holding an array of accessibility labels")
	cmd.Flags().StringVar(&resultFile, "result-file", "", "JSON file holding a saved record to reclassify")
	cmd.Flags().StringVar(&placeName, "place-name", "", "place name to put on the record")
	cmd.Flags().BoolVar(&showTags, "tags", false, "print how each label was tagged")
	cmd.MarkFlagsOneRequired("labels-file", "result-file")
	cmd.MarkFlagsMutuallyExclusive("labels-file", "result-file")
	cmd.MarkFlagsMutuallyExclusive("result-file", "tags")
	return cmd
}

func writeResult(w io.Writer, res *live_popularity.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}
