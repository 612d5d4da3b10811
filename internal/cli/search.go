package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Find images whose text contains the query",
		Long: `Print every image whose recognized text contains the query as a
case-insensitive substring. Multiple arguments are joined with single spaces.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			matches := lib.Search(query)

			out := cmd.OutOrStdout()
			if output != "" && output != "text" {
				return writeImages(out, output, matches)
			}

			needle := strings.ToLower(query)
			for _, img := range matches {
				fmt.Fprintf(out, "%s  %s\n", idColor.Sprint(img.ID), img.Name)
				fmt.Fprintf(out, "    %s\n", highlight(img.Text, needle))
			}
			fmt.Fprintf(out, "%d of %d images match %q\n", len(matches), lib.Len(), query)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, table, json or yaml")
	return cmd
}
