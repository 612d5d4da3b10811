package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-text-search/internal/domain"
	"github.com/ironsheep/image-text-search/internal/ingest"
)

func newIngestCmd(a *app) *cobra.Command {
	var (
		workers    int
		preprocess bool
		noProgress bool
	)

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "OCR image files and add them to the collection",
		Long: `Recognize the text in each file and add the results to the collection.

Files whose name is already in the collection are skipped. If any file
fails, nothing from the batch is added.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("workers") {
				a.cfg.OCR.Workers = workers
			}
			if cmd.Flags().Changed("preprocess") {
				a.cfg.OCR.Preprocess = preprocess
			}

			files, err := readFiles(args)
			if err != nil {
				return err
			}

			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			var onProgress ingest.ProgressFunc
			if !noProgress {
				bar := newProgressBar(cmd)
				onProgress = func(percent float64, stage string) {
					bar.Describe(stage)
					_ = bar.Set64(int64(percent))
				}
			}

			result, err := lib.Add(cmd.Context(), files, onProgress)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, img := range result.Added {
				success(out, "%s %s", idColor.Sprint(img.ID), img.Name)
			}
			for _, name := range result.Skipped {
				warning(out, "%s already in collection, skipped", name)
			}
			fmt.Fprintf(out, "Added %d, skipped %d, %d images in collection\n",
				len(result.Added), len(result.Skipped), lib.Len())
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "number of OCR engines to run concurrently")
	cmd.Flags().BoolVar(&preprocess, "preprocess", false, "grayscale and boost contrast before OCR")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	return cmd
}

// readFiles loads each path; the stored name is the base name.
func readFiles(paths []string) ([]domain.RawFile, error) {
	files := make([]domain.RawFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, domain.RawFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

func newProgressBar(cmd *cobra.Command) *progressbar.ProgressBar {
	w := cmd.ErrOrStderr()
	return progressbar.NewOptions64(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Initializing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
