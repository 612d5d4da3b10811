package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-text-search/internal/ocr"
)

func newListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}
			return writeImages(cmd.OutOrStdout(), output, lib.List())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json or yaml")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one image record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}
			img, ok := lib.Get(args[0])
			if !ok {
				return fmt.Errorf("image %s not found", args[0])
			}

			out := cmd.OutOrStdout()
			switch output {
			case "json":
				return writeJSON(out, img.WithoutContent())
			case "yaml":
				return writeYAML(out, img.WithoutContent())
			default:
				fmt.Fprintf(out, "ID:   %s\n", idColor.Sprint(img.ID))
				fmt.Fprintf(out, "Name: %s\n", img.Name)
				fmt.Fprintf(out, "Text: %s\n", img.Text)
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Remove images from the collection",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var errs []error
			for _, id := range args {
				if err := lib.Delete(cmd.Context(), id); err != nil {
					errs = append(errs, err)
					continue
				}
				success(out, "Deleted %s", id)
			}
			return errors.Join(errs...)
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every image from the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the collection without --yes")
			}
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}
			n := lib.Len()
			if err := lib.Clear(cmd.Context()); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Cleared %d images", n)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the collection")
	return cmd
}

// infoReport is the output of the info command.
type infoReport struct {
	Version string      `json:"version" yaml:"version"`
	Store   string      `json:"store" yaml:"store"`
	Images  int         `json:"images" yaml:"images"`
	OCR     ocr.OCRInfo `json:"ocr" yaml:"ocr"`
}

func newInfoCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show OCR engine and collection status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			driver := a.cfg.Store.Driver
			if driver == "" {
				driver = "file"
			}
			report := infoReport{
				Version: a.build.Version,
				Store:   driver,
				Images:  lib.Len(),
				OCR:     a.tesseract.Info(cmd.Context()),
			}

			if output == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}
			return writeYAML(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: json or yaml")
	return cmd
}
