package main

import (
	"fmt"
	"os"
	"path/filepath"

	"superclaims/internal/service"

	"github.com/spf13/cobra"
)

func newTextCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "text FILE.pdf...",
		Short: "Print the text layer of PDF documents as the service would read it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ocr := service.NewOCRService(root.log)
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				text, err := ocr.ExtractText(cmd.Context(), service.Upload{
					FileName: filepath.Base(path),
					Data:     data,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n%s\n", path, text)
			}
			return nil
		},
	}
}
