package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	stageLimit   int
	stagePattern string
)

// stageCmd copies PDFs matching --pattern from cfg.PDFSource into
// cfg.PDFProcessing, skipping names already present there, so re-running
// stage over a growing source directory only picks up new files. Staging
// and registration are deliberately separate steps: staging is a pure
// filesystem copy that reads and writes no database rows. The root
// command's PersistentPreRunE still connects to the database before stage
// runs, so stage fails if the database is unreachable.
var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Copy new PDFs from PDF_SOURCE into PDF_PROCESSING",
	RunE: func(cmd *cobra.Command, args []string) error {
		matches, err := filepath.Glob(filepath.Join(current.cfg.PDFSource, stagePattern))
		if err != nil {
			return fmt.Errorf("glob %s: %w", stagePattern, err)
		}

		if err := os.MkdirAll(current.cfg.PDFProcessing, 0o755); err != nil {
			return fmt.Errorf("create processing directory: %w", err)
		}

		staged, skipped := 0, 0
		for _, src := range matches {
			if stageLimit > 0 && staged >= stageLimit {
				break
			}

			dst := filepath.Join(current.cfg.PDFProcessing, filepath.Base(src))
			if _, err := os.Stat(dst); err == nil {
				skipped++
				continue
			}

			if err := copyFile(src, dst); err != nil {
				return fmt.Errorf("stage %s: %w", src, err)
			}
			staged++
		}

		fmt.Printf("staged %d file(s) into %s (%d already present)\n", staged, current.cfg.PDFProcessing, skipped)
		return nil
	},
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

func init() {
	stageCmd.Flags().IntVar(&stageLimit, "limit", 0, "Maximum number of files to stage (0 = unlimited)")
	stageCmd.Flags().StringVar(&stagePattern, "pattern", "*.pdf", "Glob pattern matched against PDF_SOURCE")
}
