package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/legalassistant/internal/safe"
)

var (
	formPath   string
	outputPath string
	preview    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render a SAFE agreement PDF",
	Long: `Render a SAFE agreement from a JSON form.

Without --form the placeholder preview document is rendered.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&formPath, "form", "", "Path to the SAFE form as JSON")
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (defaults to the generated filename)")
	generateCmd.Flags().BoolVar(&preview, "preview", false, "Render only the header page and skip validation")
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	gen := safe.NewGenerator()
	now := time.Now()

	var (
		data     []byte
		filename string
		err      error
	)
	if formPath == "" {
		data, err = gen.Preview()
		filename = "YC-SAFE-Preview.pdf"
	} else {
		var form safe.Form
		form, err = readForm(formPath)
		if err != nil {
			return err
		}
		if preview {
			data, err = gen.LivePreview(form)
		} else {
			data, err = gen.Generate(form)
		}
		filename = safe.Filename(form, now)
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd, data, filename)
}

func readForm(path string) (safe.Form, error) {
	var form safe.Form
	data, err := os.ReadFile(path)
	if err != nil {
		return form, fmt.Errorf("failed to read form: %w", err)
	}
	if err := json.Unmarshal(data, &form); err != nil {
		return form, fmt.Errorf("failed to parse form %s: %w", path, err)
	}
	return form, nil
}

func writeOutput(cmd *cobra.Command, data []byte, filename string) error {
	out := outputPath
	if out == "" {
		out = filename
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", out, len(data))
	return nil
}
