package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/legalassistant/internal/safe"
)

var fillCmd = &cobra.Command{
	Use:   "fill <template.pdf>",
	Short: "Fill a SAFE template with the values of a JSON form",
	Args:  cobra.ExactArgs(1),
	RunE:  runFill,
}

func init() {
	fillCmd.Flags().StringVar(&formPath, "form", "", "Path to the SAFE form as JSON")
	fillCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (defaults to the generated filename)")
	fillCmd.Flags().StringVar(&mappingPath, "mapping", "", "Template mapping YAML file or built-in mapping name")
	_ = fillCmd.MarkFlagRequired("form")
}

func runFill(cmd *cobra.Command, args []string) error {
	filler, err := newFiller()
	if err != nil {
		return err
	}
	template, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}
	form, err := readForm(formPath)
	if err != nil {
		return err
	}

	data, err := filler.Fill(template, form)
	if err != nil {
		return err
	}
	return writeOutput(cmd, data, safe.Filename(form, time.Now()))
}
