package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/legalassistant/internal/app"
	"github.com/Lllllllleong/legalassistant/internal/safe"
)

var mappingPath string

var inspectCmd = &cobra.Command{
	Use:   "inspect <template.pdf>",
	Short: "List a template's form fields and check it against the mapping",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&mappingPath, "mapping", "", "Template mapping YAML file or built-in mapping name")
}

type inspectReport struct {
	Template  string   `json:"template"`
	Mapping   string   `json:"mapping"`
	PageCount int      `json:"pageCount"`
	HasForm   bool     `json:"hasForm"`
	Fields    []string `json:"fields"`
	MappingOK bool     `json:"mappingOk"`
	Reason    string   `json:"reason,omitempty"`
	Missing   []string `json:"missing,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	filler, err := newFiller()
	if err != nil {
		return err
	}
	template, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	info, err := filler.Inspect(template)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", args[0], err)
	}
	report := inspectReport{
		Template:  args[0],
		Mapping:   filler.Mapping().Name,
		PageCount: info.PageCount,
		HasForm:   info.HasForm,
		Fields:    info.FieldNames,
		MappingOK: true,
	}
	if err := filler.Check(template); err != nil {
		var mismatch *safe.MismatchError
		if !errors.As(err, &mismatch) {
			return err
		}
		report.MappingOK = false
		report.Reason = mismatch.Reason
		report.Missing = mismatch.Missing
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func newFiller() (*safe.Filler, error) {
	m, err := app.LoadMapping(mappingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	return safe.NewFiller(m, nil), nil
}
