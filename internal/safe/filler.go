package safe

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/Lllllllleong/legalassistant/internal/models"
	"github.com/Lllllllleong/legalassistant/internal/pdfdoc"
)

// ErrTemplateMismatch is returned when a template does not have the layout its
// mapping describes.
var ErrTemplateMismatch = errors.New("template does not match mapping")

// MismatchError explains why a template was rejected.
type MismatchError struct {
	Mapping string
	Reason  string
	Missing []string
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrTemplateMismatch, e.Mapping, e.Reason)
	if len(e.Missing) > 0 {
		msg += ": missing " + strings.Join(e.Missing, ", ")
	}
	return msg
}

func (e *MismatchError) Unwrap() error { return ErrTemplateMismatch }

// Filler fills SAFE templates according to a mapping.
type Filler struct {
	mapping *Mapping
	logger  *slog.Logger
	now     func() time.Time
}

// NewFiller creates a filler for one template mapping.
func NewFiller(m *Mapping, logger *slog.Logger) *Filler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Filler{mapping: m, logger: logger.With("mapping", m.Name), now: time.Now}
}

// Mapping returns the mapping the filler applies.
func (f *Filler) Mapping() *Mapping {
	return f.mapping
}

// formField is one entry of a pdfcpu form export.
type formField struct {
	kind  string
	entry map[string]any
}

func (ff formField) name() string {
	s, _ := ff.entry["name"].(string)
	return s
}

// formExport is the decoded JSON of pdfcpu's form export, kept generic so that
// it can be written back to the form filler unchanged apart from values.
type formExport struct {
	raw    map[string]any
	fields []formField
}

// Inspect reports the interactive form fields and page count of template.
func (f *Filler) Inspect(template []byte) (*models.TemplateInspection, error) {
	pages, err := pdfdoc.PageCount(template)
	if err != nil {
		return nil, err
	}
	export := exportForm(template)

	names := make([]string, 0, len(export.fields))
	for _, field := range export.fields {
		names = append(names, field.name())
	}
	return &models.TemplateInspection{
		FieldCount: len(names),
		FieldNames: names,
		HasForm:    len(names) > 0,
		PageCount:  pages,
	}, nil
}

// Check verifies that template matches the mapping without filling it.
func (f *Filler) Check(template []byte) error {
	_, _, err := f.plan(template)
	return err
}

// Fill normalizes and validates form and writes its values into template.
// Mapped form fields are filled when the template has an interactive form;
// overlay positions are stamped when it has none. Any other combination is a
// mismatch.
func (f *Filler) Fill(template []byte, form Form) ([]byte, error) {
	form = form.Normalize(f.now())
	if err := form.Validate(); err != nil {
		return nil, err
	}
	export, useForm, err := f.plan(template)
	if err != nil {
		return nil, err
	}

	values := form.Values()
	if useForm {
		f.logger.Info("Filling template form fields.", "fieldCount", len(f.mapping.Fields))
		return fillFields(template, export, f.mapping, values)
	}
	f.logger.Info("Stamping template overlay.", "overlayCount", len(f.mapping.Overlay))
	return stampOverlay(template, f.mapping, values)
}

// plan decides how template will be filled and returns the form export used
// to do it.
func (f *Filler) plan(template []byte) (formExport, bool, error) {
	pages, err := pdfdoc.PageCount(template)
	if err != nil {
		return formExport{}, false, err
	}
	m := f.mapping
	if m.PageCount > 0 && pages != m.PageCount {
		return formExport{}, false, &MismatchError{
			Mapping: m.Name,
			Reason:  fmt.Sprintf("template has %d pages, mapping expects %d", pages, m.PageCount),
		}
	}

	export := exportForm(template)
	hasForm := len(export.fields) > 0

	switch {
	case hasForm && len(m.Fields) > 0:
		present := make(map[string]bool, len(export.fields))
		for _, field := range export.fields {
			present[field.name()] = true
		}
		var missing []string
		for _, name := range m.FieldNames() {
			if !present[name] {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return formExport{}, false, &MismatchError{Mapping: m.Name, Reason: "form fields not found in template", Missing: missing}
		}
		return export, true, nil

	case !hasForm && len(m.Overlay) > 0:
		for _, o := range m.Overlay {
			if o.Page > pages {
				return formExport{}, false, &MismatchError{
					Mapping: m.Name,
					Reason:  fmt.Sprintf("overlay %s targets page %d of a %d page template", o.Key, o.Page, pages),
				}
			}
		}
		return export, false, nil

	case hasForm:
		return formExport{}, false, &MismatchError{Mapping: m.Name, Reason: "template has form fields but the mapping only has overlay positions"}
	default:
		return formExport{}, false, &MismatchError{Mapping: m.Name, Reason: "template has no form fields and the mapping has no overlay positions"}
	}
}

// exportForm reads the interactive form of template. A template without a
// form, or one pdfcpu cannot export, yields no fields.
func exportForm(template []byte) formExport {
	var buf bytes.Buffer
	if err := api.ExportFormJSON(bytes.NewReader(template), &buf, "template.pdf", pdfdoc.NewConfig()); err != nil {
		return formExport{}
	}

	return parseExport(buf.Bytes())
}

func parseExport(data []byte) formExport {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return formExport{}
	}

	export := formExport{raw: raw}
	forms, _ := raw["forms"].([]any)
	for _, fm := range forms {
		group, ok := fm.(map[string]any)
		if !ok {
			continue
		}
		kinds := make([]string, 0, len(group))
		for kind := range group {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		for _, kind := range kinds {
			entries, ok := group[kind].([]any)
			if !ok {
				continue
			}
			for _, e := range entries {
				if entry, ok := e.(map[string]any); ok {
					export.fields = append(export.fields, formField{kind: kind, entry: entry})
				}
			}
		}
	}
	return export
}

func fillFields(template []byte, export formExport, m *Mapping, values map[string]string) ([]byte, error) {
	applyValues(export, m, values)

	data, err := json.Marshal(export.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form values: %w", err)
	}
	var out bytes.Buffer
	if err := api.FillForm(bytes.NewReader(template), bytes.NewReader(data), &out, pdfdoc.NewConfig()); err != nil {
		return nil, fmt.Errorf("failed to fill form: %w", err)
	}
	return out.Bytes(), nil
}

// applyValues sets the value of every mapped field in export.
func applyValues(export formExport, m *Mapping, values map[string]string) {
	byField := make(map[string]string, len(m.Fields))
	for key, field := range m.Fields {
		byField[field] = values[key]
	}

	for _, field := range export.fields {
		value, ok := byField[field.name()]
		if !ok {
			continue
		}
		switch field.kind {
		case "checkbox":
			v := strings.ToLower(value)
			field.entry["value"] = v == "true" || v == "checked" || v == "yes"
		default:
			field.entry["value"] = value
		}
	}
}

func stampOverlay(template []byte, m *Mapping, values map[string]string) ([]byte, error) {
	out := template
	for _, o := range m.Overlay {
		text := values[o.Key]
		if text == "" {
			continue
		}
		desc := fmt.Sprintf("fontname:Times-Roman, points:%s, position:tl, offset:%s -%s, scalefactor:1 abs, rotation:0, fillcolor:#000000, opacity:1",
			strconv.FormatFloat(o.Size, 'f', -1, 64),
			strconv.FormatFloat(o.X, 'f', -1, 64),
			strconv.FormatFloat(o.Y, 'f', -1, 64))
		wm, err := api.TextWatermark(text, desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("failed to build overlay for %s: %w", o.Key, err)
		}

		var buf bytes.Buffer
		if err := api.AddWatermarks(bytes.NewReader(out), &buf, []string{strconv.Itoa(o.Page)}, wm, pdfdoc.NewConfig()); err != nil {
			return nil, fmt.Errorf("failed to stamp %s: %w", o.Key, err)
		}
		out = buf.Bytes()
	}
	return out, nil
}
