package safe

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/legalassistant/internal/pdfdoc"
)

// plainTemplate renders a multi-page PDF without an interactive form.
func plainTemplate(t *testing.T) []byte {
	t.Helper()
	data, err := fixedGenerator().Preview()
	require.NoError(t, err)
	return data
}

// formTemplate renders a one page PDF whose AcroForm has a text field for
// every name.
func formTemplate(t *testing.T, names ...string) []byte {
	t.Helper()
	fields := make([]map[string]any, 0, len(names))
	for i, name := range names {
		fields = append(fields, map[string]any{
			"id":    name,
			"pos":   []float64{100, 750 - float64(i)*30},
			"width": 300,
		})
	}
	doc := map[string]any{
		"paper":  "A4P",
		"origin": "LowerLeft",
		"fonts":  map[string]any{"input": map[string]any{"name": "Helvetica", "size": 12}},
		"pages":  map[string]any{"1": map[string]any{"content": map[string]any{"textfield": fields}}},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, api.Create(nil, bytes.NewReader(data), &buf, pdfdoc.NewConfig()))
	return buf.Bytes()
}

// acroFieldNames lists the text fields of the built-in AcroForm mapping.
func acroFieldNames(t *testing.T) []string {
	t.Helper()
	m, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)
	return m.FieldNames()
}

// exportedValues reads back the value of every form field in data.
func exportedValues(t *testing.T, data []byte) map[string]any {
	t.Helper()
	export := exportForm(data)
	require.NotEmpty(t, export.fields)
	values := map[string]any{}
	for _, f := range export.fields {
		values[f.name()] = f.entry["value"]
	}
	return values
}

func TestBuiltinMappings(t *testing.T) {
	assert.Equal(t, []string{"safe-acroform-v1", DefaultMappingName}, BuiltinMappingNames())

	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)
	assert.Equal(t, "1.2", m.Version)
	require.Len(t, m.Overlay, 4)
	assert.Equal(t, Overlay{Key: "companyName", Page: 1, X: 100, Y: 150, Size: 10}, m.Overlay[0])

	acro, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)
	assert.Equal(t, "company_name", acro.Fields["companyName"])

	_, err = BuiltinMapping("nope")
	assert.Error(t, err)
}

func TestParseMapping_Rejects(t *testing.T) {
	tests := map[string]string{
		"no name":         "fields: {companyName: a}",
		"nothing mapped":  "name: x",
		"unknown key":     "name: x\nfields: {shoeSize: a}",
		"duplicate field": "name: x\nfields: {companyName: a, investorName: a}",
		"overlay page 0":  "name: x\noverlay: [{key: companyName, page: 0, x: 1, y: 1}]",
		"beyond pinned":   "name: x\npageCount: 2\noverlay: [{key: companyName, page: 3, x: 1, y: 1}]",
		"not yaml":        "name: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMapping([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParseMapping_DefaultsOverlaySize(t *testing.T) {
	m, err := ParseMapping([]byte("name: x\noverlay: [{key: companyName, page: 1, x: 1, y: 1}]"))
	require.NoError(t, err)
	assert.Equal(t, 10.0, m.Overlay[0].Size)
}

func TestFiller_InspectPlainTemplate(t *testing.T) {
	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)

	info, err := NewFiller(m, nil).Inspect(plainTemplate(t))
	require.NoError(t, err)
	assert.False(t, info.HasForm)
	assert.Zero(t, info.FieldCount)
	assert.Empty(t, info.FieldNames)
	assert.Equal(t, len(fixedGenerator().Build(PreviewForm(time.Now()), false).Pages()), info.PageCount)
}

func TestFiller_InspectRejectsNonPDF(t *testing.T) {
	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)

	_, err = NewFiller(m, nil).Inspect([]byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestFiller_OverlayOnPlainTemplate(t *testing.T) {
	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)
	template := plainTemplate(t)

	out, err := NewFiller(m, nil).Fill(template, validForm())
	require.NoError(t, err)
	assert.False(t, bytes.Equal(template, out))

	before, err := pdfdoc.PageCount(template)
	require.NoError(t, err)
	after, err := pdfdoc.PageCount(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFiller_Mismatch(t *testing.T) {
	template := plainTemplate(t)

	tests := []struct {
		name    string
		mapping string
	}{
		{name: "pinned page count differs", mapping: "name: pinned\npageCount: 60\noverlay: [{key: companyName, page: 1, x: 100, y: 150}]"},
		{name: "fields against formless template", mapping: "name: fields\nfields: {companyName: company_name}"},
		{name: "overlay beyond last page", mapping: "name: far\noverlay: [{key: companyName, page: 9, x: 100, y: 150}]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := ParseMapping([]byte(tc.mapping))
			require.NoError(t, err)

			_, err = NewFiller(m, nil).Fill(template, validForm())
			assert.ErrorIs(t, err, ErrTemplateMismatch)

			var mismatch *MismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, m.Name, mismatch.Mapping)
		})
	}
}

func TestFiller_FillValidatesForm(t *testing.T) {
	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)

	_, err = NewFiller(m, nil).Fill(plainTemplate(t), Form{})
	assert.ErrorIs(t, err, ErrInvalidForm)
}

func TestFiller_InspectFormTemplate(t *testing.T) {
	m, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)

	info, err := NewFiller(m, nil).Inspect(formTemplate(t, acroFieldNames(t)...))
	require.NoError(t, err)
	assert.True(t, info.HasForm)
	assert.Equal(t, 7, info.FieldCount)
	assert.ElementsMatch(t, acroFieldNames(t), info.FieldNames)
	assert.Equal(t, 1, info.PageCount)
}

func TestFiller_FillsFormFields(t *testing.T) {
	m, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)
	template := formTemplate(t, append(acroFieldNames(t), "notes")...)

	out, err := NewFiller(m, nil).Fill(template, validForm())
	require.NoError(t, err)

	values := exportedValues(t, out)
	assert.Equal(t, "Acme Robotics, Inc.", values["company_name"])
	assert.Equal(t, "Delaware", values["incorporation_state"])
	assert.Equal(t, "Jane Capital LLC", values["investor_name"])
	assert.Equal(t, "$250,000", values["purchase_amount"])
	assert.Equal(t, "$12,000,000", values["valuation_cap"])
	assert.Equal(t, "3/9/2026", values["signature_date"])
	assert.Equal(t, "Chief Executive Officer", values["signatory_title"])
	assert.Equal(t, "", values["notes"])
}

func TestFiller_FillNormalizesForm(t *testing.T) {
	m, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)
	f := NewFiller(m, nil)
	f.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }

	form := validForm()
	form.Date = ""
	form.CompanyName = "  Acme Robotics, Inc.  "

	out, err := f.Fill(formTemplate(t, acroFieldNames(t)...), form)
	require.NoError(t, err)

	values := exportedValues(t, out)
	assert.Equal(t, "10/16/2026", values["signature_date"])
	assert.Equal(t, "Acme Robotics, Inc.", values["company_name"])
}

func TestFiller_FormTemplateMissingField(t *testing.T) {
	m, err := BuiltinMapping("safe-acroform-v1")
	require.NoError(t, err)

	var names []string
	for _, name := range acroFieldNames(t) {
		if name != "signatory_title" {
			names = append(names, name)
		}
	}
	_, err = NewFiller(m, nil).Fill(formTemplate(t, names...), validForm())
	require.ErrorIs(t, err, ErrTemplateMismatch)

	var mismatch *MismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, []string{"signatory_title"}, mismatch.Missing)
}

func TestFiller_OverlayMappingRejectsFormTemplate(t *testing.T) {
	m, err := BuiltinMapping(DefaultMappingName)
	require.NoError(t, err)

	err = NewFiller(m, nil).Check(formTemplate(t, "company_name"))
	assert.ErrorIs(t, err, ErrTemplateMismatch)
}

const exportedForm = `{
	"header": {"source": "template.pdf"},
	"forms": [{
		"textfield": [
			{"pages": [1], "id": "10", "name": "company_name", "value": ""},
			{"pages": [1], "id": "11", "name": "investor_name", "value": ""},
			{"pages": [2], "id": "12", "name": "notes", "value": "keep me"}
		],
		"checkbox": [
			{"pages": [2], "id": "20", "name": "pro_rata", "value": false}
		]
	}]
}`

func TestParseExportAndApplyValues(t *testing.T) {
	export := parseExport([]byte(exportedForm))
	require.Len(t, export.fields, 4)
	assert.Equal(t, "pro_rata", export.fields[0].name(), "kinds are visited in sorted order")

	m := &Mapping{Name: "t", Fields: map[string]string{"companyName": "company_name", "investorName": "investor_name"}}
	applyValues(export, m, validForm().Values())

	values := map[string]any{}
	for _, f := range export.fields {
		values[f.name()] = f.entry["value"]
	}
	assert.Equal(t, "Acme Robotics, Inc.", values["company_name"])
	assert.Equal(t, "Jane Capital LLC", values["investor_name"])
	assert.Equal(t, "keep me", values["notes"])
	assert.Equal(t, false, values["pro_rata"])
}

func TestMismatchError_Message(t *testing.T) {
	err := &MismatchError{Mapping: "m", Reason: "form fields not found in template", Missing: []string{"a", "b"}}
	assert.Equal(t, "template does not match mapping: m: form fields not found in template: missing a, b", err.Error())
	assert.True(t, errors.Is(err, ErrTemplateMismatch))
}
