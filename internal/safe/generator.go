package safe

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Lllllllleong/legalassistant/internal/layout"
)

// Generator renders SAFE agreements with the layout package.
type Generator struct {
	// Compress enables Flate compression of page content streams.
	Compress bool

	now func() time.Time
}

// NewGenerator returns a generator that writes uncompressed content streams.
func NewGenerator() *Generator {
	return &Generator{now: time.Now}
}

// Generate validates form and renders the agreement: header, events,
// definitions and signature sections, each starting on a new page.
func (g *Generator) Generate(form Form) ([]byte, error) {
	form = form.Normalize(g.now())
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return g.render(g.Build(form, false))
}

// LivePreview renders only the header page. The form is not validated, so a
// partially filled form still previews, with placeholders for unparseable
// amounts and dates.
func (g *Generator) LivePreview(form Form) ([]byte, error) {
	return g.render(g.Build(form.Normalize(g.now()), true))
}

// Preview renders the full agreement with placeholder data.
func (g *Generator) Preview() ([]byte, error) {
	return g.render(g.Build(PreviewForm(g.now()), false))
}

// Build lays out the agreement without rendering it. With headerOnly set only
// the first page is produced.
func (g *Generator) Build(form Form, headerOnly bool) *layout.Document {
	doc := layout.NewDocument(layout.Info{
		Title:    fmt.Sprintf("SAFE - %s", form.CompanyName),
		Subject:  "Post-Money Valuation Cap",
		Creator:  "legal-assistant",
		Producer: "legal-assistant",
		Created:  g.now(),
	})
	doc.Compress = g.Compress

	values := form.Values()
	headerPage(doc.AddPage(), form, values)
	if headerOnly {
		return doc
	}
	eventsSection(doc.NewFlow())
	definitionsSection(doc.NewFlow())
	signaturePage(doc.AddPage(), form, values)
	return doc
}

func (g *Generator) render(doc *layout.Document) ([]byte, error) {
	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render SAFE document: %w", err)
	}
	return data, nil
}

func headerPage(p *layout.Page, form Form, values map[string]string) {
	width := layout.ContentWidth
	y := p.Top()

	p.DrawText(versionLabel, 50, y, 10, layout.Regular)
	y -= 20
	p.DrawText(capLabel, 50, y, 10, layout.Bold)
	y -= 30

	y = p.DrawWrapped(copyrightText, layout.Margin, y, 9, width, layout.Regular)
	y -= 30
	y = p.DrawWrapped(securitiesDisclaimer, layout.Margin, y, 9, width, layout.Regular)
	y -= 50

	y = p.DrawCenteredWrapped(form.CompanyName, y, 16, width, layout.Bold)
	y -= 20
	p.DrawCentered(safeTitle, y, 16, layout.Bold)
	y -= 20
	p.DrawCentered(safeSubtitle, y, 12, layout.Regular)
	y -= 40

	certifies := fmt.Sprintf(certifiesTemplate,
		values["investorName"], values["purchaseAmount"], values["date"], form.CompanyName, form.CompanyState)
	y = p.DrawWrapped(certifies, layout.Margin, y, 11, width, layout.Regular)
	y -= 30
	y = p.DrawWrapped(formDisclaimer, layout.Margin, y, 11, width, layout.Regular)
	y -= 30
	p.DrawWrapped(fmt.Sprintf(valuationCapTemplate, values["valuationCap"]), layout.Margin, y, 11, width, layout.Regular)
}

func eventsSection(f *layout.Flow) {
	const indent = 40
	width := layout.ContentWidth - indent

	f.Text("1. Events", layout.Margin, 12, layout.Bold)
	f.Space(30)

	for i, c := range eventClauses {
		if i > 0 {
			f.Space(10)
		}
		f.Text(c.label, layout.Margin+20, 11, layout.Bold)
		f.Text(c.heading, layout.Margin+indent, 11, layout.Bold)
		f.Space(20)
		for j, para := range c.body {
			if j > 0 {
				f.Space(6)
			}
			f.Paragraph(para, layout.Margin+indent, 11, width, layout.Regular)
		}
		f.Space(6)
	}
}

func definitionsSection(f *layout.Flow) {
	const indent = 20

	f.Text("2. Definitions", layout.Margin, 12, layout.Bold)
	f.Space(30)

	for _, d := range definitions {
		f.Text(d.term, layout.Margin, 11, layout.Bold)
		f.Space(20)
		f.Paragraph(d.text, layout.Margin+indent, 11, layout.ContentWidth-indent, layout.Regular)
		f.Space(6)
	}
}

func signaturePage(p *layout.Page, form Form, values map[string]string) {
	const (
		labelX = layout.Margin
		valueX = layout.Margin + 50
		wideX  = layout.Margin + 60
		row    = 25
	)
	y := p.Top()

	y = p.DrawWrapped(witnessText, layout.Margin, y, 11, layout.ContentWidth, layout.Regular)
	y -= 60

	// Long values wrap at the right margin; the next row starts below them.
	field := func(label, value string, x float64) {
		p.DrawText(label, labelX, y, 11, layout.Regular)
		next := p.DrawWrapped(value, x, y, 11, layout.Margin+layout.ContentWidth-x, layout.Regular)
		y = min(y-row, next-(row-layout.LineHeight))
	}

	y = p.DrawWrapped(strings.ToUpper(form.CompanyName), layout.Margin, y, 12, layout.ContentWidth, layout.Bold)
	y -= 40 - layout.LineHeight
	field("By:", signatureLine, valueX)
	founder := form.FounderName
	if founder == "" {
		founder = "[Founder Name]"
	}
	field("Name:", founder, valueX)
	field("Title:", form.Title, valueX)
	field("Date:", values["date"], valueX)
	if form.CompanyAddress != "" {
		field("Address:", form.CompanyAddress, wideX)
	}
	if form.CompanyEmail != "" {
		field("Email:", form.CompanyEmail, valueX)
	}
	y -= 15

	p.DrawText("INVESTOR:", layout.Margin, y, 12, layout.Bold)
	y -= 40
	field("By:", signatureLine, valueX)
	field("Name:", form.InvestorName, valueX)
	if form.InvestorTitle != "" {
		field("Title:", form.InvestorTitle, valueX)
	}
	field("Date:", values["date"], valueX)
	if form.InvestorAddress != "" {
		field("Address:", form.InvestorAddress, wideX)
	}
	if form.InvestorEmail != "" {
		field("Email:", form.InvestorEmail, valueX)
	}
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename returns the download name for a generated agreement,
// YC-SAFE-<company>-<date>.pdf.
func Filename(form Form, now time.Time) string {
	company := strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(form.CompanyName), "-"), "-")
	if company == "" {
		company = "Company"
	}
	date := strings.TrimSpace(form.Date)
	if _, err := time.Parse(dateLayout, date); err != nil {
		date = now.Format(dateLayout)
	}
	return fmt.Sprintf("YC-SAFE-%s-%s.pdf", company, date)
}
