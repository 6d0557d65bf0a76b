package layout

// Flow lays out content top to bottom and continues on a new page once the
// cursor drops below the bottom margin.
type Flow struct {
	// Y is the baseline of the next line.
	Y float64

	doc  *Document
	page *Page
}

// NewFlow starts a flow at the top of a new page.
func (d *Document) NewFlow() *Flow {
	p := d.AddPage()
	return &Flow{Y: p.Top(), doc: d, page: p}
}

// Page returns the page currently being written.
func (f *Flow) Page() *Page {
	return f.page
}

// Space moves the cursor down by dy points.
func (f *Flow) Space(dy float64) {
	f.Y -= dy
}

// Text draws a single line at the cursor without advancing it, so several
// strings can share one baseline.
func (f *Flow) Text(text string, x, size float64, font Font) {
	f.ensure()
	f.page.DrawText(text, x, f.Y, size, font)
}

// Paragraph wraps text to maxWidth and draws it line by line, breaking onto new
// pages as needed. The cursor ends one line below the last line drawn.
func (f *Flow) Paragraph(text string, x, size, maxWidth float64, font Font) {
	for _, line := range Wrap(text, font, size, maxWidth) {
		f.ensure()
		f.page.DrawText(line, x, f.Y, size, font)
		f.Y -= LineHeight
	}
}

func (f *Flow) ensure() {
	if f.Y >= Margin {
		return
	}
	f.page = f.doc.AddPage()
	f.Y = f.page.Top()
}
