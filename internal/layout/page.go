package layout

import (
	"bytes"
	"fmt"
	"strconv"
)

// US Letter geometry, in points.
const (
	PageWidth  = 612.0
	PageHeight = 792.0
	Margin     = 72.0
	LineHeight = 14.0
)

// ContentWidth is the usable width between the left and right margins.
const ContentWidth = PageWidth - 2*Margin

// TextRun records one string drawn on a page.
type TextRun struct {
	Text string
	X, Y float64
	Size float64
	Font Font
}

// Page accumulates the content stream of a single page.
type Page struct {
	Width, Height float64

	content bytes.Buffer
	runs    []TextRun
}

func newPage() *Page {
	return &Page{Width: PageWidth, Height: PageHeight}
}

// Top returns the y coordinate of the first baseline below the top margin.
func (p *Page) Top() float64 {
	return p.Height - Margin
}

// DrawText draws text with its baseline starting at (x, y), measured from the
// bottom-left corner.
func (p *Page) DrawText(text string, x, y, size float64, f Font) {
	if text == "" {
		return
	}
	fmt.Fprintf(&p.content, "BT\n/%s %s Tf\n%s %s Td\n(%s) Tj\nET\n",
		f.Resource, num(size), num(x), num(y), escapeString(EncodeWinAnsi(text)))
	p.runs = append(p.runs, TextRun{Text: text, X: x, Y: y, Size: size, Font: f})
}

// DrawWrapped wraps text to maxWidth, draws one line per LineHeight starting at
// y and returns the y coordinate below the last line.
func (p *Page) DrawWrapped(text string, x, y, size, maxWidth float64, f Font) float64 {
	for _, line := range Wrap(text, f, size, maxWidth) {
		p.DrawText(line, x, y, size, f)
		y -= LineHeight
	}
	return y
}

// DrawCentered draws text horizontally centred on the page.
func (p *Page) DrawCentered(text string, y, size float64, f Font) {
	p.DrawText(text, (p.Width-f.Width(text, size))/2, y, size, f)
}

// DrawCenteredWrapped wraps text to maxWidth and centres each line, stepping
// down by the larger of LineHeight and 1.25 times size. It returns the y
// coordinate below the last line.
func (p *Page) DrawCenteredWrapped(text string, y, size, maxWidth float64, f Font) float64 {
	step := max(LineHeight, size*1.25)
	for _, line := range Wrap(text, f, size, maxWidth) {
		p.DrawCentered(line, y, size, f)
		y -= step
	}
	return y
}

// Runs returns the strings drawn so far, in drawing order.
func (p *Page) Runs() []TextRun {
	return append([]TextRun(nil), p.runs...)
}

// Text returns the drawn strings joined by newlines.
func (p *Page) Text() string {
	var b bytes.Buffer
	for i, r := range p.runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(r.Text)
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
