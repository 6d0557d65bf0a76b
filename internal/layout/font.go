package layout

import (
	"github.com/pdfcpu/pdfcpu/pkg/font"
)

// Font is one of the standard Type 1 fonts every PDF reader ships, so nothing
// is embedded in the output.
type Font struct {
	// Name is the PostScript base font name.
	Name string
	// Resource is the key the font is registered under in page resources.
	Resource string
}

var (
	Regular = Font{Name: "Times-Roman", Resource: "F1"}
	Bold    = Font{Name: "Times-Bold", Resource: "F2"}
)

// fonts lists every font a document registers, in resource order.
var fonts = []Font{Regular, Bold}

// Width returns the advance width of text set at size points.
func (f Font) Width(text string, size float64) float64 {
	if text == "" {
		return 0
	}
	// Core font metrics are indexed by WinAnsi code, so measure the encoded bytes.
	encoded := string(EncodeWinAnsi(text))
	return font.TextWidth(encoded, f.Name, 1000) * size / 1000
}
