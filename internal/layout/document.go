package layout

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"strings"
	"time"
)

const pdfVersion = "1.7"

// Info is the document information dictionary.
type Info struct {
	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
	Created  time.Time
}

// Document is an ordered list of pages plus metadata. Documents are not safe
// for concurrent use.
type Document struct {
	Info     Info
	Compress bool

	pages []*Page
}

// NewDocument returns an empty document.
func NewDocument(info Info) *Document {
	return &Document{Info: info}
}

// AddPage appends a US Letter page and returns it.
func (d *Document) AddPage() *Page {
	p := newPage()
	d.pages = append(d.pages, p)
	return p
}

// Pages returns the pages in order.
func (d *Document) Pages() []*Page {
	return d.pages
}

// Bytes renders the document.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo renders the document as a PDF file. Object 1 is the catalog, 2 the
// page tree, then one object per font, a content stream and page object per
// page, and the info dictionary last.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if len(d.pages) == 0 {
		return 0, fmt.Errorf("document has no pages")
	}

	const firstFontObj = 3
	firstPageObj := firstFontObj + len(fonts)

	var fontRefs strings.Builder
	for i, f := range fonts {
		fmt.Fprintf(&fontRefs, " /%s %d 0 R", f.Resource, firstFontObj+i)
	}

	objects := make([][]byte, 0, firstPageObj+2*len(d.pages))
	objects = append(objects, []byte("<< /Type /Catalog /Pages 2 0 R >>"))

	kids := make([]string, len(d.pages))
	for i := range d.pages {
		kids[i] = fmt.Sprintf("%d 0 R", firstPageObj+2*i+1)
	}
	objects = append(objects, []byte(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(d.pages))))

	for _, f := range fonts {
		objects = append(objects, []byte(fmt.Sprintf(
			"<< /Type /Font /Subtype /Type1 /BaseFont /%s /Encoding /WinAnsiEncoding >>", f.Name)))
	}

	for i, p := range d.pages {
		stream, err := d.stream(p.content.Bytes())
		if err != nil {
			return 0, err
		}
		objects = append(objects, stream)
		objects = append(objects, []byte(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %s %s] /Contents %d 0 R /Resources << /Font <<%s >> >> >>",
			num(p.Width), num(p.Height), firstPageObj+2*i, fontRefs.String())))
	}

	objects = append(objects, d.infoDict())
	infoObj := len(objects)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n%%\xE2\xE3\xCF\xD3\n", pdfVersion)

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n", i+1)
		buf.Write(obj)
		buf.WriteString("\nendobj\n")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, infoObj, xref)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func (d *Document) stream(content []byte) ([]byte, error) {
	filter := ""
	if d.Compress {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		if _, err := zw.Write(content); err != nil {
			return nil, fmt.Errorf("failed to compress content stream: %w", err)
		}
		if err := zw.Close(); err != nil {
			return nil, fmt.Errorf("failed to compress content stream: %w", err)
		}
		content = zbuf.Bytes()
		filter = " /Filter /FlateDecode"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<< /Length %d%s >>\nstream\n", len(content), filter)
	buf.Write(content)
	buf.WriteString("\nendstream")
	return buf.Bytes(), nil
}

func (d *Document) infoDict() []byte {
	var b strings.Builder
	b.WriteString("<<")
	entry := func(key, value string) {
		if value != "" {
			fmt.Fprintf(&b, " /%s (%s)", key, escapeString(EncodeWinAnsi(value)))
		}
	}
	entry("Title", d.Info.Title)
	entry("Author", d.Info.Author)
	entry("Subject", d.Info.Subject)
	entry("Creator", d.Info.Creator)
	entry("Producer", d.Info.Producer)
	if !d.Info.Created.IsZero() {
		date := d.Info.Created.UTC().Format("D:20060102150405Z")
		fmt.Fprintf(&b, " /CreationDate (%s) /ModDate (%s)", date, date)
	}
	b.WriteString(" >>")
	return []byte(b.String())
}
