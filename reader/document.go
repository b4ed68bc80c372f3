package reader

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdfstruct/pdfstruct/model"
)

// Options controls how a document is opened.
type Options struct {
	// Password unlocks encrypted documents. Tried as both user and
	// owner password.
	Password string

	// Logger receives per-page debug output. Defaults to slog.Default.
	Logger *slog.Logger
}

// Document is a PageSource backed by a parsed PDF file.
type Document struct {
	path   string
	ctx    *pdfmodel.Context
	meta   model.DocumentMetadata
	logger *slog.Logger
}

var _ PageSource = (*Document)(nil)

// Open parses and validates the PDF at path.
//
// Encrypted files opened without the right password return an error
// matching model.ErrPasswordRequired; files that cannot be parsed at
// all match model.ErrUnsupportedPDF.
func Open(path string, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	conf := pdfmodel.NewDefaultConfiguration()
	if opts.Password != "" {
		conf.UserPW = opts.Password
		conf.OwnerPW = opts.Password
	}

	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, classifyOpenError(err)
	}

	doc := &Document{
		path:   path,
		ctx:    ctx,
		logger: logger,
	}
	doc.meta = doc.readMetadata(opts.Password != "")
	logger.Debug("document opened", "path", path, "pages", ctx.PageCount)
	return doc, nil
}

// classifyOpenError maps pdfcpu parse failures onto the package's
// sentinel errors.
func classifyOpenError(err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "password") || strings.Contains(msg, "decrypt") ||
		strings.Contains(msg, "encrypt") {
		return fmt.Errorf("%w: %v", model.ErrPasswordRequired, err)
	}
	return fmt.Errorf("%w: %v", model.ErrUnsupportedPDF, err)
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.ctx.PageCount }

// Metadata returns the document info properties.
func (d *Document) Metadata() model.DocumentMetadata { return d.meta }

// Path returns the file the document was opened from.
func (d *Document) Path() string { return d.path }

// Close releases the parsed document. The underlying file is already
// closed; this drops the in-memory cross reference table.
func (d *Document) Close() error {
	d.ctx = nil
	return nil
}

// Page extracts the raw layout of page number (1-based).
func (d *Document) Page(ctx context.Context, number int) (*RawPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.ctx == nil {
		return nil, fmt.Errorf("document closed")
	}
	if number < 1 || number > d.ctx.PageCount {
		return nil, fmt.Errorf("page %d out of range [1,%d]", number, d.ctx.PageCount)
	}

	pageDict, _, attrs, err := d.ctx.PageDict(number, false)
	if err != nil {
		return nil, model.NewExtractionError("reader", number, err)
	}

	width, height := 612.0, 792.0
	rotation := 0
	if attrs != nil {
		if attrs.MediaBox != nil {
			width = attrs.MediaBox.Width()
			height = attrs.MediaBox.Height()
		}
		rotation = attrs.Rotate
	}

	fonts := d.pageFonts(pageDict)
	xobjects := d.pageImages(pageDict)

	content := d.pageContent(number)
	in := newInterpreter(fonts, xobjects)
	in.run(content)

	page := assemblePage(number, width, height, rotation, in.spans, in.rules, in.images)
	d.logger.Debug("page extracted",
		"page", number, "spans", page.SpanCount(),
		"rules", len(page.Rules), "images", len(page.Images))
	return page, nil
}

// ImageBytes returns the stored bytes of the image object xref. Streams
// whose filters pdfcpu cannot decode (DCTDecode and friends) come back
// raw, which for JPEG images is the file content itself.
func (d *Document) ImageBytes(xref int) ([]byte, error) {
	if d.ctx == nil {
		return nil, fmt.Errorf("document closed")
	}
	sd, _, err := d.ctx.DereferenceStreamDict(*types.NewIndirectRef(xref, 0))
	if err != nil {
		return nil, fmt.Errorf("image object %d: %w", xref, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("image object %d: not a stream", xref)
	}
	if err := sd.Decode(); err != nil || len(sd.Content) == 0 {
		return sd.Raw, nil
	}
	return sd.Content, nil
}

// pageContent returns the decoded, concatenated content streams of a
// page. Pages with unreadable content come back empty rather than
// failing the run.
func (d *Document) pageContent(number int) []byte {
	r, err := pdfcpu.ExtractPageContent(d.ctx, number)
	if err != nil {
		d.logger.Debug("content extraction failed", "page", number, "error", err)
		return nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return data
}

// pageFonts resolves the page's font resources to base font names and
// inferred style flags.
func (d *Document) pageFonts(pageDict types.Dict) map[string]fontDef {
	fonts := make(map[string]fontDef)
	res := d.resolveDict(pageDict["Resources"])
	if res == nil {
		return fonts
	}
	fontRes := d.resolveDict(res["Font"])
	for name, ref := range fontRes {
		fd := d.resolveDict(ref)
		if fd == nil {
			continue
		}
		base := name
		if bf, ok := fd["BaseFont"].(types.Name); ok {
			base = trimSubsetPrefix(string(bf))
		}
		fonts[name] = fontDef{Base: base, Flags: fontFlags(base)}
	}
	return fonts
}

// pageImages resolves the page's image XObject resources.
func (d *Document) pageImages(pageDict types.Dict) map[string]imageDef {
	images := make(map[string]imageDef)
	res := d.resolveDict(pageDict["Resources"])
	if res == nil {
		return images
	}
	xobjRes := d.resolveDict(res["XObject"])
	for name, ref := range xobjRes {
		var xref int
		switch v := ref.(type) {
		case types.IndirectRef:
			xref = int(v.ObjectNumber)
		case *types.IndirectRef:
			xref = int(v.ObjectNumber)
		}
		sd := d.resolveStream(ref)
		if sd == nil {
			continue
		}
		if sub, ok := sd.Dict["Subtype"].(types.Name); !ok || sub != "Image" {
			continue
		}
		images[name] = imageDef{
			XRef:      xref,
			Width:     dictInt(sd.Dict, "Width"),
			Height:    dictInt(sd.Dict, "Height"),
			Format:    filterFormat(sd.Dict["Filter"]),
			SizeBytes: len(sd.Raw),
		}
	}
	return images
}

func (d *Document) resolveDict(obj types.Object) types.Dict {
	switch v := obj.(type) {
	case nil:
		return nil
	case types.Dict:
		return v
	case types.IndirectRef:
		dict, err := d.ctx.DereferenceDict(v)
		if err != nil {
			return nil
		}
		return dict
	case *types.IndirectRef:
		dict, err := d.ctx.DereferenceDict(*v)
		if err != nil {
			return nil
		}
		return dict
	default:
		return nil
	}
}

func (d *Document) resolveStream(obj types.Object) *types.StreamDict {
	var ref types.IndirectRef
	switch v := obj.(type) {
	case types.IndirectRef:
		ref = v
	case *types.IndirectRef:
		ref = *v
	default:
		return nil
	}
	sd, _, err := d.ctx.DereferenceStreamDict(ref)
	if err != nil {
		return nil
	}
	return sd
}

// readMetadata pulls the document info dictionary.
func (d *Document) readMetadata(encrypted bool) model.DocumentMetadata {
	meta := model.DocumentMetadata{
		PageCount: d.ctx.PageCount,
		Encrypted: encrypted,
	}
	if d.ctx.Info == nil {
		return meta
	}
	info := d.resolveDict(*d.ctx.Info)
	if info == nil {
		return meta
	}
	meta.Title = dictString(info, "Title")
	meta.Author = dictString(info, "Author")
	meta.Subject = dictString(info, "Subject")
	meta.Creator = dictString(info, "Creator")
	meta.Producer = dictString(info, "Producer")
	meta.CreationDate = dictString(info, "CreationDate")
	meta.ModDate = dictString(info, "ModDate")
	return meta
}

func dictString(dict types.Dict, key string) string {
	switch v := dict[key].(type) {
	case types.StringLiteral:
		return string(v)
	case types.HexLiteral:
		return string(v)
	default:
		return ""
	}
}

func dictInt(dict types.Dict, key string) int {
	if v, ok := dict[key].(types.Integer); ok {
		return int(v)
	}
	return 0
}

// filterFormat maps a stream filter to the image format it implies.
func filterFormat(obj types.Object) string {
	name := ""
	switch v := obj.(type) {
	case types.Name:
		name = string(v)
	case types.Array:
		if len(v) > 0 {
			if n, ok := v[len(v)-1].(types.Name); ok {
				name = string(n)
			}
		}
	}
	switch name {
	case "DCTDecode":
		return "jpeg"
	case "JPXDecode":
		return "jpx"
	case "CCITTFaxDecode":
		return "tiff"
	case "JBIG2Decode":
		return "jbig2"
	case "FlateDecode":
		return "png"
	default:
		return "raw"
	}
}

// trimSubsetPrefix strips the ABCDEF+ subset tag from a base font name.
func trimSubsetPrefix(name string) string {
	if len(name) > 7 && name[6] == '+' {
		allUpper := true
		for _, r := range name[:6] {
			if r < 'A' || r > 'Z' {
				allUpper = false
				break
			}
		}
		if allUpper {
			return name[7:]
		}
	}
	return name
}
