package reader

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdfstruct/pdfstruct/model"
)

// fontDef is the resolved description of a page font resource.
type fontDef struct {
	Base  string
	Flags int
}

// imageDef is the resolved description of an image XObject resource.
type imageDef struct {
	XRef      int
	Width     int
	Height    int
	Format    string
	SizeBytes int
}

// matrix is a PDF transformation matrix [a b c d e f].
type matrix struct {
	A, B, C, D, E, F float64
}

func identity() matrix { return matrix{A: 1, D: 1} }

func translation(tx, ty float64) matrix { return matrix{A: 1, D: 1, E: tx, F: ty} }

// mul returns m1 applied before m2.
func mul(m1, m2 matrix) matrix {
	return matrix{
		A: m1.A*m2.A + m1.B*m2.C,
		B: m1.A*m2.B + m1.B*m2.D,
		C: m1.C*m2.A + m1.D*m2.C,
		D: m1.C*m2.B + m1.D*m2.D,
		E: m1.E*m2.A + m1.F*m2.C + m2.E,
		F: m1.E*m2.B + m1.F*m2.D + m2.F,
	}
}

func (m matrix) apply(x, y float64) (float64, float64) {
	return m.A*x + m.C*y + m.E, m.B*x + m.D*y + m.F
}

// interpreter replays a page content stream and records the text spans,
// ruling lines and image placements it produces. All output coordinates
// are in PDF space (bottom-left origin); the assembler flips them.
type interpreter struct {
	fonts    map[string]fontDef
	xobjects map[string]imageDef

	ctm      matrix
	ctmStack []matrix

	tm, tlm   matrix
	font      fontDef
	fontSize  float64
	leading   float64
	charSpace float64
	wordSpace float64
	hscale    float64
	fillColor int

	path      [][2]float64
	pathStart [2]float64

	spans  []RawSpan
	rules  []RuleLine
	images []RawImage
}

func newInterpreter(fonts map[string]fontDef, xobjects map[string]imageDef) *interpreter {
	return &interpreter{
		fonts:    fonts,
		xobjects: xobjects,
		ctm:      identity(),
		tm:       identity(),
		tlm:      identity(),
		fontSize: 12,
		hscale:   100,
	}
}

// run replays the content stream. Malformed operators are skipped; a
// content stream never fails as a whole.
func (in *interpreter) run(content []byte) {
	lex := newLexer(content)
	var stack []token
	for {
		tok, ok := lex.next()
		if !ok {
			break
		}
		if tok.kind == tokOperator {
			in.exec(tok.text, stack)
			stack = stack[:0]
			continue
		}
		stack = append(stack, tok)
	}
}

func (in *interpreter) exec(op string, args []token) {
	switch op {
	case "q":
		in.ctmStack = append(in.ctmStack, in.ctm)
	case "Q":
		if n := len(in.ctmStack); n > 0 {
			in.ctm = in.ctmStack[n-1]
			in.ctmStack = in.ctmStack[:n-1]
		}
	case "cm":
		if m, ok := matrixArgs(args); ok {
			in.ctm = mul(m, in.ctm)
		}

	case "BT":
		in.tm = identity()
		in.tlm = identity()
	case "ET":

	case "Tf":
		if len(args) >= 2 {
			name := strings.TrimPrefix(args[0].text, "/")
			if f, ok := in.fonts[name]; ok {
				in.font = f
			} else {
				in.font = fontDef{Base: name}
			}
			in.fontSize = num(args[1])
		}
	case "Td":
		if len(args) >= 2 {
			in.tlm = mul(translation(num(args[0]), num(args[1])), in.tlm)
			in.tm = in.tlm
		}
	case "TD":
		if len(args) >= 2 {
			in.leading = -num(args[1])
			in.tlm = mul(translation(num(args[0]), num(args[1])), in.tlm)
			in.tm = in.tlm
		}
	case "Tm":
		if m, ok := matrixArgs(args); ok {
			in.tm = m
			in.tlm = m
		}
	case "T*":
		in.nextLine()
	case "TL":
		if len(args) >= 1 {
			in.leading = num(args[0])
		}
	case "Tc":
		if len(args) >= 1 {
			in.charSpace = num(args[0])
		}
	case "Tw":
		if len(args) >= 1 {
			in.wordSpace = num(args[0])
		}
	case "Tz":
		if len(args) >= 1 {
			in.hscale = num(args[0])
		}

	case "Tj":
		if len(args) >= 1 && args[0].kind == tokString {
			in.showText(args[0].text)
		}
	case "'":
		in.nextLine()
		if len(args) >= 1 && args[0].kind == tokString {
			in.showText(args[0].text)
		}
	case "\"":
		if len(args) >= 3 {
			in.wordSpace = num(args[0])
			in.charSpace = num(args[1])
			in.nextLine()
			if args[2].kind == tokString {
				in.showText(args[2].text)
			}
		}
	case "TJ":
		in.showTextArray(args)

	case "m":
		if len(args) >= 2 {
			in.pathStart = [2]float64{num(args[0]), num(args[1])}
			in.path = append(in.path[:0], in.pathStart)
		}
	case "l":
		if len(args) >= 2 {
			in.path = append(in.path, [2]float64{num(args[0]), num(args[1])})
		}
	case "re":
		if len(args) >= 4 {
			x, y := num(args[0]), num(args[1])
			w, h := num(args[2]), num(args[3])
			in.path = append(in.path,
				[2]float64{x, y}, [2]float64{x + w, y},
				[2]float64{x + w, y + h}, [2]float64{x, y + h},
				[2]float64{x, y})
		}
	case "h":
		if len(in.path) > 0 {
			in.path = append(in.path, in.pathStart)
		}
	case "S", "s", "B", "B*", "b", "b*", "f", "F", "f*":
		in.paintPath()
		in.path = in.path[:0]
	case "n":
		in.path = in.path[:0]

	case "rg":
		if len(args) >= 3 {
			in.fillColor = packRGB(num(args[0]), num(args[1]), num(args[2]))
		}
	case "g":
		if len(args) >= 1 {
			v := num(args[0])
			in.fillColor = packRGB(v, v, v)
		}
	case "k":
		if len(args) >= 4 {
			c, m, y, k := num(args[0]), num(args[1]), num(args[2]), num(args[3])
			in.fillColor = packRGB((1-c)*(1-k), (1-m)*(1-k), (1-y)*(1-k))
		}

	case "Do":
		if len(args) >= 1 {
			in.placeXObject(strings.TrimPrefix(args[0].text, "/"))
		}
	}
}

func (in *interpreter) nextLine() {
	in.tlm = mul(translation(0, -in.leading), in.tlm)
	in.tm = in.tlm
}

// showText records one span for a Tj/TJ string at the current text
// position and advances the text matrix past it.
func (in *interpreter) showText(s string) {
	if s == "" {
		return
	}
	trm := mul(in.tm, in.ctm)
	size := in.fontSize * math.Hypot(trm.C, trm.D)
	if size == 0 {
		size = in.fontSize
	}
	ox, oy := trm.E, trm.F

	// Displacement accumulates in text space, then maps through the
	// combined matrix to device space.
	advance := 0.0
	for _, r := range s {
		w := glyphWidth(r) * in.fontSize
		if r == ' ' {
			w += in.wordSpace
		}
		w += in.charSpace
		advance += w * in.hscale / 100
	}
	shown := advance * math.Hypot(trm.A, trm.B)

	in.spans = append(in.spans, RawSpan{
		Text:   s,
		Font:   in.font.Base,
		Size:   size,
		Flags:  in.font.Flags,
		Color:  in.fillColor,
		Origin: model.Point{X: ox, Y: oy},
		BBox: model.BoundingBox{
			X0: ox, Y0: oy, X1: ox + shown, Y1: oy + size,
		},
	})

	in.tm = mul(translation(advance, 0), in.tm)
}

func (in *interpreter) showTextArray(args []token) {
	for _, a := range args {
		switch a.kind {
		case tokString:
			in.showText(a.text)
		case tokNumber:
			adj := -num(a) / 1000 * in.fontSize * in.hscale / 100
			in.tm = mul(translation(adj, 0), in.tm)
		}
	}
}

// paintPath converts the current path to ruling segments in device
// space. Both stroked and filled paths count; thin filled rectangles
// are how many generators draw table rules.
func (in *interpreter) paintPath() {
	for i := 1; i < len(in.path); i++ {
		x0, y0 := in.ctm.apply(in.path[i-1][0], in.path[i-1][1])
		x1, y1 := in.ctm.apply(in.path[i][0], in.path[i][1])
		if x0 == x1 && y0 == y1 {
			continue
		}
		in.rules = append(in.rules, RuleLine{X0: x0, Y0: y0, X1: x1, Y1: y1, Width: 1})
	}
}

// placeXObject records an image placement at the CTM unit square.
func (in *interpreter) placeXObject(name string) {
	def, ok := in.xobjects[name]
	if !ok {
		return
	}
	corners := [4][2]float64{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x, y := in.ctm.apply(c[0], c[1])
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	in.images = append(in.images, RawImage{
		XRef:      def.XRef,
		Width:     def.Width,
		Height:    def.Height,
		Format:    def.Format,
		SizeBytes: def.SizeBytes,
		BBox:      model.BoundingBox{X0: minX, Y0: minY, X1: maxX, Y1: maxY},
	})
}

func matrixArgs(args []token) (matrix, bool) {
	if len(args) < 6 {
		return matrix{}, false
	}
	return matrix{
		A: num(args[0]), B: num(args[1]),
		C: num(args[2]), D: num(args[3]),
		E: num(args[4]), F: num(args[5]),
	}, true
}

func num(t token) float64 {
	f, _ := strconv.ParseFloat(t.text, 64)
	return f
}

func packRGB(r, g, b float64) int {
	clamp := func(v float64) int {
		if v < 0 {
			return 0
		}
		if v > 1 {
			return 255
		}
		return int(v * 255)
	}
	return clamp(r)<<16 | clamp(g)<<8 | clamp(b)
}

// glyphWidth approximates the advance of a glyph as a fraction of the
// font size. Exact metrics would need the font program; the estimate is
// close enough for layout grouping.
func glyphWidth(r rune) float64 {
	switch r {
	case ' ':
		return 0.25
	case 'i', 'l', 'j', 'I', '!', '.', ',', ';', ':', '\'', '|':
		return 0.3
	case 'm', 'M', 'W', 'w':
		return 0.8
	default:
		return 0.5
	}
}

// fontFlags infers style bits from a base font name, the usual
// convention for fonts without an explicit descriptor.
func fontFlags(base string) int {
	lower := strings.ToLower(base)
	flags := 0
	if strings.Contains(lower, "bold") {
		flags |= 1 << 4
	}
	if strings.Contains(lower, "italic") || strings.Contains(lower, "oblique") {
		flags |= 1 << 1
	}
	return flags
}
