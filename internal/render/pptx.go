package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"

	"slideforge/internal/deck"
	"slideforge/internal/editor"
)

// Default 16:9 presentation canvas in EMU (10 x 5.625 inches).
const (
	slideCX = int64(9144000)
	slideCY = int64(5143500)
)

var slidePrefixRe = regexp.MustCompile(`(?i)^\s*Slide\s+\d+\s*:\s*`)

func stripSlidePrefix(s string) string {
	return slidePrefixRe.ReplaceAllString(strings.TrimSpace(s), "")
}

// PPTXRenderer writes editor documents and plain slide lists as PowerPoint
// files. Image resolution is delegated; unresolved images are skipped.
type PPTXRenderer struct {
	resolver *Resolver
	logger   *slog.Logger
}

func NewPPTXRenderer(resolver *Resolver, logger *slog.Logger) *PPTXRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &PPTXRenderer{resolver: resolver, logger: logger}
}

func solidFill(argbColor string) *ppt.Fill {
	return ppt.NewFill().SetSolid(ppt.NewColor(argbColor))
}

// argb converts "#RRGGBB" to the AARRGGBB form the writer expects.
func argb(hex string) string {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(h) != 6 {
		return "FF111111"
	}
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return "FF111111"
		}
	}
	return "FF" + strings.ToUpper(h)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// cropImage cuts the given edge fractions off the source image.
func cropImage(img image.Image, crop CropFractions) image.Image {
	if crop == (CropFractions{}) {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	left := int(math.Round(float64(w) * crop.Left))
	right := int(math.Round(float64(w) * crop.Right))
	top := int(math.Round(float64(h) * crop.Top))
	bottom := int(math.Round(float64(h) * crop.Bottom))

	nw, nh := w-left-right, h-top-bottom
	if nw <= 0 || nh <= 0 {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.Draw(out, out.Bounds(), img, image.Pt(b.Min.X+left, b.Min.Y+top), draw.Src)
	return out
}

// RenderDoc writes the fully positioned document. Page pixels are mapped per
// axis onto the fixed canvas, which is an identity aspect transform for the
// standard 1280x720 page.
func (r *PPTXRenderer) RenderDoc(ctx context.Context, doc *editor.Doc) ([]byte, error) {
	page := doc.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = editor.DefaultPage()
	}
	sx := float64(slideCX) / page.Width
	sy := float64(slideCY) / page.Height

	p := ppt.New()
	p.GetDocumentProperties().Title = docTitle(doc)
	p.GetDocumentProperties().Creator = "slideforge"

	for i := range doc.Slides {
		s := &doc.Slides[i]
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}

		r.paintBackground(slide, s.Background.Fill)

		layers := make([]editor.Layer, len(s.Layers))
		copy(layers, s.Layers)
		sort.SliceStable(layers, func(a, b int) bool { return layers[a].Z < layers[b].Z })

		for j := range layers {
			ly := &layers[j]
			switch ly.Kind {
			case editor.KindTextbox:
				r.addTextLayer(slide, ly, sx, sy)
			case editor.KindImage:
				r.addImageLayer(ctx, slide, ly, sx, sy)
			default:
				// shape layers are schema-valid but render nothing yet
			}
		}
	}

	return writePPTX(p)
}

// RenderSlides is the simple path for a bare slide list: title, bullets and
// an optional image placed on the right.
func (r *PPTXRenderer) RenderSlides(ctx context.Context, slides []deck.Slide, title string) ([]byte, error) {
	p := ppt.New()
	p.GetDocumentProperties().Title = title
	p.GetDocumentProperties().Creator = "slideforge"

	for i := range slides {
		s := &slides[i]
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}

		titleShape := slide.CreateRichTextShape()
		titleShape.SetOffsetX(int64(0.4 * EMUPerInch)).SetOffsetY(int64(0.3 * EMUPerInch))
		titleShape.SetWidth(int64(9.2 * EMUPerInch)).SetHeight(int64(0.9 * EMUPerInch))
		heading := stripSlidePrefix(s.Title)
		if heading == "" {
			heading = fmt.Sprintf("Slide %d", i+1)
		}
		tr := titleShape.CreateTextRun(heading)
		tr.GetFont().SetSize(32).SetBold(true).SetColor(ppt.NewColor("FF111111"))

		if len(s.Bullets) > 0 {
			body := slide.CreateRichTextShape()
			body.SetOffsetX(int64(0.4 * EMUPerInch)).SetOffsetY(int64(1.3 * EMUPerInch))
			body.SetWidth(int64(6.4 * EMUPerInch)).SetHeight(int64(3.9 * EMUPerInch))
			for j, b := range s.Bullets {
				if j > 0 {
					body.CreateParagraph()
				}
				line := b
				if line == "" {
					line = " "
				}
				btr := body.CreateTextRun(line)
				btr.GetFont().SetSize(18).SetColor(ppt.NewColor("FF333333"))
			}
		}

		if img, ok := r.firstImage(ctx, s.Media); ok {
			r.placeImage(slide, img, Rect{
				X: 7.0 * float64(DPI),
				Y: 1.3 * float64(DPI),
				W: 2.6 * float64(DPI),
				H: 2.6 * float64(DPI),
			}, editor.FitContain, float64(EMUPerPx), float64(EMUPerPx))
		}
	}

	return writePPTX(p)
}

// firstImage resolves the first usable media entry, if any.
func (r *PPTXRenderer) firstImage(ctx context.Context, media []deck.Media) (image.Image, bool) {
	if r.resolver == nil {
		return nil, false
	}
	for i := range media {
		m := &media[i]
		img, ok := r.resolver.Resolve(ctx, &editor.Source{
			Type:    m.Source,
			URL:     m.URL,
			AssetID: m.AssetID,
		})
		if ok {
			return img, true
		}
	}
	return nil, false
}

func docTitle(doc *editor.Doc) string {
	for i := range doc.Slides {
		if name := stripSlidePrefix(doc.Slides[i].Name); name != "" {
			return name
		}
	}
	return "Presentation"
}

func (r *PPTXRenderer) paintBackground(slide *ppt.Slide, fill string) {
	if fill == "" {
		fill = "#FFFFFF"
	}
	bg := slide.CreateRichTextShape()
	bg.SetOffsetX(0).SetOffsetY(0)
	bg.SetWidth(slideCX).SetHeight(slideCY)
	bg.SetFill(solidFill(argb(fill)))
}

func (r *PPTXRenderer) addTextLayer(slide *ppt.Slide, ly *editor.Layer, sx, sy float64) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(scaled(ly.Frame.X, sx)).SetOffsetY(scaled(ly.Frame.Y, sy))
	shape.SetWidth(scaled(ly.Frame.W, sx)).SetHeight(scaled(ly.Frame.H, sy))

	fontName := "Inter"
	sizePx := 20.0
	weight := 400
	colorHex := "#111111"
	align := ""
	if st := ly.Style; st != nil {
		if st.Font != "" {
			fontName = st.Font
		}
		if st.Size > 0 {
			sizePx = st.Size
		}
		if st.Weight > 0 {
			weight = st.Weight
		}
		if st.Color != "" {
			colorHex = st.Color
		}
		align = strings.ToLower(st.Align)
	}
	sizePt := int(math.Round(PtFromPx(sizePx)))
	if sizePt < 1 {
		sizePt = 1
	}
	color := ppt.NewColor(argb(colorHex))

	lines := strings.Split(ly.Text, "\n")
	for j, line := range lines {
		if j > 0 {
			shape.CreateParagraph()
		}
		if line == "" {
			// the writer drops fully empty runs, a space keeps the paragraph
			line = " "
		}
		tr := shape.CreateTextRun(line)
		f := tr.GetFont()
		f.SetSize(sizePt).SetBold(weight >= 600).SetColor(color)
		f.Name = fontName

		switch align {
		case "center", "middle":
			shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalCenter))
		case "right", "end":
			shape.GetActiveParagraph().SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
		}
	}
}

func (r *PPTXRenderer) addImageLayer(ctx context.Context, slide *ppt.Slide, ly *editor.Layer, sx, sy float64) {
	if r.resolver == nil {
		return
	}
	img, ok := r.resolver.Resolve(ctx, ly.Source)
	if !ok {
		return
	}
	frame := Rect{X: ly.Frame.X, Y: ly.Frame.Y, W: ly.Frame.W, H: ly.Frame.H}
	fit := ly.Fit
	if fit == "" {
		fit = editor.FitCover
	}
	r.placeImage(slide, img, frame, fit, sx, sy)
}

func (r *PPTXRenderer) placeImage(slide *ppt.Slide, img image.Image, frame Rect, fit string, sx, sy float64) {
	iw := float64(img.Bounds().Dx())
	ih := float64(img.Bounds().Dy())
	if iw <= 0 || ih <= 0 {
		return
	}

	dest := frame
	switch fit {
	case editor.FitFill:
		// stretch, aspect ignored
	case editor.FitContain:
		dest = ContainRect(frame, iw, ih)
	default: // cover
		// The writer has no crop transform, so cut the source pixels and
		// stretch the remainder; the aspect then matches the frame exactly.
		img = cropImage(img, CoverCrop(frame.W, frame.H, iw, ih))
	}

	data, err := encodePNG(img)
	if err != nil {
		r.logger.Warn("image encode failed", "error", err)
		return
	}
	shape := slide.CreateDrawingShape()
	shape.SetImageData(data, "image/png")
	shape.SetOffsetX(scaled(dest.X, sx)).SetOffsetY(scaled(dest.Y, sy))
	shape.SetWidth(scaled(dest.W, sx)).SetHeight(scaled(dest.H, sy))
}

func scaled(px, scale float64) int64 {
	return int64(math.Round(px * scale))
}

func writePPTX(p *ppt.Presentation) ([]byte, error) {
	w, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return nil, fmt.Errorf("create pptx writer: %w", err)
	}
	var buf bytes.Buffer
	if err := w.(*ppt.PPTXWriter).WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write pptx: %w", err)
	}
	return buf.Bytes(), nil
}
