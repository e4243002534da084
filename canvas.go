package mapmorph

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

// matrixStack is a save/restore stack of [a, b, c, d, tx, ty] transforms.
type matrixStack struct {
	cur   [6]float64
	saved [][6]float64
}

func newMatrixStack() matrixStack {
	return matrixStack{cur: identityTransform}
}

func (m *matrixStack) save() {
	m.saved = append(m.saved, m.cur)
}

// restore pops the last saved transform. An unbalanced restore resets to
// the identity.
func (m *matrixStack) restore() {
	n := len(m.saved)
	if n == 0 {
		m.cur = identityTransform
		return
	}
	m.cur = m.saved[n-1]
	m.saved = m.saved[:n-1]
}

func (m *matrixStack) concat(t [6]float64) {
	m.cur = multiplyAffine(m.cur, t)
}

func (m *matrixStack) reset() {
	m.cur = identityTransform
	m.saved = m.saved[:0]
}

// point maps a local point to pixels.
func (m *matrixStack) point(p Vec2) Vec2 {
	x, y := transformPoint(m.cur, p.X, p.Y)
	return Vec2{x, y}
}

// scale returns the uniform scale of the current transform.
func (m *matrixStack) scale() float64 {
	return math.Sqrt(math.Abs(m.cur[0]*m.cur[3] - m.cur[1]*m.cur[2]))
}

// Canvas is an ebiten-backed Surface. It double-buffers frames so the last
// completed frame stays available for capture while the next one is drawn.
type Canvas struct {
	// Background fills each new frame.
	Background Color

	cur, prev *ebiten.Image
	w, h      int
	m         matrixStack
	source    *text.GoTextFaceSource
	faces     map[float64]*text.GoTextFace
}

// NewCanvas creates a canvas of the given pixel size using the Go Regular
// font for labels.
func NewCanvas(w, h int) (*Canvas, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("mapmorph: failed to parse label font: %w", err)
	}
	c := &Canvas{
		Background: Color{R: 0.08, G: 0.09, B: 0.12, A: 1},
		m:          newMatrixStack(),
		source:     source,
		faces:      make(map[float64]*text.GoTextFace),
	}
	c.Resize(w, h)
	return c, nil
}

// Resize reallocates both buffers. Contents are lost.
func (c *Canvas) Resize(w, h int) {
	if w == c.w && h == c.h && c.cur != nil {
		return
	}
	if c.cur != nil {
		c.cur.Deallocate()
		c.prev.Deallocate()
	}
	c.w, c.h = max(w, 1), max(h, 1)
	c.cur = ebiten.NewImage(c.w, c.h)
	c.prev = ebiten.NewImage(c.w, c.h)
}

// BeginFrame finishes the previous frame and clears a fresh one.
func (c *Canvas) BeginFrame() {
	c.cur, c.prev = c.prev, c.cur
	c.cur.Fill(c.Background.toRGBA())
	c.m.reset()
}

// Image returns the frame being drawn.
func (c *Canvas) Image() *ebiten.Image {
	return c.cur
}

// Present draws the current frame onto dst.
func (c *Canvas) Present(dst *ebiten.Image) {
	dst.DrawImage(c.cur, nil)
}

func (c *Canvas) Save()    { c.m.save() }
func (c *Canvas) Restore() { c.m.restore() }

func (c *Canvas) Translate(x, y float64) {
	c.m.concat(translateAffine(Vec2{x, y}))
}

func (c *Canvas) Rotate(theta float64) {
	c.m.concat(rotateAffine(theta))
}

func (c *Canvas) Scale(sx, sy float64) {
	c.m.concat([6]float64{sx, 0, 0, sy, 0, 0})
}

func (c *Canvas) Transform(m [6]float64) {
	c.m.concat(m)
}

// Circle draws a circle. Radius is scaled by the transform's uniform scale.
func (c *Canvas) Circle(center Vec2, radius float64, col Color, filled bool) {
	if col.A <= 0 {
		return
	}
	p := c.m.point(center)
	r := float32(radius * c.m.scale())
	if filled {
		vector.DrawFilledCircle(c.cur, float32(p.X), float32(p.Y), r, col.toRGBA(), true)
		return
	}
	vector.StrokeCircle(c.cur, float32(p.X), float32(p.Y), r, 1, col.toRGBA(), true)
}

func (c *Canvas) Line(from, to Vec2, width float64, col Color) {
	if col.A <= 0 {
		return
	}
	a, b := c.m.point(from), c.m.point(to)
	w := float32(width * c.m.scale())
	vector.StrokeLine(c.cur, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), w, col.toRGBA(), true)
}

// Text draws s horizontally centered on the transformed pos, upright and at
// the given pixel size.
func (c *Canvas) Text(s string, pos Vec2, size float64, col Color) {
	if s == "" || col.A <= 0 || size <= 0 {
		return
	}
	p := c.m.point(pos)
	op := &text.DrawOptions{}
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleWithColor(col.toRGBA())
	op.PrimaryAlign = text.AlignCenter
	text.Draw(c.cur, s, c.face(size), op)
}

// face returns a cached face for size, rounded to half pixels.
func (c *Canvas) face(size float64) *text.GoTextFace {
	size = math.Round(size*2) / 2
	f, ok := c.faces[size]
	if !ok {
		f = &text.GoTextFace{Source: c.source, Size: size}
		c.faces[size] = f
	}
	return f
}

func (c *Canvas) Size() (w, h float64) {
	return float64(c.w), float64(c.h)
}

// imageFrame is a captured frame held in its own image.
type imageFrame struct {
	img *ebiten.Image
}

func (f *imageFrame) Dispose() {
	if f.img != nil {
		f.img.Deallocate()
		f.img = nil
	}
}

// CaptureFrame copies the last completed frame.
func (c *Canvas) CaptureFrame() CapturedFrame {
	img := ebiten.NewImage(c.w, c.h)
	img.DrawImage(c.prev, nil)
	return &imageFrame{img: img}
}

// DrawFrame draws a captured frame over the current one at alpha,
// ignoring the transform.
func (c *Canvas) DrawFrame(f CapturedFrame, alpha float64) {
	fr, ok := f.(*imageFrame)
	if !ok || fr.img == nil || alpha <= 0 {
		return
	}
	var op ebiten.DrawImageOptions
	op.ColorScale.ScaleAlpha(float32(clamp01(alpha)))
	c.cur.DrawImage(fr.img, &op)
}
