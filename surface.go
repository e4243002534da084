package mapmorph

// Surface is the 2D drawing surface the engine renders onto. Geometry
// calls are affected by the current transform; Text is positioned by the
// transform but always drawn upright and unscaled except for its own size.
type Surface interface {
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(theta float64)
	Scale(sx, sy float64)
	// Transform multiplies the current transform by an affine matrix in
	// [a, b, c, d, tx, ty] layout.
	Transform(m [6]float64)

	Circle(center Vec2, radius float64, c Color, filled bool)
	Line(from, to Vec2, width float64, c Color)
	Text(s string, pos Vec2, size float64, c Color)

	// Size returns the surface size in pixels.
	Size() (w, h float64)
}

// Frame capture is optional. Surfaces that implement FrameCapturer get the
// degraded cross-fade from a rasterized copy of the previous frame; others
// get a plain fade-in of the new scene.
type FrameCapturer interface {
	// CaptureFrame copies the most recently completed frame.
	CaptureFrame() CapturedFrame
	// DrawFrame draws a captured frame over the surface at alpha.
	DrawFrame(f CapturedFrame, alpha float64)
}

// CapturedFrame is an opaque rasterized frame.
type CapturedFrame interface {
	// Dispose releases the frame's resources.
	Dispose()
}

// SceneRenderer draws the static, non-animated content of a scene under the
// scene transform xf. Nodes in hide are drawn by the overlay instead and
// must be skipped. The surface is untransformed when DrawScene is called
// and must be left that way.
type SceneRenderer interface {
	DrawScene(s Surface, snap *Snapshot, xf SceneTransform, hide HideSet, alpha float64)
}
