package mapmorph

// NodeRenderer is the default SceneRenderer: circles for nodes, spokes for
// rings, walls for the hallway, and upright labels.
type NodeRenderer struct {
	Leader       Color
	Satellite    Color
	Doorway      Color
	Mini         Color
	Undiscovered Color
	Line         Color
	LabelColor   Color
	LabelSize    float64
	LineWidth    float64
}

// NewNodeRenderer returns a renderer with the default palette.
func NewNodeRenderer() *NodeRenderer {
	return &NodeRenderer{
		Leader:       Color{R: 1, G: 0.8, B: 0.3, A: 1},
		Satellite:    Color{R: 0.4, G: 0.75, B: 1, A: 1},
		Doorway:      Color{R: 0.9, G: 0.5, B: 0.3, A: 1},
		Mini:         Color{R: 0.6, G: 0.85, B: 1, A: 1},
		Undiscovered: Color{R: 0.35, G: 0.35, B: 0.4, A: 1},
		Line:         Color{R: 0.5, G: 0.5, B: 0.6, A: 1},
		LabelColor:   ColorWhite,
		LabelSize:    14,
		LineWidth:    2,
	}
}

// NodeColor returns the fill color of a node.
func (r *NodeRenderer) NodeColor(n Node) Color {
	if !n.Discovered {
		return r.Undiscovered
	}
	switch n.Kind {
	case KindLeader:
		return r.Leader
	case KindDoorway:
		return r.Doorway
	default:
		return r.Satellite
	}
}

// ShadeColor returns the palette entry of an overlay shade.
func (r *NodeRenderer) ShadeColor(sh Shade) Color {
	switch sh {
	case ShadeLeader:
		return r.Leader
	case ShadeDoorway:
		return r.Doorway
	case ShadeMini:
		return r.Mini
	case ShadeUndiscovered:
		return r.Undiscovered
	default:
		return r.Satellite
	}
}

// DrawScene implements SceneRenderer.
func (r *NodeRenderer) DrawScene(s Surface, snap *Snapshot, xf SceneTransform, hide HideSet, alpha float64) {
	if snap == nil || alpha <= 0 {
		return
	}
	s.Save()
	s.Transform(xf.Matrix())
	lw := r.LineWidth
	if xf.Scale > 0 {
		lw /= xf.Scale
	}
	switch snap.Level {
	case LevelHallway:
		r.drawWalls(s, snap, lw, alpha)
	default:
		r.drawSpokes(s, snap, lw, alpha)
	}
	for _, n := range snap.Nodes {
		if hide.Has(n.Index) {
			continue
		}
		s.Circle(n.Position, n.Radius, r.NodeColor(n).WithAlpha(alpha), true)
		if snap.Level == LevelCluster && n.Index < len(snap.Meta.Minis) {
			for _, m := range snap.Meta.Minis[n.Index] {
				s.Circle(m, snap.Meta.MiniNodeRadius, r.Mini.WithAlpha(alpha), true)
			}
		}
	}
	s.Restore()

	for _, n := range snap.Nodes {
		if hide.Has(n.Index) || !n.Discovered {
			continue
		}
		pos := xf.World(n.Position).Add(Vec2{0, n.Radius*xf.Scale + labelGap})
		s.Text(n.Label, pos, r.LabelSize, r.LabelColor.WithAlpha(alpha))
	}
}

// DrawEntities draws overlay entities and their labels.
func (r *NodeRenderer) DrawEntities(s Surface, entities []Entity) {
	for _, e := range entities {
		c := r.ShadeColor(e.From).Lerp(r.ShadeColor(e.To), e.Blend)
		s.Circle(e.Position, e.Radius, c, true)
		for _, l := range e.Labels {
			if l.Text == "" || l.Alpha <= 0 {
				continue
			}
			s.Text(l.Text, l.Position, r.LabelSize*l.FontScale, r.LabelColor.WithAlpha(l.Alpha))
		}
	}
}

func (r *NodeRenderer) drawSpokes(s Surface, snap *Snapshot, lw, alpha float64) {
	if len(snap.Nodes) < 2 {
		return
	}
	c := r.Line.WithAlpha(alpha * 0.6)
	center := snap.Nodes[0].Position
	for _, n := range snap.Nodes[1:] {
		s.Line(center, n.Position, lw, c)
	}
}

// drawWalls draws the hallway outline with the doorway gap in the top wall.
func (r *NodeRenderer) drawWalls(s Surface, snap *Snapshot, lw, alpha float64) {
	w := snap.Meta.Walls
	if w.Width <= 0 {
		return
	}
	c := r.Line.WithAlpha(alpha)
	left, right := w.X, w.X+w.Width
	top, bottom := w.Y, w.Y+w.Height
	gapL := w.X + w.Width/2 - snap.Meta.GapWidth/2
	gapR := gapL + snap.Meta.GapWidth
	s.Line(Vec2{left, top}, Vec2{gapL, top}, lw, c)
	s.Line(Vec2{gapR, top}, Vec2{right, top}, lw, c)
	s.Line(Vec2{left, top}, Vec2{left, bottom}, lw, c)
	s.Line(Vec2{right, top}, Vec2{right, bottom}, lw, c)
	s.Line(Vec2{left, bottom}, Vec2{right, bottom}, lw, c)
}
