package paint

import (
	"fmt"
	"image/color"

	"github.com/ironsheep/texture-atlas-mcp/internal/project"
	"github.com/ironsheep/texture-atlas-mcp/internal/toolerr"
)

// Op kinds.
const (
	OpSetPixel = "set_pixel"
	OpFillRect = "fill_rect"
	OpDrawRect = "draw_rect"
	OpDrawLine = "draw_line"
)

// MaxExtent bounds every op coordinate, size and line width. It is far
// beyond any texture the atlas can grow to, and keeps X+Width from
// overflowing.
const MaxExtent = 1 << 16

// Shade directions for fill_rect. The named side is the darkest.
const (
	ShadeTop    = "top"
	ShadeBottom = "bottom"
	ShadeLeft   = "left"
	ShadeRight  = "right"
)

// Shade darkens a fill toward one side.
type Shade struct {
	Direction string  `json:"direction"`
	Intensity float64 `json:"intensity"`
}

// Op is one imperative pixel operation.
//
// set_pixel uses X, Y. fill_rect and draw_rect use X, Y, Width, Height.
// draw_line runs from X, Y to X2, Y2. LineWidth applies to draw_rect and
// draw_line and defaults to 1.
type Op struct {
	Op        string `json:"op"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	X2        int    `json:"x2,omitempty"`
	Y2        int    `json:"y2,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Color     string `json:"color"`
	LineWidth *int   `json:"lineWidth,omitempty"`
	Shade     *Shade `json:"shade,omitempty"`
}

// compiled is a validated op with its color resolved.
type compiled struct {
	Op
	color color.NRGBA
	width int
}

// Validate checks every op without applying any of them. The first problem
// fails with InvalidOp naming the op index.
func Validate(ops []Op) error {
	_, err := compile(ops)
	return err
}

func compile(ops []Op) ([]compiled, error) {
	out := make([]compiled, len(ops))
	for i, op := range ops {
		c, err := ParseColor(op.Color)
		if err != nil {
			return nil, toolerr.InvalidOp(i, op.Op, err.Error())
		}
		width := 1
		if op.LineWidth != nil {
			width = *op.LineWidth
		}
		switch op.Op {
		case OpSetPixel:
		case OpFillRect, OpDrawRect:
			if op.Width <= 0 || op.Height <= 0 {
				return nil, toolerr.InvalidOp(i, op.Op, fmt.Sprintf("size %dx%d must be positive", op.Width, op.Height))
			}
		case OpDrawLine:
		default:
			return nil, toolerr.InvalidOp(i, op.Op, "unknown op")
		}
		if err := checkExtent(op, width); err != nil {
			return nil, toolerr.InvalidOp(i, op.Op, err.Error())
		}
		if (op.Op == OpDrawRect || op.Op == OpDrawLine) && width <= 0 {
			return nil, toolerr.InvalidOp(i, op.Op, fmt.Sprintf("lineWidth %d must be positive", width))
		}
		if op.Shade != nil {
			if op.Op != OpFillRect {
				return nil, toolerr.InvalidOp(i, op.Op, "shade is only valid on fill_rect")
			}
			switch op.Shade.Direction {
			case ShadeTop, ShadeBottom, ShadeLeft, ShadeRight:
			default:
				return nil, toolerr.InvalidOp(i, op.Op, fmt.Sprintf("unknown shade direction %q", op.Shade.Direction))
			}
			if op.Shade.Intensity < 0 || op.Shade.Intensity > 1 {
				return nil, toolerr.InvalidOp(i, op.Op, "shade intensity must be between 0 and 1")
			}
		}
		out[i] = compiled{Op: op, color: c, width: width}
	}
	return out, nil
}

func checkExtent(op Op, lineWidth int) error {
	for _, v := range []int{op.X, op.Y, op.X2, op.Y2} {
		if v < -MaxExtent || v > MaxExtent {
			return fmt.Errorf("coordinate %d outside [-%d, %d]", v, MaxExtent, MaxExtent)
		}
	}
	if op.Width > MaxExtent || op.Height > MaxExtent {
		return fmt.Errorf("size %dx%d exceeds %d", op.Width, op.Height, MaxExtent)
	}
	if lineWidth > MaxExtent {
		return fmt.Errorf("lineWidth %d exceeds %d", lineWidth, MaxExtent)
	}
	return nil
}

// Bounds returns the pixel rectangle an op can touch.
func (op Op) Bounds() project.Rect {
	switch op.Op {
	case OpSetPixel:
		return project.Rect{X1: op.X, Y1: op.Y, X2: op.X + 1, Y2: op.Y + 1}
	case OpFillRect, OpDrawRect:
		return project.Rect{X1: op.X, Y1: op.Y, X2: op.X + op.Width, Y2: op.Y + op.Height}
	case OpDrawLine:
		w := 1
		if op.LineWidth != nil && *op.LineWidth > 0 {
			w = *op.LineWidth
		}
		lo, hi := (w-1)/2, w/2
		return project.Rect{
			X1: min(op.X, op.X2) - lo, Y1: min(op.Y, op.Y2) - lo,
			X2: max(op.X, op.X2) + hi + 1, Y2: max(op.Y, op.Y2) + hi + 1,
		}
	}
	return project.Rect{}
}

// canvas writes pixels into a buffer, optionally restricted by a mask.
type canvas struct {
	buf  *project.PixelBuffer
	mask func(x, y int) bool
}

func (c canvas) set(x, y int, col color.NRGBA) {
	if c.mask != nil && !c.mask(x, y) {
		return
	}
	c.buf.Set(x, y, col)
}

func (c canvas) apply(op compiled) {
	switch op.Op.Op {
	case OpSetPixel:
		c.set(op.X, op.Y, op.color)
	case OpFillRect:
		c.fill(op)
	case OpDrawRect:
		c.outline(op)
	case OpDrawLine:
		c.line(op)
	}
}

// bounds is the buffer area.
func (c canvas) bounds() project.Rect {
	return project.Rect{X2: c.buf.Width, Y2: c.buf.Height}
}

func (c canvas) fill(op compiled) {
	r := op.Bounds().Intersect(c.bounds())
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			col := op.color
			if op.Shade != nil {
				col = shadeColor(col, op.Shade.Intensity*shadeFactor(op, x, y))
			}
			c.set(x, y, col)
		}
	}
}

// shadeFactor is 0 on the side opposite the shade direction and 1 on it.
func shadeFactor(op compiled, x, y int) float64 {
	frac := func(pos, size int) float64 {
		if size <= 1 {
			return 0
		}
		return float64(pos) / float64(size-1)
	}
	switch op.Shade.Direction {
	case ShadeTop:
		return 1 - frac(y-op.Y, op.Height)
	case ShadeBottom:
		return frac(y-op.Y, op.Height)
	case ShadeLeft:
		return 1 - frac(x-op.X, op.Width)
	case ShadeRight:
		return frac(x-op.X, op.Width)
	}
	return 0
}

func (c canvas) outline(op compiled) {
	for _, strip := range op.strips() {
		r := strip.Intersect(c.bounds())
		for y := r.Y1; y < r.Y2; y++ {
			for x := r.X1; x < r.X2; x++ {
				c.set(x, y, op.color)
			}
		}
	}
}

// strips returns the four stroke bands of a draw_rect. Bands overlap at the
// corners; a stroke wider than half the rect covers it entirely.
func (op compiled) strips() []project.Rect {
	b := op.Bounds()
	wx, wy := min(op.width, op.Width), min(op.width, op.Height)
	return []project.Rect{
		{X1: b.X1, Y1: b.Y1, X2: b.X2, Y2: b.Y1 + wy},
		{X1: b.X1, Y1: b.Y2 - wy, X2: b.X2, Y2: b.Y2},
		{X1: b.X1, Y1: b.Y1, X2: b.X1 + wx, Y2: b.Y2},
		{X1: b.X2 - wx, Y1: b.Y1, X2: b.X2, Y2: b.Y2},
	}
}

// line draws a Bresenham line, stamping a width x width square per step.
func (c canvas) line(op compiled) {
	op.stamps(func(stamp project.Rect) bool {
		r := stamp.Intersect(c.bounds())
		for y := r.Y1; y < r.Y2; y++ {
			for x := r.X1; x < r.X2; x++ {
				c.set(x, y, op.color)
			}
		}
		return true
	})
}

// stamps walks the squares a draw_line stamps, in order, until fn returns
// false.
func (op compiled) stamps(fn func(project.Rect) bool) {
	x0, y0, x1, y1 := op.X, op.Y, op.X2, op.Y2
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	lo, hi := (op.width-1)/2, op.width/2
	for {
		if !fn(project.Rect{X1: x0 - lo, Y1: y0 - lo, X2: x0 + hi + 1, Y2: y0 + hi + 1}) {
			return
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// touches reports whether any pixel the op draws lies inside one of
// targets.
func (op compiled) touches(targets []project.Rect) bool {
	hit := func(r project.Rect) bool {
		for _, t := range targets {
			if r.Overlaps(t) {
				return true
			}
		}
		return false
	}
	switch op.Op.Op {
	case OpDrawRect:
		for _, s := range op.strips() {
			if hit(s) {
				return true
			}
		}
		return false
	case OpDrawLine:
		found := false
		op.stamps(func(stamp project.Rect) bool {
			found = hit(stamp)
			return !found
		})
		return found
	}
	return hit(op.Bounds())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
