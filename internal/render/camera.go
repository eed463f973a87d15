package render

// Camera translates between grid cells and screen cells.
// Grid X is multiplied by 2 because emoji occupy 2 terminal columns.
type Camera struct {
	OffsetX    int
	OffsetY    int
	ViewWidth  int // in terminal columns
	ViewHeight int // in terminal rows
}

// NewCamera creates a camera centered on cell (cx, cy).
func NewCamera(cx, cy, viewW, viewH int) *Camera {
	c := &Camera{ViewWidth: viewW, ViewHeight: viewH}
	c.Center(cx, cy)
	return c
}

// Center repositions the camera so that cell (cx, cy) is in the middle.
func (c *Camera) Center(cx, cy int) {
	c.OffsetX = cx - (c.ViewWidth/2)/2
	c.OffsetY = cy - c.ViewHeight/2
}

// Fit centers a w×h grid in the view, or pins its top-left corner when the
// grid is larger than the view.
func (c *Camera) Fit(w, h int) {
	cols := c.ViewWidth / 2
	if w <= cols {
		c.OffsetX = -(cols - w) / 2
	} else {
		c.OffsetX = min(max(c.OffsetX, 0), w-cols)
	}
	if h <= c.ViewHeight {
		c.OffsetY = -(c.ViewHeight - h) / 2
	} else {
		c.OffsetY = min(max(c.OffsetY, 0), h-c.ViewHeight)
	}
}

// Pan shifts the view by (dx, dy) cells.
func (c *Camera) Pan(dx, dy int) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// WorldToScreen converts cell (wx, wy) to screen (sx, sy).
// visible is false when the result falls outside the viewport.
func (c *Camera) WorldToScreen(wx, wy int) (sx, sy int, visible bool) {
	sx = (wx - c.OffsetX) * 2
	sy = wy - c.OffsetY
	visible = sx >= 0 && sx < c.ViewWidth && sy >= 0 && sy < c.ViewHeight
	return
}

// ScreenToWorld converts screen (sx, sy) to cell coordinates.
func (c *Camera) ScreenToWorld(sx, sy int) (int, int) {
	return sx/2 + c.OffsetX, sy + c.OffsetY
}
