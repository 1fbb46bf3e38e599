package ui2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePainter struct {
	texts   []string
	rects   int
	flushes int
}

func (p *fakePainter) DrawRect(x, y, w, h float32, c Color) { p.rects++ }
func (p *fakePainter) DrawRectOutline(x, y, w, h, thickness float32, c Color) {}
func (p *fakePainter) DrawPanel(x, y, w, h float32, bg, border Color) { p.rects++ }
func (p *fakePainter) DrawText(x, y float32, text string, s float32, c Color) {
	p.texts = append(p.texts, text)
}
func (p *fakePainter) MeasureText(text string, scale float32) (float32, float32) {
	return float32(len(text)*7) * scale, 13 * scale
}
func (p *fakePainter) GetScreenSize() (int, int) { return 800, 600 }
func (p *fakePainter) Flush() { p.flushes++ }

// frame runs one UI frame with the mouse at (x, y) and the left button in
// the given state.
func frame(c *Context, x, y float32, down bool, draw func()) {
	in := c.Input()
	in.MouseX, in.MouseY, in.MouseLeftDown = x, y, down
	c.Begin()
	draw()
	c.End()
}

// Window at (0,0) 200 wide: content starts at (8, 30).
func window(c *Context, body func()) func() {
	return func() {
		if c.BeginWindow("w", 0, 0, 200, 300, "Panel") {
			body()
			c.EndWindow()
		}
	}
}

func TestButtonClick(t *testing.T) {
	p := &fakePainter{}
	c := NewContextWithPainter(p)

	clicks := 0
	draw := window(c, func() {
		c.Row(20)
		if c.Button("go", 100, "Go") {
			clicks++
		}
	})

	frame(c, 20, 40, false, draw)
	assert.Zero(t, clicks)
	frame(c, 20, 40, true, draw)
	assert.Equal(t, 1, clicks)
	// Holding does not click again.
	frame(c, 20, 40, true, draw)
	assert.Equal(t, 1, clicks)
	frame(c, 20, 40, false, draw)

	// Outside the button.
	frame(c, 150, 40, true, draw)
	assert.Equal(t, 1, clicks)
	assert.Contains(t, p.texts, "Go")
}

func TestCheckboxToggles(t *testing.T) {
	c := NewContextWithPainter(&fakePainter{})
	on := false
	draw := window(c, func() {
		c.Row(20)
		on = c.Checkbox("pause", "Pause", on)
	})

	frame(c, 12, 40, false, draw)
	frame(c, 12, 40, true, draw)
	assert.False(t, on, "toggles on release")
	frame(c, 12, 40, false, draw)
	assert.True(t, on)
}

func TestSliderDrag(t *testing.T) {
	c := NewContextWithPainter(&fakePainter{})
	v := 0.0
	changed := false
	draw := window(c, func() {
		c.Row(20)
		v, changed = c.Slider("s", 100, v, -1, 1, 0.1, false)
	})

	frame(c, 0, 0, false, draw)
	// Slider spans x in [8, 108]; three quarters is x = 83.
	frame(c, 83, 40, true, draw)
	assert.True(t, changed)
	assert.InDelta(t, 0.5, v, 1e-9)

	// Dragging past the end clamps.
	frame(c, 500, 40, true, draw)
	assert.InDelta(t, 1.0, v, 1e-9)
	frame(c, 500, 40, false, draw)
	assert.False(t, c.WantsMouse())
}

func TestSliderDisabled(t *testing.T) {
	c := NewContextWithPainter(&fakePainter{})
	v := 0.25
	changed := false
	draw := window(c, func() {
		c.Row(20)
		v, changed = c.Slider("s", 100, v, 0, 1, 0, true)
	})

	frame(c, 0, 0, false, draw)
	frame(c, 90, 40, true, draw)
	assert.False(t, changed)
	assert.Equal(t, 0.25, v)
}

func TestSliderValue(t *testing.T) {
	assert.Equal(t, 0.0, SliderValue(-1, 0, 10, 1))
	assert.Equal(t, 10.0, SliderValue(2, 0, 10, 1))
	assert.Equal(t, 4.0, SliderValue(0.42, 0, 10, 1))
	assert.InDelta(t, 0.3, SliderValue(0.64, -1, 1, 0.1), 1e-9)
	assert.InDelta(t, 0.123, SliderValue(0.123, 0, 1, 0), 1e-9)
}

func TestDropdownSelect(t *testing.T) {
	p := &fakePainter{}
	c := NewContextWithPainter(p)
	options := []string{"Humanoid", "Flag", "Mug"}
	sel := 0
	changed := false
	clicked := false
	draw := window(c, func() {
		c.Row(20)
		sel, changed = c.Dropdown("scene", 150, options, sel)
		c.Row(20)
		// Sits under the open list.
		if c.Button("below", 150, "Below") {
			clicked = true
		}
	})

	frame(c, 0, 0, false, draw)
	frame(c, 20, 35, true, draw)
	assert.True(t, c.WantsMouse())
	assert.Equal(t, 1, p.flushes, "popup drawn after a flush")
	assert.Contains(t, p.texts, "Mug")

	frame(c, 20, 35, false, draw)

	// Option rows start at y = 54. "Flag" covers the button below.
	frame(c, 20, 76, true, draw)
	require.True(t, changed)
	assert.Equal(t, 1, sel)
	assert.False(t, clicked, "press consumed by the popup")
	frame(c, 20, 76, false, draw)
	assert.Empty(t, c.openDropdown)
	assert.False(t, clicked)
}

func TestDropdownClosesOnOutsideClick(t *testing.T) {
	c := NewContextWithPainter(&fakePainter{})
	sel := 1
	changed := false
	draw := window(c, func() {
		c.Row(20)
		sel, changed = c.Dropdown("d", 100, []string{"a", "b"}, sel)
	})

	frame(c, 0, 0, false, draw)
	frame(c, 20, 35, true, draw)
	frame(c, 20, 35, false, draw)
	require.True(t, c.WantsMouse())

	frame(c, 700, 500, true, draw)
	assert.False(t, changed)
	assert.Equal(t, 1, sel)
	frame(c, 700, 500, false, draw)
	assert.False(t, c.WantsMouse())
}

func TestWindowDragAndMouseCapture(t *testing.T) {
	c := NewContextWithPainter(&fakePainter{})
	draw := window(c, func() {})

	frame(c, 300, 300, false, draw)
	assert.False(t, c.WantsMouse())

	frame(c, 50, 10, false, draw)
	assert.True(t, c.WantsMouse())

	frame(c, 50, 10, true, draw)
	frame(c, 80, 30, true, draw)
	frame(c, 80, 30, false, draw)
	assert.Equal(t, float32(30), c.windows["w"].X)
	assert.Equal(t, float32(20), c.windows["w"].Y)
}
