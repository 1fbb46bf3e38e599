package ui2d

import (
	"fmt"
	gomath "math"
)

// TextScale is the scale widgets draw their text at.
const TextScale = 1

const (
	titleBarH = 22
	padding   = 8
	rowHeight = 20
)

// Painter is what widgets draw with. *Renderer is the GL implementation.
type Painter interface {
	DrawRect(x, y, width, height float32, color Color)
	DrawRectOutline(x, y, width, height, thickness float32, color Color)
	DrawPanel(x, y, width, height float32, bg, border Color)
	DrawText(x, y float32, text string, scale float32, color Color)
	MeasureText(text string, scale float32) (float32, float32)
	GetScreenSize() (int, int)
	// Flush draws everything queued so far, so later draws overlay it.
	Flush()
}

// Context is the main UI context that manages rendering and input.
type Context struct {
	painter  Painter
	renderer *Renderer
	input    *InputState

	// Active/hot widget tracking for interaction
	hotWidget    string
	activeWidget string

	// Window state
	windows map[string]*WindowState

	// Current window being drawn
	currentWindow *WindowState

	// The open dropdown and the area its list covered last frame.
	openDropdown string
	popupRect    Rect
	popups       []func()

	// Mouse over any window this frame.
	mouseOverUI bool

	// Layout state
	cursorX float32
	cursorY float32
	rowH    float32
}

// WindowState holds state for a UI window.
type WindowState struct {
	ID     string
	X, Y   float32
	W, H   float32
	Open   bool
	Moving bool
}

// NewContext creates a UI context drawing with a new GL renderer.
func NewContext(width, height int) (*Context, error) {
	r, err := New(width, height)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	c := NewContextWithPainter(r)
	c.renderer = r
	return c, nil
}

// NewContextWithPainter creates a UI context drawing with p.
func NewContextWithPainter(p Painter) *Context {
	return &Context{
		painter: p,
		input:   &InputState{},
		windows: make(map[string]*WindowState),
	}
}

// Close releases resources.
func (c *Context) Close() {
	if c.renderer != nil {
		c.renderer.Close()
	}
}

// Renderer returns the GL renderer, nil when drawing with another painter.
func (c *Context) Renderer() *Renderer {
	return c.renderer
}

// Resize updates the screen size.
func (c *Context) Resize(width, height int) {
	if c.renderer != nil {
		c.renderer.Resize(width, height)
	}
}

// Input returns the input state for modification.
func (c *Context) Input() *InputState {
	return c.input
}

// Begin starts a new UI frame.
func (c *Context) Begin() {
	c.input.Update()
	c.mouseOverUI = false
	c.hotWidget = ""
	if c.renderer != nil {
		c.renderer.Begin()
	}
}

// End draws pending popups on top and finishes the UI frame.
func (c *Context) End() {
	if len(c.popups) > 0 {
		c.painter.Flush()
		for _, draw := range c.popups {
			draw()
		}
		c.popups = c.popups[:0]
	} else if c.openDropdown == "" {
		c.popupRect = Rect{}
	}
	if c.renderer != nil {
		c.renderer.End()
	}
	c.input.EndFrame()
}

// WantsMouse reports whether the mouse is over the UI or a widget holds
// it, in which case the scene should ignore mouse input.
func (c *Context) WantsMouse() bool {
	return c.mouseOverUI || c.activeWidget != "" || c.openDropdown != ""
}

// hover reports whether the mouse is inside r and not covered by an open
// popup.
func (c *Context) hover(r Rect) bool {
	mx, my := c.input.MouseX, c.input.MouseY
	return r.Contains(mx, my) && !c.popupRect.Contains(mx, my)
}

// BeginWindow starts a new window.
// Returns false if the window is closed.
func (c *Context) BeginWindow(id string, x, y, w, h float32, title string) bool {
	ws, ok := c.windows[id]
	if !ok {
		ws = &WindowState{ID: id, X: x, Y: y, W: w, H: h, Open: true}
		c.windows[id] = ws
	} else {
		// Size follows the caller, position belongs to the user once moved.
		ws.W, ws.H = w, h
	}
	if !ws.Open {
		return false
	}
	c.currentWindow = ws

	titleBar := Rect{ws.X, ws.Y, ws.W, titleBarH}
	if c.input.MouseLeftPressed && c.hover(titleBar) {
		ws.Moving = true
		c.activeWidget = id + "_titlebar"
	}
	if ws.Moving && c.input.MouseLeftDown {
		ws.X += c.input.MouseDeltaX
		ws.Y += c.input.MouseDeltaY
	}
	if c.input.MouseLeftReleased {
		ws.Moving = false
		if c.activeWidget == id+"_titlebar" {
			c.activeWidget = ""
		}
	}
	if (Rect{ws.X, ws.Y, ws.W, ws.H}).Contains(c.input.MouseX, c.input.MouseY) {
		c.mouseOverUI = true
	}

	c.painter.DrawPanel(ws.X, ws.Y, ws.W, ws.H, ColorPanelBg, ColorPanelBorder)
	c.painter.DrawRect(ws.X+1, ws.Y+1, ws.W-2, titleBarH-1, ColorButtonNormal)
	_, textH := c.painter.MeasureText(title, TextScale)
	c.painter.DrawText(ws.X+padding, ws.Y+(titleBarH-textH)/2, title, TextScale, ColorText)

	c.cursorX = ws.X + padding
	c.cursorY = ws.Y + titleBarH + padding
	c.rowH = 0
	return true
}

// EndWindow ends the current window.
func (c *Context) EndWindow() {
	c.currentWindow = nil
}

// Row starts a new row with the given height.
func (c *Context) Row(height float32) {
	if c.currentWindow == nil {
		return
	}
	c.cursorX = c.currentWindow.X + padding
	c.cursorY += c.rowH + 4
	c.rowH = height
}

func (c *Context) rowHeight() float32 {
	if c.rowH == 0 {
		return rowHeight
	}
	return c.rowH
}

func (c *Context) contentWidth() float32 {
	return c.currentWindow.X + c.currentWindow.W - padding - c.cursorX
}

// Button draws a button and returns true if clicked.
func (c *Context) Button(id string, width float32, label string) bool {
	if c.currentWindow == nil {
		return false
	}

	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.contentWidth()
	}

	fullID := c.currentWindow.ID + "_" + id
	hovered := c.hover(Rect{x, y, width, h})
	clicked := false
	if hovered {
		c.hotWidget = fullID
		if c.input.MouseLeftPressed {
			c.activeWidget = fullID
			clicked = true
		}
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		c.activeWidget = ""
	}

	color := ColorButtonNormal
	if c.activeWidget == fullID {
		color = ColorButtonActive
	} else if hovered {
		color = ColorButtonHover
	}
	c.painter.DrawRect(x, y, width, h, color)
	c.painter.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder)
	c.centerText(x, y, width, h, label, ColorText)

	c.cursorX += width + 4
	return clicked
}

// ButtonDisabled draws a disabled button (no interaction).
func (c *Context) ButtonDisabled(id string, width float32, label string) {
	if c.currentWindow == nil {
		return
	}
	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.contentWidth()
	}
	c.painter.DrawRect(x, y, width, h, ColorButtonNormal.Darken(0.3))
	c.painter.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder.Darken(0.3))
	c.centerText(x, y, width, h, label, ColorTextDim)
	c.cursorX += width + 4
}

func (c *Context) centerText(x, y, w, h float32, text string, color Color) {
	textW, textH := c.painter.MeasureText(text, TextScale)
	c.painter.DrawText(x+(w-textW)/2, y+(h-textH)/2, text, TextScale, color)
}

// Label draws a text label.
func (c *Context) Label(text string) {
	c.LabelColored(text, ColorText)
}

// LabelColored draws a text label with a specific color.
func (c *Context) LabelColored(text string, color Color) {
	if c.currentWindow == nil {
		return
	}
	c.painter.DrawText(c.cursorX, c.cursorY, text, TextScale, color)
	w, _ := c.painter.MeasureText(text, TextScale)
	c.cursorX += w + 4
}

// LabelFixed draws a label in a column of the given width.
func (c *Context) LabelFixed(text string, width float32, color Color) {
	if c.currentWindow == nil {
		return
	}
	_, textH := c.painter.MeasureText(text, TextScale)
	c.painter.DrawText(c.cursorX, c.cursorY+(c.rowHeight()-textH)/2, text, TextScale, color)
	c.cursorX += width
}

// Text draws free-standing text outside any window.
func (c *Context) Text(x, y float32, text string, color Color) {
	c.painter.DrawText(x, y, text, TextScale, color)
}

// MeasureText returns the size of text at the widget scale.
func (c *Context) MeasureText(text string) (float32, float32) {
	return c.painter.MeasureText(text, TextScale)
}

// Hovered reports whether the mouse is over the current window.
func (c *Context) Hovered() bool {
	if c.currentWindow == nil {
		return false
	}
	ws := c.currentWindow
	return (Rect{ws.X, ws.Y, ws.W, ws.H}).Contains(c.input.MouseX, c.input.MouseY)
}

// Separator draws a horizontal separator line.
func (c *Context) Separator() {
	if c.currentWindow == nil {
		return
	}
	c.cursorY += c.rowH + 4
	c.rowH = 0
	x := c.currentWindow.X + padding
	c.painter.DrawRect(x, c.cursorY, c.currentWindow.W-2*padding, 1, ColorPanelBorder)
	c.cursorY += padding
	c.cursorX = x
}

// Checkbox draws a checkbox and returns its new state.
func (c *Context) Checkbox(id string, label string, checked bool) bool {
	if c.currentWindow == nil {
		return checked
	}

	x, y := c.cursorX, c.cursorY
	boxSize := float32(16)

	fullID := c.currentWindow.ID + "_" + id
	hovered := c.hover(Rect{x, y, boxSize, boxSize})
	if hovered && c.input.MouseLeftPressed {
		c.activeWidget = fullID
	}
	if c.activeWidget == fullID && c.input.MouseLeftReleased {
		if hovered {
			checked = !checked
		}
		c.activeWidget = ""
	}

	bg := ColorInputBg
	if hovered {
		bg = ColorButtonHover
	}
	c.painter.DrawRect(x, y, boxSize, boxSize, bg)
	c.painter.DrawRectOutline(x, y, boxSize, boxSize, 1, ColorPanelBorder)
	if checked {
		inner := float32(4)
		c.painter.DrawRect(x+inner, y+inner, boxSize-2*inner, boxSize-2*inner, ColorHighlight)
	}

	labelW, textH := c.painter.MeasureText(label, TextScale)
	c.painter.DrawText(x+boxSize+padding, y+(boxSize-textH)/2, label, TextScale, ColorText)
	c.cursorX += boxSize + padding + labelW + padding
	return checked
}

// Slider draws a horizontal slider over [lo, hi] snapped to step and
// returns the new value and whether it changed. A disabled slider is drawn
// dimmed and ignores input.
func (c *Context) Slider(id string, width float32, value, lo, hi, step float64, disabled bool) (float64, bool) {
	if c.currentWindow == nil {
		return value, false
	}

	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.contentWidth()
	}
	fullID := c.currentWindow.ID + "_" + id
	track := Rect{x, y, width, h}

	changed := false
	if !disabled && hi > lo {
		if c.hover(track) && c.input.MouseLeftPressed {
			c.activeWidget = fullID
		}
		if c.activeWidget == fullID {
			if c.input.MouseLeftDown || c.input.MouseLeftPressed {
				frac := float64((c.input.MouseX - x) / width)
				if v := SliderValue(frac, lo, hi, step); v != value {
					value, changed = v, true
				}
			}
			if c.input.MouseLeftReleased {
				c.activeWidget = ""
			}
		}
	}

	bg, fill, text := ColorInputBg, ColorHighlight, ColorText
	if disabled {
		bg, fill, text = bg.Darken(0.3), ColorTextDim, ColorTextDim
	}
	c.painter.DrawRect(x, y, width, h, bg)
	c.painter.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder)
	if hi > lo {
		frac := float32((min(max(value, lo), hi) - lo) / (hi - lo))
		c.painter.DrawRect(x+1, y+1, (width-2)*frac, h-2, fill.WithAlpha(0.6))
	}
	c.centerText(x, y, width, h, formatValue(value, step), text)

	c.cursorX += width + 4
	return value, changed
}

// SliderValue maps a track fraction to a value in [lo, hi] snapped to
// step from lo.
func SliderValue(frac, lo, hi, step float64) float64 {
	frac = min(max(frac, 0), 1)
	v := lo + frac*(hi-lo)
	if step > 0 {
		v = lo + gomath.Round((v-lo)/step)*step
	}
	return min(max(v, lo), hi)
}

func formatValue(v, step float64) string {
	if step >= 1 && step == gomath.Trunc(step) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Dropdown draws a combo box and returns the selected index and whether
// the selection changed. The option list opens below the box and is drawn
// above every window.
func (c *Context) Dropdown(id string, width float32, options []string, selected int) (int, bool) {
	if c.currentWindow == nil {
		return selected, false
	}

	x, y, h := c.cursorX, c.cursorY, c.rowHeight()
	if width == 0 {
		width = c.contentWidth()
	}
	fullID := c.currentWindow.ID + "_" + id
	box := Rect{x, y, width, h}
	list := Rect{x, y + h, width, float32(len(options)) * h}
	open := c.openDropdown == fullID

	changed := false
	if c.input.MouseLeftPressed {
		switch {
		case open && list.Contains(c.input.MouseX, c.input.MouseY):
			i := int((c.input.MouseY - list.Y) / h)
			if i >= 0 && i < len(options) {
				changed = i != selected
				selected = i
			}
			c.openDropdown = ""
		case box.Contains(c.input.MouseX, c.input.MouseY) && (open || !c.popupRect.Contains(c.input.MouseX, c.input.MouseY)):
			if open {
				c.openDropdown = ""
			} else {
				c.openDropdown = fullID
			}
		case open:
			c.openDropdown = ""
		}
		// Consumed: later widgets must not see this press.
		if open || c.openDropdown == fullID {
			c.input.MouseLeftPressed = false
		}
	}

	label := ""
	if selected >= 0 && selected < len(options) {
		label = options[selected]
	}
	bg := ColorInputBg
	if c.hover(box) {
		bg = ColorButtonHover
	}
	c.painter.DrawRect(x, y, width, h, bg)
	c.painter.DrawRectOutline(x, y, width, h, 1, ColorPanelBorder)
	_, textH := c.painter.MeasureText(label, TextScale)
	c.painter.DrawText(x+4, y+(h-textH)/2, label, TextScale, ColorText)
	arrowW, _ := c.painter.MeasureText("v", TextScale)
	c.painter.DrawText(x+width-arrowW-4, y+(h-textH)/2, "v", TextScale, ColorTextDim)

	if c.openDropdown == fullID {
		c.popupRect = list
		mx, my := c.input.MouseX, c.input.MouseY
		c.popups = append(c.popups, func() {
			c.painter.DrawPanel(list.X, list.Y, list.W, list.H, ColorPanelBg, ColorPanelBorder)
			for i, opt := range options {
				row := Rect{list.X, list.Y + float32(i)*h, list.W, h}
				if i == selected {
					c.painter.DrawRect(row.X, row.Y, row.W, row.H, ColorHighlight.WithAlpha(0.5))
				} else if row.Contains(mx, my) {
					c.painter.DrawRect(row.X, row.Y, row.W, row.H, ColorButtonHover)
				}
				c.painter.DrawText(row.X+4, row.Y+(h-textH)/2, opt, TextScale, ColorText)
			}
		})
	}

	c.cursorX += width + 4
	return selected, changed
}

// GetScreenSize returns the current screen dimensions.
func (c *Context) GetScreenSize() (float32, float32) {
	w, h := c.painter.GetScreenSize()
	return float32(w), float32(h)
}

// Rect is a simple rectangle struct.
type Rect struct {
	X, Y, W, H float32
}

// Contains checks if a point is inside the rectangle.
func (r Rect) Contains(x, y float32) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}
