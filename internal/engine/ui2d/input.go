package ui2d

// InputState is the pointer state the widgets read. The window layer
// writes the raw fields; Update derives the per-frame edges.
type InputState struct {
	MouseX, MouseY           float32
	MouseDeltaX, MouseDeltaY float32

	MouseLeftDown   bool
	MouseRightDown  bool
	MouseMiddleDown bool

	// Edges of the left button since the previous Update.
	MouseLeftPressed  bool
	MouseLeftReleased bool

	// Wheel motion accumulated this frame.
	ScrollX, ScrollY float32

	KeyCtrl, KeyShift, KeyAlt bool

	prevLeft     bool
	prevX, prevY float32
}

// Update derives deltas and button edges. Call it once per frame after
// the raw fields were written.
func (i *InputState) Update() {
	i.MouseDeltaX = i.MouseX - i.prevX
	i.MouseDeltaY = i.MouseY - i.prevY
	i.prevX, i.prevY = i.MouseX, i.MouseY

	i.MouseLeftPressed = i.MouseLeftDown && !i.prevLeft
	i.MouseLeftReleased = !i.MouseLeftDown && i.prevLeft
	i.prevLeft = i.MouseLeftDown
}

// EndFrame clears the wheel accumulators.
func (i *InputState) EndFrame() {
	i.ScrollX, i.ScrollY = 0, 0
}
