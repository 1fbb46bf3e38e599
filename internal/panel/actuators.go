package panel

import (
	"strconv"

	"github.com/Faultbox/physview/internal/physics"
)

// ActuatorBinding is the slider state of one control-limited actuator.
type ActuatorBinding struct {
	Index int
	Name  string
	Min   float64
	Max   float64
	Value float64
}

// Set clamps v to the actuator range and writes it to ctrl.
func (b *ActuatorBinding) Set(ctrl []float64, v float64) {
	b.Value = min(max(v, b.Min), b.Max)
	ctrl[b.Index] = b.Value
}

// BindActuators returns one binding per control-limited actuator of m,
// valued from ctrl.
func BindActuators(m *physics.Model, ctrl []float64) []ActuatorBinding {
	var out []ActuatorBinding
	for i := 0; i < m.NU; i++ {
		if !m.ActuatorCtrlLimited[i] {
			continue
		}
		b := ActuatorBinding{
			Index: i,
			Name:  m.ActuatorName(i),
			Min:   m.ActuatorCtrlRange[2*i],
			Max:   m.ActuatorCtrlRange[2*i+1],
		}
		if b.Name == "" {
			b.Name = "ctrl " + strconv.Itoa(i)
		}
		if i < len(ctrl) {
			b.Value = ctrl[i]
		}
		out = append(out, b)
	}
	return out
}

