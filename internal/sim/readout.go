package sim

import (
	"strconv"

	"github.com/san-kum/pendulab/internal/chain"
)

type LinkReadout struct {
	Length          float64
	Mass            float64
	Angle           float64
	AngularVelocity float64
}

// Readout is the simulator's current state in user units, for display next
// to the parameter controls.
type Readout struct {
	Links         []LinkReadout
	Gravity       float64
	Damping       float64
	ShowPath      bool
	MaxPathPoints int
	Running       bool
	Time          float64
	Energy        float64
}

// Field is one labelled display value. Key matches the SetParam name where
// the field is editable.
type Field struct {
	Key   string
	Label string
	Value string
}

func (s *Simulator) Readout() Readout {
	r := Readout{
		Links:         make([]LinkReadout, s.N()),
		Gravity:       s.state.Gravity / s.scale,
		Damping:       s.state.Damping,
		ShowPath:      s.showPath,
		MaxPathPoints: s.trail.Capacity(),
		Time:          s.time,
		Energy:        s.Energy(),
	}
	for i, l := range s.state.Links {
		r.Links[i] = LinkReadout{
			Length:          s.state.Config[i].Length / s.scale,
			Mass:            s.state.Config[i].Mass,
			Angle:           chain.Degrees(l.Angle),
			AngularVelocity: l.AngularVelocity,
		}
	}
	return r
}

func fixed2(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// Fields formats the readout in ParamNames order. Lengths, angles, gravity
// and damping show two decimals; masses show as entered.
func (r Readout) Fields() []Field {
	var out []Field
	for i, l := range r.Links {
		n := strconv.Itoa(i + 1)
		out = append(out, Field{Key: ParamAngle + n, Label: "Angle " + n, Value: fixed2(l.Angle)})
	}
	for i, l := range r.Links {
		n := strconv.Itoa(i + 1)
		out = append(out, Field{Key: ParamLength + n, Label: "Length " + n, Value: fixed2(l.Length)})
	}
	for i, l := range r.Links {
		n := strconv.Itoa(i + 1)
		out = append(out, Field{Key: ParamMass + n, Label: "Mass " + n, Value: strconv.FormatFloat(l.Mass, 'f', -1, 64)})
	}

	path := "off"
	if r.ShowPath {
		path = "on"
	}
	return append(out,
		Field{Key: ParamGravity, Label: "Gravity", Value: fixed2(r.Gravity)},
		Field{Key: ParamDamping, Label: "Damping", Value: fixed2(r.Damping)},
		Field{Key: ParamMaxPathPoints, Label: "Path points", Value: strconv.Itoa(r.MaxPathPoints)},
		Field{Key: ParamShowPath, Label: "Path", Value: path},
	)
}
