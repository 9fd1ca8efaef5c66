package sim_test

import (
	"math"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendulab/internal/chain"
	"github.com/san-kum/pendulab/internal/dynamics"
	"github.com/san-kum/pendulab/internal/sim"
)

type recorder struct {
	frames []sim.Frame
}

func (r *recorder) Render(f sim.Frame) { r.frames = append(r.frames, f) }

func (r *recorder) last() sim.Frame { return r.frames[len(r.frames)-1] }

type angles []float64

func (a angles) InitialAngles() []float64 { return a }

const frame = 16 * time.Millisecond

var _ = Describe("Driver", func() {
	var (
		clock  *sim.ManualClock
		queue  *sim.FrameQueue
		out    *recorder
		params sim.Params
		s      *sim.Simulator
		d      *sim.Driver
	)

	BeforeEach(func() {
		clock = sim.NewManualClock(time.Unix(0, 0))
		queue = &sim.FrameQueue{}
		out = &recorder{}
		params = sim.DefaultParams(2)

		var err error
		s, err = sim.New(params, nil)
		Expect(err).NotTo(HaveOccurred())
		d = sim.NewDriver(s, clock, queue, out, params)
	})

	// serve advances the clock one frame and runs the tick if one was asked for.
	serve := func(n int) {
		for i := 0; i < n; i++ {
			clock.Advance(frame)
			if queue.Take() {
				d.Tick()
			}
		}
	}

	It("starts paused without asking for frames", func() {
		Expect(d.Running()).To(BeFalse())
		Expect(queue.Pending()).To(Equal(0))
		Expect(d.Readout().Running).To(BeFalse())
	})

	Describe("Start", func() {
		It("runs and requests exactly one frame", func() {
			Expect(d.Start()).To(BeTrue())
			Expect(d.Running()).To(BeTrue())
			Expect(queue.Pending()).To(Equal(1))
		})

		It("is ignored while running", func() {
			d.Start()
			Expect(d.Start()).To(BeFalse())
			Expect(queue.Pending()).To(Equal(1))
		})
	})

	Describe("Tick", func() {
		It("steps by the elapsed clock time and renders", func() {
			ref := s.State()
			d.Start()
			serve(3)

			for i := 0; i < 3; i++ {
				dynamics.Step(ref, frame.Seconds())
			}
			got := s.State()
			for i := range ref.Links {
				Expect(got.Links[i].Angle).To(BeNumerically("~", ref.Links[i].Angle, 1e-12))
			}
			Expect(out.frames).To(HaveLen(3))
			Expect(out.last().Running).To(BeTrue())
			Expect(queue.Pending()).To(Equal(1))
		})

		It("records one trail point per link per frame", func() {
			d.Start()
			serve(5)

			f := out.last()
			Expect(f.Trails).To(HaveLen(2))
			Expect(f.Trails[0]).To(HaveLen(5))
			Expect(f.Trails[1]).To(HaveLen(5))
			Expect(f.Trails[1][4]).To(Equal(f.Bobs[1]))
		})

		It("records no trail with the path off", func() {
			s.SetShowPath(false)
			d.Start()
			serve(5)

			Expect(out.last().Trails).To(BeNil())
			Expect(s.Trail()[0]).To(BeEmpty())
		})

		It("skips the step but still draws on a zero delta", func() {
			d.Start()
			before := s.State()
			Expect(queue.Take()).To(BeTrue())
			d.Tick()

			Expect(s.Time()).To(BeZero())
			Expect(s.State().Links).To(Equal(before.Links))
			Expect(out.frames).To(HaveLen(1))
			Expect(s.Trail()[0]).To(HaveLen(1))
		})

		It("drops frame gaps above MaxFrameDelta", func() {
			d.Start()
			clock.Advance(2 * time.Second)
			Expect(queue.Take()).To(BeTrue())
			d.Tick()
			Expect(s.Time()).To(BeZero())

			serve(1)
			Expect(s.Time()).To(BeNumerically("~", frame.Seconds(), 1e-12))
		})

		It("uses the whole gap when MaxFrameDelta is zero", func() {
			d.MaxFrameDelta = 0
			d.Start()
			clock.Advance(2 * time.Second)
			Expect(queue.Take()).To(BeTrue())
			d.Tick()

			Expect(s.Time()).To(BeNumerically("~", 2, 1e-12))
		})

		It("keeps running when the state diverges", func() {
			s.SetLength(0, 0)
			d.Start()
			serve(3)

			Expect(s.State().IsFinite()).To(BeFalse())
			Expect(d.Running()).To(BeTrue())
			Expect(queue.Pending()).To(Equal(1))
		})
	})

	Describe("Pause", func() {
		It("stops the tick chain", func() {
			d.Start()
			serve(2)
			d.Pause()
			t := s.Time()

			serve(1)
			Expect(queue.Pending()).To(Equal(0))

			serve(10)
			Expect(s.Time()).To(Equal(t))
			Expect(out.frames).To(HaveLen(2))
		})

		It("does not fork a second chain on a quick restart", func() {
			d.Start()
			serve(1)
			d.Pause()
			d.Start()

			Expect(queue.Pending()).To(Equal(1))
			serve(4)
			Expect(queue.Pending()).To(Equal(1))
			Expect(out.frames).To(HaveLen(5))
		})

		It("toggles between the two states", func() {
			d.Toggle()
			Expect(d.Running()).To(BeTrue())
			d.Toggle()
			Expect(d.Running()).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		BeforeEach(func() {
			d.Start()
			serve(30)
		})

		It("pauses, restores angles and clears motion and trail", func() {
			d.Reset()

			Expect(d.Running()).To(BeFalse())
			st := s.State()
			for i, l := range st.Links {
				Expect(chain.Degrees(l.Angle)).To(BeNumerically("~", params.Angles[i], 1e-9))
				Expect(l.AngularVelocity).To(BeZero())
				Expect(l.AngularAcceleration).To(BeZero())
			}
			Expect(s.Trail()[0]).To(BeEmpty())
			Expect(out.last().Running).To(BeFalse())
			Expect(out.last().Trails[0]).To(BeEmpty())
		})

		It("does not resume on its own", func() {
			d.Reset()
			n := len(out.frames)
			serve(10)

			Expect(d.Running()).To(BeFalse())
			Expect(out.frames).To(HaveLen(n))
		})

		It("reads the angles from the parameter source", func() {
			d = sim.NewDriver(s, clock, queue, out, angles{5, -5})
			d.Reset()

			st := s.State()
			Expect(chain.Degrees(st.Links[0].Angle)).To(BeNumerically("~", 5, 1e-9))
			Expect(chain.Degrees(st.Links[1].Angle)).To(BeNumerically("~", -5, 1e-9))
		})

		It("keeps parameter edits", func() {
			Expect(d.SetParam("mass2", 3)).To(Succeed())
			d.Reset()
			Expect(d.Readout().Links[1].Mass).To(Equal(3.0))
		})
	})

	Describe("Apply", func() {
		It("redraws a paused chain", func() {
			Expect(d.SetParam("angle1", 0)).To(Succeed())
			Expect(out.frames).To(HaveLen(1))
			Expect(out.last().Bobs[0].X).To(BeNumerically("~", 0, 1e-9))
		})

		It("defers to the next frame while running", func() {
			d.Start()
			Expect(d.SetParam("gravity", 1)).To(Succeed())
			Expect(out.frames).To(BeEmpty())
		})

		It("reports rejected edits and keeps the old value", func() {
			Expect(d.SetParam("max_path_points", 20000)).To(MatchError(chain.ErrCapacity))
			Expect(d.Readout().MaxPathPoints).To(Equal(1000))
		})
	})
})

var _ = Describe("Group", func() {
	var (
		clock *sim.ManualClock
		queue *sim.FrameQueue
		g     *sim.Group
	)

	BeforeEach(func() {
		clock = sim.NewManualClock(time.Unix(0, 0))
		queue = &sim.FrameQueue{}
		g = sim.NewGroup()
		for n := 1; n <= 3; n++ {
			p := sim.DefaultParams(n)
			s, err := sim.New(p, nil)
			Expect(err).NotTo(HaveOccurred())
			g.Add(sim.NewDriver(s, clock, queue, nil, p))
		}
	})

	serve := func(n int) {
		for i := 0; i < n; i++ {
			clock.Advance(frame)
			for queue.Take() {
			}
			g.Tick()
		}
	}

	It("starts and resets every member", func() {
		g.Start()
		Expect(queue.Pending()).To(Equal(3))
		serve(10)

		for _, d := range g.Drivers() {
			Expect(d.Simulator().Time()).To(BeNumerically("~", 10*frame.Seconds(), 1e-9))
		}

		g.Reset()
		Expect(g.Running()).To(BeFalse())
		for _, d := range g.Drivers() {
			Expect(d.Simulator().Time()).To(BeZero())
		}
	})

	It("toggles all members together", func() {
		g.Driver(1).Start()
		g.Toggle()
		Expect(g.Running()).To(BeFalse())
		g.Toggle()
		for _, d := range g.Drivers() {
			Expect(d.Running()).To(BeTrue())
		}
	})

	It("broadcasts trail settings", func() {
		Expect(g.SetMaxPathPoints(300)).To(BeTrue())
		Expect(g.SetMaxPathPoints(6000)).To(BeFalse())
		g.SetShowPath(false)

		for _, d := range g.Drivers() {
			Expect(d.Simulator().MaxPathPoints()).To(Equal(300))
			Expect(d.Simulator().ShowPath()).To(BeFalse())
		}
	})

	It("leaves paused members alone on tick", func() {
		g.Driver(0).Start()
		serve(5)

		Expect(g.Driver(0).Simulator().Time()).To(BeNumerically(">", 0))
		Expect(g.Driver(1).Simulator().Time()).To(BeZero())
		Expect(g.Driver(2).Simulator().Time()).To(BeZero())
	})
})

var _ = Describe("Driver energy", func() {
	It("stays bounded for an undamped single pendulum at 60 fps", func() {
		p := sim.DefaultParams(1)
		p.Damping = 0
		p.Angles = []float64{20}
		s, err := sim.New(p, nil)
		Expect(err).NotTo(HaveOccurred())

		clock := sim.NewManualClock(time.Unix(0, 0))
		queue := &sim.FrameQueue{}
		d := sim.NewDriver(s, clock, queue, nil, p)
		e0 := s.Energy()

		d.Start()
		for i := 0; i < 600; i++ {
			clock.Advance(frame)
			if queue.Take() {
				d.Tick()
			}
		}

		Expect(math.Abs(s.Energy()-e0) / e0).To(BeNumerically("<", 0.05))
	})
})
