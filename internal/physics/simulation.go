package physics

// Engine loads models and creates simulations for them.
type Engine interface {
	// LoadModel compiles the scene file at path. The path is resolved
	// against the engine's filesystem.
	LoadModel(path string) (*Model, error)
	// NewSimulation allocates simulation state for m.
	NewSimulation(m *Model) (Simulation, error)
}

// Simulation is the live state of one model. The slices returned by the
// accessors alias engine memory: writes to Qpos and Ctrl take effect on the
// next Step or Forward, and the position outputs are refreshed by them.
// A Simulation is not safe for concurrent use.
type Simulation interface {
	Model() *Model

	// Step advances the simulation by one timestep.
	Step()
	// Forward recomputes derived quantities (poses, light frames, tendon
	// paths) from the current qpos without advancing time.
	Forward()
	// ResetData restores qpos0 and clears velocities, controls and time.
	ResetData()
	// Free releases the state. The simulation must not be used afterwards.
	Free()

	Time() float64

	Qpos() []float64
	Qvel() []float64
	Ctrl() []float64

	XPos() []float64      // nbody*3
	XQuat() []float64     // nbody*4
	LightXPos() []float64 // nlight*3
	LightXDir() []float64 // nlight*3
	WrapXPos() []float64  // nwrap*3
	TenWrapAdr() []int    // ntendon
	TenWrapNum() []int    // ntendon
}
