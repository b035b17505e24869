package planner

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"
)

// State is the planner's position in its growth state machine.
type State int

const (
	// Growing means the tree may still accept nodes.
	Growing State = iota
	// GoalReached means the last appended node lies within GoalRadius of the goal.
	GoalReached
	// Exhausted means MaxIter iterations ran without reaching the goal.
	Exhausted
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case Growing:
		return "growing"
	case GoalReached:
		return "goal_reached"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Config holds the fixed tuning values of the tree.
type Config struct {
	// StepSize is the distance each new node lies from its parent.
	StepSize float64 `json:"step_size" yaml:"step_size"`

	// MaxIter caps the number of sampling iterations, accepted or not.
	MaxIter int `json:"max_iter" yaml:"max_iter"`

	// Clearance is the radius around each obstacle in which nodes are rejected.
	Clearance float64 `json:"clearance" yaml:"clearance"`

	// GoalRadius is the distance to the goal that ends planning.
	GoalRadius float64 `json:"goal_radius" yaml:"goal_radius"`
}

// DefaultConfig returns step 1.0, 1000 iterations, clearance and goal radius 1.0.
func DefaultConfig() Config {
	return Config{
		StepSize:   1.0,
		MaxIter:    1000,
		Clearance:  1.0,
		GoalRadius: 1.0,
	}
}

// Option customizes an RRT at construction.
type Option func(*RRT)

// WithConfig replaces the default Config.
func WithConfig(cfg Config) Option {
	return func(t *RRT) { t.cfg = cfg }
}

// WithRand makes the planner draw samples from r. The planner takes ownership
// of r; sharing it with other goroutines is not safe.
func WithRand(r *rand.Rand) Option {
	return func(t *RRT) { t.rng = r }
}

// WithSeed seeds a private PCG generator so runs are reproducible.
func WithSeed(seed uint64) Option {
	return func(t *RRT) { t.rng = newSeededRand(seed) }
}

func newSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xda3e39cb94b95bdb))
}

// RRT grows a Rapidly-exploring Random Tree over the square [0, mapSize]².
//
// The tree starts with only the start node. Each iteration samples a point
// uniformly, finds the nearest tree node, and steps StepSize toward the sample.
// Candidates closer than Clearance to an obstacle are dropped; every other
// candidate is appended. Nodes are never moved or removed.
//
// An RRT is not safe for concurrent use.
type RRT struct {
	start     r2.Vec
	goal      r2.Vec
	obstacles []r2.Vec
	mapSize   float64
	cfg       Config
	rng       *rand.Rand

	nodes      []r2.Vec
	parents    []int
	state      State
	iterations int
}

// New creates a planner whose tree holds only start. Obstacles are copied.
// Without WithRand or WithSeed the generator is seeded randomly.
func New(start, goal r2.Vec, obstacles []r2.Vec, mapSize float64, opts ...Option) *RRT {
	t := &RRT{
		start:     start,
		goal:      goal,
		obstacles: append([]r2.Vec(nil), obstacles...),
		mapSize:   mapSize,
		cfg:       DefaultConfig(),
		nodes:     []r2.Vec{start},
		parents:   []int{-1},
		state:     Growing,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = newSeededRand(rand.Uint64())
	}
	if t.cfg.MaxIter <= 0 {
		t.state = Exhausted
	}
	return t
}

// Plan runs iterations until the goal is reached or MaxIter is spent, and
// returns every node in the order it was added, start first.
//
// The returned slice is the raw growth order, not a path: consecutive nodes
// need not be connected. Use Path for the branch that ends at the last node.
// Calling Plan on a finished planner returns the same nodes without growing.
func (t *RRT) Plan() []r2.Vec {
	for t.state == Growing {
		t.Step()
	}
	if t.state == GoalReached {
		Logf("planner: goal reached after %d iterations with %d nodes", t.iterations, len(t.nodes))
	} else {
		Logf("planner: exhausted %d iterations with %d nodes", t.iterations, len(t.nodes))
	}
	return t.Nodes()
}

// Step runs one iteration and returns the resulting state. It does nothing
// once the planner has left the Growing state.
func (t *RRT) Step() State {
	if t.state != Growing {
		return t.state
	}
	t.iterations++

	sample := t.sample()
	nearest := t.Nearest(sample)
	if candidate, ok := t.Steer(t.nodes[nearest], sample); ok && !t.Collides(candidate) {
		t.nodes = append(t.nodes, candidate)
		t.parents = append(t.parents, nearest)
		if r2.Norm(r2.Sub(candidate, t.goal)) < t.cfg.GoalRadius {
			t.state = GoalReached
			return t.state
		}
	}

	if t.iterations >= t.cfg.MaxIter {
		t.state = Exhausted
	}
	return t.state
}

// sample draws a point uniformly from [0, mapSize]².
func (t *RRT) sample() r2.Vec {
	return r2.Vec{
		X: t.rng.Float64() * t.mapSize,
		Y: t.rng.Float64() * t.mapSize,
	}
}

// Nearest returns the index of the tree node closest to p. Ties go to the
// earliest node.
func (t *RRT) Nearest(p r2.Vec) int {
	best := 0
	bestDist := r2.Norm2(r2.Sub(t.nodes[0], p))
	for i := 1; i < len(t.nodes); i++ {
		if d := r2.Norm2(r2.Sub(t.nodes[i], p)); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Steer returns the point StepSize away from from in the direction of toward.
// It reports false when the two points coincide and no direction exists.
func (t *RRT) Steer(from, toward r2.Vec) (r2.Vec, bool) {
	delta := r2.Sub(toward, from)
	if r2.Norm(delta) == 0 {
		return r2.Vec{}, false
	}
	return r2.Add(from, r2.Scale(t.cfg.StepSize, r2.Unit(delta))), true
}

// Collides reports whether p lies strictly inside the clearance radius of any obstacle.
func (t *RRT) Collides(p r2.Vec) bool {
	for _, obs := range t.obstacles {
		if r2.Norm(r2.Sub(p, obs)) < t.cfg.Clearance {
			return true
		}
	}
	return false
}

// State returns the current state.
func (t *RRT) State() State { return t.state }

// Iterations returns the number of iterations consumed so far.
func (t *RRT) Iterations() int { return t.iterations }

// Nodes returns a copy of the tree's nodes in growth order.
func (t *RRT) Nodes() []r2.Vec {
	return append([]r2.Vec(nil), t.nodes...)
}

// Path returns the branch from the start to the most recently added node by
// following parent links. After GoalReached this is a start-to-goal path.
func (t *RRT) Path() []r2.Vec {
	var rev []r2.Vec
	for i := len(t.nodes) - 1; i >= 0; i = t.parents[i] {
		rev = append(rev, t.nodes[i])
	}
	path := make([]r2.Vec, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// Result is a snapshot of a planner run.
type Result struct {
	// Nodes are all tree nodes in growth order, start first.
	Nodes []r2.Vec `json:"nodes"`

	// Parents holds the parent index of each node; the start has -1.
	Parents []int `json:"parents"`

	// Path is the branch ending at the last node.
	Path []r2.Vec `json:"path"`

	State      State  `json:"-"`
	StateName  string `json:"state"`
	Iterations int    `json:"iterations"`
}

// Result returns a snapshot of the tree and its state.
func (t *RRT) Result() Result {
	return Result{
		Nodes:      t.Nodes(),
		Parents:    append([]int(nil), t.parents...),
		Path:       t.Path(),
		State:      t.state,
		StateName:  t.state.String(),
		Iterations: t.iterations,
	}
}

// Start returns the start point.
func (t *RRT) Start() r2.Vec { return t.start }

// Goal returns the goal point.
func (t *RRT) Goal() r2.Vec { return t.goal }

// Obstacles returns a copy of the obstacle set.
func (t *RRT) Obstacles() []r2.Vec { return append([]r2.Vec(nil), t.obstacles...) }

// MapSize returns the side length of the sampling square.
func (t *RRT) MapSize() float64 { return t.mapSize }

// Config returns the planner's configuration.
func (t *RRT) Config() Config { return t.cfg }
