package milp

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/iwvelando/fantasy-f1-optimiser/pkg/mathutil"
	"go.uber.org/zap"
)

const (
	defaultIntegralityTolerance = 1e-6
	defaultMaxNodes             = 200000

	// boundTolerance is the margin a relaxation must beat the incumbent by
	// before its subtree is explored.
	boundTolerance = 1e-9
)

// Options configures a BranchAndBound solver.
type Options struct {
	// Timeout bounds a single Solve call. Zero disables it.
	Timeout time.Duration
	// MaxNodes bounds the number of relaxations solved. Zero selects the
	// default.
	MaxNodes int
	// IntegralityTolerance is how far a binary may sit from 0 or 1 and
	// still count as integral. Zero selects the default.
	IntegralityTolerance float64
}

// BranchAndBound is a best-bound branch-and-bound search over binary
// variables. Open nodes are explored in order of their parent's relaxation
// bound, ties going to the node created first. It branches on the most
// fractional binary (lowest index on ties), queues the up branch before the
// down branch and only replaces the incumbent on strict improvement, so
// identical inputs produce identical solutions.
type BranchAndBound struct {
	logger    *zap.Logger
	timeout   time.Duration
	maxNodes  int
	tolerance float64
}

// NewBranchAndBound constructs a solver. A nil logger disables logging.
func NewBranchAndBound(logger *zap.Logger, opts Options) *BranchAndBound {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxNodes <= 0 {
		opts.MaxNodes = defaultMaxNodes
	}
	if opts.IntegralityTolerance <= 0 {
		opts.IntegralityTolerance = defaultIntegralityTolerance
	}
	return &BranchAndBound{
		logger:    logger,
		timeout:   opts.Timeout,
		maxNodes:  opts.MaxNodes,
		tolerance: opts.IntegralityTolerance,
	}
}

// Solve implements Solver.
func (b *BranchAndBound) Solve(ctx context.Context, m *Model) (*Solution, error) {
	if m == nil {
		return &Solution{Status: StatusError}, fmt.Errorf("%w: model cannot be nil", ErrSolver)
	}
	if err := m.validate(); err != nil {
		return &Solution{Status: StatusError}, fmt.Errorf("%w: %v", ErrSolver, err)
	}
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	root := make([]float64, len(m.vars))
	for i := range root {
		root[i] = math.NaN()
	}
	open := &nodeQueue{}
	heap.Push(open, &node{fixed: root, bound: math.Inf(1)})
	seq := 1

	var incumbent []float64
	best := math.Inf(-1)
	nodes := 0

	for open.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return &Solution{Status: StatusError, Nodes: nodes}, fmt.Errorf("%w: %v", ErrSolver, err)
		}

		n := heap.Pop(open).(*node)
		if incumbent != nil && n.bound <= best+boundTolerance {
			// Every remaining node is bounded no better.
			break
		}
		if nodes >= b.maxNodes {
			return &Solution{Status: StatusError, Nodes: nodes},
				fmt.Errorf("%w: node limit %d reached", ErrSolver, b.maxNodes)
		}
		nodes++

		x, err := relax(m, n.fixed)
		if errors.Is(err, errNodeInfeasible) {
			continue
		}
		if err != nil {
			return &Solution{Status: StatusError, Nodes: nodes},
				fmt.Errorf("%w: relaxation at node %d: %v", ErrSolver, nodes, err)
		}

		bound := m.objective.Eval(x)
		if incumbent != nil && bound <= best+boundTolerance {
			continue
		}

		branch := b.mostFractional(m, x)
		if branch < 0 {
			incumbent = b.roundBinaries(m, x)
			best = m.objective.Eval(incumbent)
			continue
		}

		for _, value := range []float64{1, 0} {
			child := append([]float64(nil), n.fixed...)
			child[branch] = value
			heap.Push(open, &node{fixed: child, bound: bound, seq: seq})
			seq++
		}
	}

	elapsed := time.Since(start)
	if incumbent == nil {
		b.logger.Debug("model infeasible",
			zap.String("op", "milp.Solve"),
			zap.String("model", m.Name),
			zap.Int("nodes", nodes),
			zap.Duration("duration", elapsed),
		)
		return &Solution{Status: StatusInfeasible, Nodes: nodes}, nil
	}

	b.logger.Debug("model solved",
		zap.String("op", "milp.Solve"),
		zap.String("model", m.Name),
		zap.Int("vars", len(m.vars)),
		zap.Int("constraints", len(m.constraints)),
		zap.Int("nodes", nodes),
		zap.Float64("objective", best),
		zap.Duration("duration", elapsed),
	)
	return &Solution{Status: StatusOptimal, Objective: best, Nodes: nodes, values: incumbent}, nil
}

func (b *BranchAndBound) mostFractional(m *Model, x []float64) int {
	pick, distance := -1, 0.0
	for i, v := range m.vars {
		if v.kind != Binary || mathutil.IsIntegral(x[i], b.tolerance) {
			continue
		}
		if d := math.Abs(x[i] - math.Round(x[i])); d > distance+b.tolerance {
			pick, distance = i, d
		}
	}
	return pick
}

func (b *BranchAndBound) roundBinaries(m *Model, x []float64) []float64 {
	out := append([]float64(nil), x...)
	for i, v := range m.vars {
		if v.kind == Binary {
			out[i] = math.Round(out[i])
		}
	}
	return out
}

type node struct {
	fixed []float64
	bound float64
	seq   int
}

// nodeQueue is a max-heap on bound, then creation order.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].bound != q[j].bound {
		return q[i].bound > q[j].bound
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*q = old[:len(old)-1]
	return n
}
