package model

import (
	"fmt"
	"math"
	"time"
)

// Unit conversions for the output table. Hydraulics are computed in SI and
// reported in the US residential convention (gpm flow, psi pressure).
const (
	CubicMetersPerSecToGPM          = 15850.323141489
	PascalToPSI                     = 1.0 / 6894.757293168
	LitersPerMinToCubicMetersPerSec = 1.0 / 60000.0
)

// TimeSeries is an ordered sequence of numeric samples at a fixed resolution.
type TimeSeries struct {
	Values            []float64
	ResolutionSeconds float64
}

// Len returns the number of samples in the series.
func (ts TimeSeries) Len() int {
	return len(ts.Values)
}

// Sum returns the arithmetic sum of all samples.
func (ts TimeSeries) Sum() float64 {
	var total float64
	for _, v := range ts.Values {
		total += v
	}
	return total
}

// Min returns the smallest sample, or 0 for an empty series.
func (ts TimeSeries) Min() float64 {
	if len(ts.Values) == 0 {
		return 0
	}
	min := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the largest sample, or 0 for an empty series.
func (ts TimeSeries) Max() float64 {
	if len(ts.Values) == 0 {
		return 0
	}
	max := ts.Values[0]
	for _, v := range ts.Values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Node is a named junction in a house plumbing network.
type Node struct {
	Name string
	// DemandShare is the fraction of the household demand drawn at this node.
	// Shares across a network sum to 1; pass-through junctions carry 0.
	DemandShare float64
	ElevationM  float64
}

// Pipe is a directed segment between two named nodes.
type Pipe struct {
	Name       string // canonical form "From->To"
	From       string
	To         string
	DiameterM  float64
	LengthM    float64
	Material   string
	RoughnessM float64 // absolute roughness, drives the friction factor
}

// Area returns the pipe's flow cross-section in m².
func (p Pipe) Area() float64 {
	r := p.DiameterM / 2
	return math.Pi * r * r
}

// Network is the topology skeleton for one simulated house. It is built once
// per run by the network builder and read-only thereafter.
type Network struct {
	Profile   string
	Supply    string // municipal supply node, tree root
	MeterPipe string // pipe instrumented by the acoustic flow meter
	Nodes     []Node
	Pipes     []Pipe

	nodeIndex  map[string]int
	pipeIndex  map[string]int
	downstream map[string][]int // node name -> outgoing pipe indices
	inflow     map[string]int   // node name -> incoming pipe index
}

// NewNetwork assembles a Network and its lookup indices. Pipe names are
// canonicalized to "From->To" when empty.
func NewNetwork(profile, supply, meterPipe string, nodes []Node, pipes []Pipe) *Network {
	n := &Network{
		Profile:    profile,
		Supply:     supply,
		MeterPipe:  meterPipe,
		Nodes:      nodes,
		Pipes:      pipes,
		nodeIndex:  make(map[string]int, len(nodes)),
		pipeIndex:  make(map[string]int, len(pipes)),
		downstream: make(map[string][]int),
		inflow:     make(map[string]int),
	}
	for i, node := range nodes {
		n.nodeIndex[node.Name] = i
	}
	for i := range pipes {
		if pipes[i].Name == "" {
			pipes[i].Name = fmt.Sprintf("%s->%s", pipes[i].From, pipes[i].To)
		}
		n.pipeIndex[pipes[i].Name] = i
		n.downstream[pipes[i].From] = append(n.downstream[pipes[i].From], i)
		n.inflow[pipes[i].To] = i
	}
	return n
}

// Node returns the named junction, if present.
func (n *Network) Node(name string) (Node, bool) {
	i, ok := n.nodeIndex[name]
	if !ok {
		return Node{}, false
	}
	return n.Nodes[i], true
}

// HasNode reports whether the named junction exists.
func (n *Network) HasNode(name string) bool {
	_, ok := n.nodeIndex[name]
	return ok
}

// Pipe returns the named segment, if present.
func (n *Network) Pipe(name string) (Pipe, bool) {
	i, ok := n.pipeIndex[name]
	if !ok {
		return Pipe{}, false
	}
	return n.Pipes[i], true
}

// NodeNames returns every junction name in topology order.
func (n *Network) NodeNames() []string {
	names := make([]string, len(n.Nodes))
	for i, node := range n.Nodes {
		names[i] = node.Name
	}
	return names
}

// Downstream returns the pipes leaving the named node.
func (n *Network) Downstream(name string) []Pipe {
	idx := n.downstream[name]
	pipes := make([]Pipe, len(idx))
	for i, j := range idx {
		pipes[i] = n.Pipes[j]
	}
	return pipes
}

// Inflow returns the single pipe feeding the named node. The supply root has
// no inflow.
func (n *Network) Inflow(name string) (Pipe, bool) {
	i, ok := n.inflow[name]
	if !ok {
		return Pipe{}, false
	}
	return n.Pipes[i], true
}

// Row is one sampled timestep of the output table.
// Units: Flow gpm, Pressure psi, Velocity m/s, transit times seconds.
type Row struct {
	TimeS            float64
	Flow             float64
	Pressure         float64
	Velocity         float64
	Leak             bool
	Converged        bool
	VelocityMeasured float64
	TransitTimeUp    float64
	TransitTimeDown  float64
	DeltaT           float64
	SignalQuality    float64
}

// Column names of the output table, in stable order. Downstream consumers
// depend on the first five staying put.
var resultColumns = []string{
	"time",
	"flow",
	"pressure",
	"velocity",
	"leak",
	"converged",
	"velocity_measured",
	"transit_time_up",
	"transit_time_down",
	"delta_t",
	"signal_quality",
}

// Result is the labeled output table for a single simulation run. It is owned
// by the caller once the run returns and is not mutated afterwards.
type Result struct {
	RunID             string
	HouseID           string
	Profile           string
	StartTime         time.Time
	DurationSeconds   float64
	ResolutionSeconds float64
	Seed              int64
	LightMode         bool
	TransientSolve    bool
	Rows              []Row
}

// Columns returns the output table's column names in stable order.
func (r *Result) Columns() []string {
	cols := make([]string, len(resultColumns))
	copy(cols, resultColumns)
	return cols
}

// Column returns one named column as a float64 slice. Boolean columns are
// rendered as 0/1.
func (r *Result) Column(name string) ([]float64, error) {
	out := make([]float64, len(r.Rows))
	for i, row := range r.Rows {
		switch name {
		case "time":
			out[i] = row.TimeS
		case "flow":
			out[i] = row.Flow
		case "pressure":
			out[i] = row.Pressure
		case "velocity":
			out[i] = row.Velocity
		case "leak":
			out[i] = boolToFloat(row.Leak)
		case "converged":
			out[i] = boolToFloat(row.Converged)
		case "velocity_measured":
			out[i] = row.VelocityMeasured
		case "transit_time_up":
			out[i] = row.TransitTimeUp
		case "transit_time_down":
			out[i] = row.TransitTimeDown
		case "delta_t":
			out[i] = row.DeltaT
		case "signal_quality":
			out[i] = row.SignalQuality
		default:
			return nil, fmt.Errorf("unknown result column: %s", name)
		}
	}
	return out, nil
}

// LeakRows counts rows on which a leak event was active.
func (r *Result) LeakRows() int {
	count := 0
	for _, row := range r.Rows {
		if row.Leak {
			count++
		}
	}
	return count
}

// FailedRows counts rows on which the hydraulic solve did not converge.
func (r *Result) FailedRows() int {
	count := 0
	for _, row := range r.Rows {
		if !row.Converged {
			count++
		}
	}
	return count
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
