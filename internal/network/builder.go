package network

import (
	"fmt"

	"HydroSpectra/internal/model"
	"HydroSpectra/internal/profile"
)

// Builder assembles network topologies from profile templates. Building is
// deterministic: the same profile id always yields the same named junctions
// and pipe connectivity.
type Builder struct {
	store *profile.Store
}

// NewBuilder creates a builder backed by the given profile store.
func NewBuilder(store *profile.Store) *Builder {
	return &Builder{store: store}
}

// Build looks up the profile and assembles its topology skeleton.
func (b *Builder) Build(profileID string) (*model.Network, error) {
	p, err := b.store.Get(profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to build network: %w", err)
	}
	return b.BuildFromProfile(p), nil
}

// BuildFromProfile assembles the topology skeleton for an already-resolved
// profile. The returned network is owned by the caller and read-only for the
// rest of the run.
func (b *Builder) BuildFromProfile(p *profile.Profile) *model.Network {
	nodes := make([]model.Node, len(p.Nodes))
	for i, def := range p.Nodes {
		nodes[i] = model.Node{
			Name:        def.Name,
			DemandShare: def.DemandShare,
			ElevationM:  def.ElevationM,
		}
	}

	pipes := make([]model.Pipe, len(p.Pipes))
	for i, def := range p.Pipes {
		pipes[i] = model.Pipe{
			From:       def.From,
			To:         def.To,
			DiameterM:  def.DiameterM,
			LengthM:    def.LengthM,
			Material:   def.Material,
			RoughnessM: def.RoughnessM,
		}
	}

	return model.NewNetwork(p.ID, p.SupplyNode, p.MeterPipe, nodes, pipes)
}
