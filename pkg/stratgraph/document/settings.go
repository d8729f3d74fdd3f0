package document

import (
	"fmt"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/config"
)

// ApplySettings overrides the root StrategyConfig of g with the keys present
// in settings (startTime, endTime, intervalMinutes, strategyName, tags).
// Missing keys keep their current value.
func ApplySettings(g *stratgraph.Graph, settings config.Config) error {
	for _, n := range g.Nodes() {
		current, ok := n.Config.(stratgraph.StrategyConfig)
		if !ok {
			continue
		}
		cfg, err := DecodeConfig(n.ID, current, settings)
		if err != nil {
			return err
		}
		return g.SetConfig(n.ID, cfg)
	}
	return fmt.Errorf("apply settings: %w", stratgraph.ErrNoConfigNode)
}
