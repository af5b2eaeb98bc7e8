package trip

import (
	"github.com/orcalabs/kyogre-go/internal/domain/position"
)

// ProcessingUnit is the working value one trip carries through the
// precision, layer and fuel stages (spec §3 TripProcessingUnit).
type ProcessingUnit struct {
	Trip        Trip
	Positions   []position.AisVmsPosition
	Ports       []Port
	DockPoints  []DockPoint
	LayerOutput position.TripPositionLayerOutput
}

// WithLayerOutput returns a copy of the unit carrying the given layer
// output, the shape precision/layer stages thread through the pipeline
// immutably.
func (u ProcessingUnit) WithLayerOutput(output position.TripPositionLayerOutput) ProcessingUnit {
	u.LayerOutput = output
	return u
}
