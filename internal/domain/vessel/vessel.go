// Package vessel holds the Vessel aggregate and the events it owns.
package vessel

import (
	"github.com/orcalabs/kyogre-go/internal/domain/shared"
)

// ID identifies a vessel by its Fiskeridir registry number.
type ID int64

// IsZero reports whether the id is unset.
func (id ID) IsZero() bool {
	return id <= 0
}

// AssemblerID selects which trip-assembler strategy a vessel prefers.
type AssemblerID string

const (
	AssemblerLandings AssemblerID = "Landings"
	AssemblerErs      AssemblerID = "Ers"
)

// Engine is one propulsion unit contributing to the fuel model (spec §4.4
// step 5 sums over engines).
type Engine struct {
	PowerKW float64
	// SFC is the engine's nominal specific fuel consumption in g/kWh,
	// further modulated per-pair by load factor (spec §4.4 step 6).
	SFC float64
}

// Vessel is the aggregate root owning events, trips, fuel estimates and the
// vessel's current position (spec §3 Ownership).
type Vessel struct {
	ID       ID
	CallSign *string
	Mmsi     *int

	Engines                 []Engine
	ServiceSpeedKnots       float64
	EngineBuildingYear      int
	DegreeOfElectrification float64 // fraction in [0,1]
	MaxCargoWeightKg        float64
	PreferredAssembler      AssemblerID
}

// New validates and constructs a Vessel.
func New(id ID, callSign *string, mmsi *int, engines []Engine, serviceSpeedKnots float64, assembler AssemblerID) (*Vessel, error) {
	if id.IsZero() {
		return nil, shared.NewValidationError("id", "must be positive")
	}
	if callSign == nil && mmsi == nil {
		return nil, shared.NewValidationError("call_sign/mmsi", "at least one of mmsi or call_sign is required")
	}
	if assembler != AssemblerLandings && assembler != AssemblerErs {
		return nil, shared.NewValidationError("preferred_trip_assembler", "must be Landings or Ers")
	}

	return &Vessel{
		ID:                 id,
		CallSign:           callSign,
		Mmsi:               mmsi,
		Engines:            engines,
		ServiceSpeedKnots:  serviceSpeedKnots,
		PreferredAssembler: assembler,
	}, nil
}

// HasPositionIdentity reports whether the vessel can be looked up in
// AIS/VMS position streams. A vessel without either join key is skipped by
// position-dependent stages (spec §3 Invariant).
func (v *Vessel) HasPositionIdentity() bool {
	return v.CallSign != nil || v.Mmsi != nil
}

// TotalEnginePowerKW sums the power of all engines; zero means no engine
// power data, which disqualifies FuelConsumption benchmarking (spec §4.5).
func (v *Vessel) TotalEnginePowerKW() float64 {
	var total float64
	for _, e := range v.Engines {
		total += e.PowerKW
	}
	return total
}

// EmptyServiceSpeed returns the unladen service speed used by the fuel
// model (spec §4.4 step 3).
func (v *Vessel) EmptyServiceSpeed() float64 {
	return v.ServiceSpeedKnots
}

// FullServiceSpeed returns the laden service speed, 95% of the empty speed.
func (v *Vessel) FullServiceSpeed() float64 {
	return v.ServiceSpeedKnots * 0.95
}
