package persistence

import (
	"time"

	"github.com/google/uuid"
)

// VesselModel represents the vessels table (spec §3 Vessel).
type VesselModel struct {
	ID                      int64   `gorm:"column:id;primaryKey;not null"`
	CallSign                *string `gorm:"column:call_sign;index"`
	Mmsi                    *int    `gorm:"column:mmsi;index"`
	ServiceSpeedKnots       float64 `gorm:"column:service_speed_knots;not null;default:0"`
	EngineBuildingYear      int     `gorm:"column:engine_building_year;default:0"`
	DegreeOfElectrification float64 `gorm:"column:degree_of_electrification;not null;default:0"`
	MaxCargoWeightKg        float64 `gorm:"column:max_cargo_weight_kg;not null;default:0"`
	PreferredAssembler      string  `gorm:"column:preferred_assembler;not null"`
}

func (VesselModel) TableName() string { return "vessels" }

// VesselEngineModel represents the vessel_engines table, one row per
// propulsion unit (spec §3 Vessel engine power, §4.4 "for each engine").
type VesselEngineModel struct {
	ID       int          `gorm:"column:id;primaryKey;autoIncrement"`
	VesselID int64        `gorm:"column:vessel_id;not null;index"`
	Vessel   *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PowerKW  float64      `gorm:"column:power_kw;not null"`
	Sfc      float64      `gorm:"column:sfc;not null"`
}

func (VesselEngineModel) TableName() string { return "vessel_engines" }

// VesselEventModel represents the vessel_events table (spec §3
// VesselEvent).
type VesselEventModel struct {
	EventID             uint64       `gorm:"column:event_id;primaryKey;not null"`
	VesselID            int64        `gorm:"column:vessel_id;not null;index:idx_vessel_events_vessel_report"`
	Vessel              *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ReportTimestamp     time.Time    `gorm:"column:report_timestamp;not null;index:idx_vessel_events_vessel_report"`
	OccurrenceTimestamp *time.Time   `gorm:"column:occurrence_timestamp"`
	EventType           string       `gorm:"column:event_type;not null;index"`
	TripID              *uint64      `gorm:"column:trip_id;index"`
	PortID              *string      `gorm:"column:port_id"`
	EstimatedTimestamp  *time.Time   `gorm:"column:estimated_timestamp"`
	RelevantYear        int          `gorm:"column:relevant_year;default:0"`
	MessageNumber       int          `gorm:"column:message_number;default:0"`
}

func (VesselEventModel) TableName() string { return "vessel_events" }

// TripModel represents the trips table (spec §3 Trip).
type TripModel struct {
	TripID                  uint64       `gorm:"column:trip_id;primaryKey;autoIncrement"`
	VesselID                int64        `gorm:"column:vessel_id;not null;index:idx_trips_vessel_period"`
	Vessel                  *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PeriodStart             time.Time    `gorm:"column:period_start;not null;index:idx_trips_vessel_period"`
	PeriodEnd               time.Time    `gorm:"column:period_end;not null"`
	PeriodStartBound        int          `gorm:"column:period_start_bound;not null"`
	PeriodEndBound          int          `gorm:"column:period_end_bound;not null"`
	PeriodPrecisionStart    *time.Time   `gorm:"column:period_precision_start"`
	PeriodPrecisionEnd      *time.Time   `gorm:"column:period_precision_end"`
	LandingCoverageStart    time.Time    `gorm:"column:landing_coverage_start;not null"`
	LandingCoverageEnd      *time.Time   `gorm:"column:landing_coverage_end"` // NULL means +∞ (open-ended)
	LandingCoverageEndBound int          `gorm:"column:landing_coverage_end_bound;not null;default:0"`
	StartPortID             *string      `gorm:"column:start_port_id"`
	EndPortID               *string      `gorm:"column:end_port_id"`
	AssemblerID             string       `gorm:"column:assembler_id;not null"`
	FirstArrival            bool         `gorm:"column:first_arrival;not null;default:false"`
	StartVesselEventID      *uint64      `gorm:"column:start_vessel_event_id"`
	EndVesselEventID        *uint64      `gorm:"column:end_vessel_event_id"`
	Status                  string       `gorm:"column:status;not null;default:'Unprocessed';index"`
}

func (TripModel) TableName() string { return "trips" }

// AisVmsPositionModel represents the ais_vms_positions table, storing
// every ingested raw position prior to any trip assignment or pruning
// (spec §3 AisVmsPosition).
type AisVmsPositionModel struct {
	ID               uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	VesselID         int64        `gorm:"column:vessel_id;not null;index:idx_positions_vessel_ts"`
	Vessel           *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Timestamp        time.Time    `gorm:"column:timestamp;not null;index:idx_positions_vessel_ts"`
	Lat              float64      `gorm:"column:lat;not null"`
	Lon              float64      `gorm:"column:lon;not null"`
	Course           *float64     `gorm:"column:course"`
	SpeedOverGround  *float64     `gorm:"column:speed_over_ground"`
	Heading          *float64     `gorm:"column:heading"`
	NavStatus        *string      `gorm:"column:nav_status"`
	DistanceToShoreM float64      `gorm:"column:distance_to_shore_m;not null;default:0"`
	PositionType     string       `gorm:"column:position_type;not null"`
}

func (AisVmsPositionModel) TableName() string { return "ais_vms_positions" }

// TripPositionModel joins a trip to the positions its layer pipeline
// retained, recording why a neighbor was pruned when applicable (spec §3
// TripPositionLayerOutput).
type TripPositionModel struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	TripID     uint64     `gorm:"column:trip_id;not null;index"`
	Trip       *TripModel `gorm:"foreignKey:TripID;references:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PositionID uint64     `gorm:"column:position_id;not null"`
	PrunedBy   *string    `gorm:"column:pruned_by"`
}

func (TripPositionModel) TableName() string { return "trip_positions" }

// PrunedTripPositionModel represents the pruned_trip_positions table,
// owned by the layer output rather than the trip positions (spec §3
// Ownership).
type PrunedTripPositionModel struct {
	ID         uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	TripID     uint64     `gorm:"column:trip_id;not null;index"`
	Trip       *TripModel `gorm:"foreignKey:TripID;references:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	PositionID uint64     `gorm:"column:position_id;not null"`
	TripLayer  string     `gorm:"column:trip_layer;not null"`
	Value      string     `gorm:"column:value;type:jsonb"`
}

func (PrunedTripPositionModel) TableName() string { return "pruned_trip_positions" }

// TripLayerOutputModel stores the scalar part of a trip's
// TripPositionLayerOutput (the ordered positions/pruned positions live in
// their own tables above).
type TripLayerOutputModel struct {
	TripID        uint64     `gorm:"column:trip_id;primaryKey"`
	Trip          *TripModel `gorm:"foreignKey:TripID;references:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TrackCoverage float64    `gorm:"column:track_coverage;not null;default:0"`
}

func (TripLayerOutputModel) TableName() string { return "trip_layer_outputs" }

// FuelEstimateModel represents the fuel_estimates table, one row per
// (vessel, date), upserted (spec §3 FuelEstimate).
type FuelEstimateModel struct {
	VesselID        int64        `gorm:"column:vessel_id;primaryKey;not null"`
	Vessel          *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Date            time.Time    `gorm:"column:date;primaryKey;not null"`
	EstimateLiters  float64      `gorm:"column:estimate_liter;not null;default:0"`
	NumAisPositions int          `gorm:"column:num_ais_positions;not null;default:0"`
	NumVmsPositions int          `gorm:"column:num_vms_positions;not null;default:0"`
	Status          string       `gorm:"column:status;not null;default:'Unprocessed'"`
}

func (FuelEstimateModel) TableName() string { return "fuel_estimates" }

// FuelMeasurementModel represents the fuel_measurements table (spec §3
// FuelMeasurement).
type FuelMeasurementModel struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID          uint64    `gorm:"column:user_id;not null;index"`
	CallSign        string    `gorm:"column:call_sign;not null;index:idx_fuel_measurements_call_sign_ts"`
	Timestamp       time.Time `gorm:"column:timestamp;not null;index:idx_fuel_measurements_call_sign_ts"`
	FuelLiters      float64   `gorm:"column:fuel_liter;not null"`
	FuelAfterLiters *float64  `gorm:"column:fuel_after_liter"`
}

func (FuelMeasurementModel) TableName() string { return "fuel_measurements" }

// HaulModel represents the hauls table (spec §3 Haul). VesselID is
// populated at ingestion independent of TripID, so a haul can be found
// before it has been assigned to (or before there even exists) a trip —
// the Current-Trip contract's live-hauls read needs exactly this (spec
// §4.7; original_source kyogre-core/domain/haul.rs fiskeridir_vessel_id).
type HaulModel struct {
	HaulID            uint64       `gorm:"column:haul_id;primaryKey;not null"`
	VesselID          int64        `gorm:"column:vessel_id;not null;index"`
	Vessel            *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	TripID            *uint64      `gorm:"column:trip_id;index"`
	Trip              *TripModel   `gorm:"foreignKey:TripID;references:TripID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	StartTimestamp    time.Time    `gorm:"column:start_ts;not null"`
	StopTimestamp     time.Time    `gorm:"column:stop_ts;not null"`
	GearGroup         string       `gorm:"column:gear_group;not null;index"`
	SpeciesGroup      string       `gorm:"column:species_group;not null"`
	TotalLivingWeight float64      `gorm:"column:total_living_weight;not null;default:0"`
	CatchLat          *float64     `gorm:"column:catch_lat"`
	CatchLon          *float64     `gorm:"column:catch_lon"`
	WeatherJSON       *string      `gorm:"column:weather;type:jsonb"`
	OceanClimateJSON  *string      `gorm:"column:ocean_climate;type:jsonb"`
}

func (HaulModel) TableName() string { return "hauls" }

// FishingFacilityModel represents the fishing_facilities table: fixed
// gear deployment events surfaced in the Current-Trip contract for
// permitted callers (spec §4.7; original_source
// postgres/models/fishing_facility.rs).
type FishingFacilityModel struct {
	ToolID           uuid.UUID    `gorm:"column:tool_id;primaryKey;type:uuid"`
	VesselID         int64        `gorm:"column:vessel_id;not null;index"`
	Vessel           *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ToolType         string       `gorm:"column:tool_type;not null"`
	ToolCount        *int         `gorm:"column:tool_count"`
	SetupTimestamp   time.Time    `gorm:"column:setup_timestamp;not null;index"`
	RemovedTimestamp *time.Time   `gorm:"column:removed_timestamp"`
}

func (FishingFacilityModel) TableName() string { return "fishing_facilities" }

// LandingModel represents the landings table: one row per catch-sale
// record, keyed the way fiskeridir sale notes are (document number),
// distinct from the vessel_events row that only anchors trip boundaries
// (spec §3 Landing; original_source postgres/models/landing_entry.rs,
// trimmed to the figures a benchmark consumer needs).
type LandingModel struct {
	LandingID         string       `gorm:"column:landing_id;primaryKey"`
	VesselID          int64        `gorm:"column:vessel_id;not null;index"`
	Vessel            *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	LandingTimestamp  time.Time    `gorm:"column:landing_timestamp;not null;index"`
	TotalLivingWeight float64      `gorm:"column:total_living_weight;not null;default:0"`
	PriceForFisher    *float64     `gorm:"column:price_for_fisher"`
}

func (LandingModel) TableName() string { return "landings" }

// TripBenchmarkOutputModel represents the trip_benchmark_outputs table,
// one row per (trip, benchmark), updated on reprocessing (spec §3
// TripBenchmarkOutput).
type TripBenchmarkOutputModel struct {
	TripID      uint64     `gorm:"column:trip_id;primaryKey;not null"`
	Trip        *TripModel `gorm:"foreignKey:TripID;references:TripID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	BenchmarkID string     `gorm:"column:benchmark_id;primaryKey;not null"`
	Value       float64    `gorm:"column:value;not null;default:0"`
	Unrealistic bool       `gorm:"column:unrealistic;not null;default:false"`
}

func (TripBenchmarkOutputModel) TableName() string { return "trip_benchmark_outputs" }

// ConflictModel represents the trip_conflicts table, the reassembly
// trigger queue (spec §4.1 Conflict contract).
type ConflictModel struct {
	ID        uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	VesselID  int64        `gorm:"column:vessel_id;not null;index"`
	Vessel    *VesselModel `gorm:"foreignKey:VesselID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Timestamp time.Time    `gorm:"column:timestamp;not null"`
	Resolved  bool         `gorm:"column:resolved;not null;default:false;index"`
	CreatedAt time.Time    `gorm:"column:created_at;not null;autoCreateTime"`
}

func (ConflictModel) TableName() string { return "trip_conflicts" }

// PipelineRunModel represents the pipeline_runs table, replacing the
// teacher's ContainerModel: one row per state execution in the declared
// chain (spec §4.6).
type PipelineRunModel struct {
	ID            string     `gorm:"column:id;primaryKey;not null"`
	State         string     `gorm:"column:state;not null;index"`
	Status        string     `gorm:"column:status;not null;default:'PENDING'"`
	RestartCount  int        `gorm:"column:restart_count;default:0"`
	VesselsTotal  int        `gorm:"column:vessels_total;default:0"`
	VesselsDone   int        `gorm:"column:vessels_done;default:0"`
	VesselsFailed int        `gorm:"column:vessels_failed;default:0"`
	StartedAt     *time.Time `gorm:"column:started_at"`
	StoppedAt     *time.Time `gorm:"column:stopped_at"`
	LastError     string     `gorm:"column:last_error;type:text"`
}

func (PipelineRunModel) TableName() string { return "pipeline_runs" }

// PipelineTransitionModel represents the pipeline_transitions table,
// replacing the teacher's ContainerLogModel: the resumability log of
// state transitions (spec §4.6 Resumability).
type PipelineTransitionModel struct {
	ID        int       `gorm:"column:id;primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"column:timestamp;not null;index"`
	FromState string    `gorm:"column:from_state;not null"`
	ToState   string    `gorm:"column:to_state;not null"`
}

func (PipelineTransitionModel) TableName() string { return "pipeline_transitions" }
