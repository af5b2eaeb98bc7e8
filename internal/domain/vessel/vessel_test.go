package vessel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orcalabs/kyogre-go/internal/domain/vessel"
)

func TestNew_RequiresAPositiveID(t *testing.T) {
	callSign := "LABC"
	_, err := vessel.New(0, &callSign, nil, nil, 10, vessel.AssemblerLandings)
	assert.Error(t, err)
}

func TestNew_RequiresAtLeastOneOfCallSignOrMmsi(t *testing.T) {
	_, err := vessel.New(1, nil, nil, nil, 10, vessel.AssemblerLandings)
	assert.Error(t, err)
}

func TestNew_RejectsAnUnknownPreferredAssembler(t *testing.T) {
	callSign := "LABC"
	_, err := vessel.New(1, &callSign, nil, nil, 10, vessel.AssemblerID("bogus"))
	assert.Error(t, err)
}

func TestNew_BuildsAValidVessel(t *testing.T) {
	callSign := "LABC"
	v, err := vessel.New(1, &callSign, nil, []vessel.Engine{{PowerKW: 500, SFC: 200}}, 12, vessel.AssemblerErs)

	require.NoError(t, err)
	assert.Equal(t, vessel.ID(1), v.ID)
	assert.Equal(t, vessel.AssemblerErs, v.PreferredAssembler)
}

func TestVessel_HasPositionIdentity(t *testing.T) {
	mmsi := 123456789
	withMmsi := vessel.Vessel{Mmsi: &mmsi}
	assert.True(t, withMmsi.HasPositionIdentity())

	bare := vessel.Vessel{}
	assert.False(t, bare.HasPositionIdentity())
}

func TestVessel_TotalEnginePowerKW_SumsAllEngines(t *testing.T) {
	v := vessel.Vessel{Engines: []vessel.Engine{{PowerKW: 500}, {PowerKW: 300}}}

	assert.Equal(t, 800.0, v.TotalEnginePowerKW())
}

func TestVessel_FullServiceSpeedIs95PercentOfEmpty(t *testing.T) {
	v := vessel.Vessel{ServiceSpeedKnots: 10}

	assert.Equal(t, 10.0, v.EmptyServiceSpeed())
	assert.Equal(t, 9.5, v.FullServiceSpeed())
}
