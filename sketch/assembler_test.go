package sketch

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemblePolygonClosesRing(t *testing.T) {
	points := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	fc := Assemble(ModePolygon, points, nil)
	require.Len(t, fc.Features, 1)

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)
	ring := poly[0]
	require.Len(t, ring, len(points)+1)
	assert.Equal(t, ring[0], ring[len(ring)-1])
	assert.Equal(t, points, []orb.Point(ring[:len(points)]))
	assert.Equal(t, DefaultName, fc.Features[0].Properties["name"])
}

func TestAssemblePointSetKeepsPropsByIndex(t *testing.T) {
	points := []orb.Point{{1, 1}, {2, 2}, {3, 3}}
	props := []Properties{
		{Name: "well", Description: "north", Icon: "water"},
		{Name: "gate"},
	}

	fc := Assemble(ModePoint, points, props)
	require.Len(t, fc.Features, 3)

	for i, f := range fc.Features {
		assert.Equal(t, points[i], f.Geometry)
	}
	assert.Equal(t, "well", fc.Features[0].Properties["name"])
	assert.Equal(t, "water", fc.Features[0].Properties["icon"])
	assert.Equal(t, "gate", fc.Features[1].Properties["name"])
	assert.NotContains(t, fc.Features[1].Properties, "icon")
	assert.NotContains(t, fc.Features[1].Properties, "description")
	assert.Empty(t, fc.Features[2].Properties)
}

func TestAssemblePointUneditedIsEmptyBag(t *testing.T) {
	fc := Assemble(ModePoint, []orb.Point{{1, 1}}, []Properties{{}})
	require.Len(t, fc.Features, 1)
	assert.Empty(t, fc.Features[0].Properties)
}

func TestAssembleLineMergesProps(t *testing.T) {
	points := []orb.Point{{0, 0}, {1, 1}, {2, 0}}
	props := []Properties{{Name: "road"}, {}, {Description: "gravel"}}

	fc := Assemble(ModeLine, points, props)
	require.Len(t, fc.Features, 1)

	line, ok := fc.Features[0].Geometry.(orb.LineString)
	require.True(t, ok)
	assert.Equal(t, orb.LineString(points), line)
	assert.Equal(t, "road", fc.Features[0].Properties["name"])
	assert.Equal(t, "gravel", fc.Features[0].Properties["description"])
}

func TestAssembleLineDefaults(t *testing.T) {
	fc := Assemble(ModeLine, []orb.Point{{0, 0}, {1, 1}}, nil)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Unnamed", fc.Features[0].Properties["name"])
	assert.Equal(t, "", fc.Features[0].Properties["description"])
}

func TestAssembleEmptyInput(t *testing.T) {
	for _, mode := range []Mode{ModePoint, ModeLine, ModePolygon} {
		fc := Assemble(mode, nil, nil)
		require.NotNil(t, fc)
		assert.Empty(t, fc.Features, mode.String())
	}
}

func TestAssembleDoesNotAliasInput(t *testing.T) {
	points := []orb.Point{{0, 0}, {1, 1}}
	fc := Assemble(ModeLine, points, nil)
	points[0] = orb.Point{9, 9}

	line := fc.Features[0].Geometry.(orb.LineString)
	assert.Equal(t, orb.Point{0, 0}, line[0])
}

func TestDistinctPoints(t *testing.T) {
	assert.Equal(t, 0, DistinctPoints(nil))
	assert.Equal(t, 2, DistinctPoints([]orb.Point{{0, 0}, {0, 0}, {1, 1}}))
}
