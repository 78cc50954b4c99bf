package scene

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestRepair_MissingElements(t *testing.T) {
	doc := &Document{
		Meshes: []Mesh{{Primitives: []Primitive{{
			Attributes: map[string]int{AttributePosition: 0},
			Material:   intPtr(3),
		}}}},
		Accessors: []Accessor{{ComponentType: ComponentFloat, Count: 3, Type: TypeVec3}},
	}

	report := Repair(doc)

	require.NotNil(t, doc.Asset)
	assert.Equal(t, "2.0", doc.Asset.Version)
	assert.Equal(t, RepairGenerator, doc.Asset.Generator)

	require.Len(t, doc.Nodes, 1)
	require.NotNil(t, doc.Nodes[0].Mesh)
	assert.Equal(t, 0, *doc.Nodes[0].Mesh)

	require.Len(t, doc.Scenes, 1)
	assert.Equal(t, []int{0}, doc.Scenes[0].Nodes)

	require.Len(t, doc.Materials, 1)
	assert.Equal(t, 0, *doc.Meshes[0].Primitives[0].Material)

	acc := doc.Accessors[0]
	assert.Equal(t, []float64{-1, -1, -1}, acc.Min)
	assert.Equal(t, []float64{1, 1, 1}, acc.Max)
	assert.True(t, acc.BoundsPlaceholder)

	assert.Len(t, report.Fixes, 6)
	assert.NoError(t, doc.Validate())
}

func TestRepair_ClampsOutOfRangeMaterial(t *testing.T) {
	doc := &Document{
		Asset:     &Asset{Version: "2.0"},
		Scenes:    []Scene{{Nodes: []int{0}}},
		Nodes:     []Node{{Mesh: intPtr(0)}},
		Materials: []Material{{Name: "a"}, {Name: "b"}},
		Meshes: []Mesh{{Primitives: []Primitive{
			{Attributes: map[string]int{}, Material: intPtr(1)},
			{Attributes: map[string]int{}, Material: intPtr(7)},
			{Attributes: map[string]int{}, Material: intPtr(-2)},
		}}},
	}

	Repair(doc)

	prims := doc.Meshes[0].Primitives
	assert.Equal(t, 1, *prims[0].Material)
	assert.Equal(t, 0, *prims[1].Material)
	assert.Equal(t, 0, *prims[2].Material)
	assert.Len(t, doc.Materials, 2, "existing materials must be kept")
}

func TestRepair_KeepsWellFormedDocument(t *testing.T) {
	doc := &Document{
		Asset:  &Asset{Version: "2.0", Generator: "upstream"},
		Scene:  intPtr(0),
		Scenes: []Scene{{Nodes: []int{1}}},
		Nodes:  []Node{{Name: "unused"}, {Name: "root", Mesh: intPtr(0)}},
		Meshes: []Mesh{{Primitives: []Primitive{{Attributes: map[string]int{AttributePosition: 0}}}}},
		Accessors: []Accessor{{
			ComponentType: ComponentFloat, Count: 3, Type: TypeVec3,
			Min: []float64{0, 0, 0}, Max: []float64{2, 2, 2},
		}},
	}
	before, err := json.Marshal(doc)
	require.NoError(t, err)

	report := Repair(doc)

	after, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.True(t, report.Empty())
	assert.JSONEq(t, string(before), string(after))
	assert.False(t, doc.Accessors[0].BoundsPlaceholder)
}

func TestRepair_FillsOnlyMissingBound(t *testing.T) {
	doc := &Document{Accessors: []Accessor{{Type: TypeVec2, Min: []float64{0, 0}}}}
	Repair(doc)
	assert.Equal(t, []float64{0, 0}, doc.Accessors[0].Min)
	assert.Equal(t, []float64{1, 1}, doc.Accessors[0].Max)
}

func TestRepair_NoMeshes(t *testing.T) {
	doc := &Document{}
	Repair(doc)
	require.Len(t, doc.Nodes, 1)
	assert.Nil(t, doc.Nodes[0].Mesh)
	assert.NoError(t, doc.Validate())
}

func TestRepair_Idempotent(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"meshes":[{"primitives":[{"attributes":{"POSITION":0},"material":4}]}],
		  "accessors":[{"componentType":5126,"count":3,"type":"VEC3"},{"componentType":5123,"count":3,"type":"SCALAR","min":[0]}]}`,
		`{"asset":{"version":"2.0"},"scenes":[{"nodes":[0]}],"nodes":[{"mesh":0}],
		  "meshes":[{"primitives":[{"attributes":{"POSITION":0}}]}],
		  "materials":[{"name":"m"}],
		  "accessors":[{"componentType":5126,"count":3,"type":"VEC3","min":[0,0,0],"max":[1,1,1]}]}`,
	}

	for i, in := range inputs {
		var once, twice Document
		require.NoError(t, json.Unmarshal([]byte(in), &once), "input %d", i)
		require.NoError(t, json.Unmarshal([]byte(in), &twice), "input %d", i)

		Repair(&once)
		Repair(&twice)
		second := Repair(&twice)

		assert.True(t, second.Empty(), "input %d: second pass applied %v", i, second.Fixes)
		assert.Equal(t, once, twice, "input %d", i)
	}
}
