package relation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func files(ids ...uint) []Info {
	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		out = append(out, Info{ID: id, Name: string(rune('A' + id - 1)), Path: "/p/" + string(rune('a'+id-1)) + ".ts", Type: "ts"})
	}
	return out
}

func countExpanded(n *Node, id uint) int {
	total := 0
	if n.ID == id && len(n.Children) > 0 {
		total++
	}
	for _, c := range n.Children {
		total += countExpanded(c, id)
	}
	return total
}

func TestGetRelationTerminatesOnCycle(t *testing.T) {
	g := NewGraph(files(1, 2), []Edge{{From: 1, To: 2}, {From: 2, To: 1}})

	tree, ok := GetRelation(g, 1, Down)
	require.True(t, ok)
	require.Len(t, tree.Children, 1)
	b := tree.Children[0]
	assert.Equal(t, uint(2), b.ID)
	require.Len(t, b.Children, 1)
	assert.Equal(t, uint(1), b.Children[0].ID)
	assert.Empty(t, b.Children[0].Children)
	assert.Equal(t, 1, countExpanded(tree, 1))

	flat := Flatten(tree, Down)
	assert.Len(t, flat.InfoMap, 2)
	assert.True(t, flat.InfoMap[1].IsEntry)
	assert.False(t, flat.InfoMap[2].IsEntry)
	assert.ElementsMatch(t, []Relation{{From: 1, To: 2}, {From: 2, To: 1}}, flat.Relations)
}

func TestDiamondExpandsSharedNodeOnce(t *testing.T) {
	// 1 -> 2 -> 4, 1 -> 3 -> 4, 4 -> 5
	g := NewGraph(files(1, 2, 3, 4, 5), []Edge{
		{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4}, {From: 4, To: 5},
		{From: 1, To: 2},
	})

	tree, ok := GetRelation(g, 1, Down)
	require.True(t, ok)
	assert.Len(t, tree.Children, 2)
	assert.Equal(t, 1, countExpanded(tree, 4))

	flat := Flatten(tree, Down)
	assert.Len(t, flat.InfoMap, 5)
	assert.ElementsMatch(t, []Relation{
		{From: 1, To: 2}, {From: 1, To: 3}, {From: 2, To: 4}, {From: 3, To: 4}, {From: 4, To: 5},
	}, flat.Relations)
}

func TestUpTreeFlattensToImporterEdges(t *testing.T) {
	g := NewGraph(files(1, 2, 3), []Edge{{From: 1, To: 3}, {From: 2, To: 3}, {From: 1, To: 2}})

	tree, ok := GetRelation(g, 3, Up)
	require.True(t, ok)
	assert.Equal(t, uint(3), tree.ID)

	flat := Flatten(tree, Up)
	assert.True(t, flat.InfoMap[3].IsEntry)
	assert.ElementsMatch(t, []Relation{{From: 1, To: 3}, {From: 2, To: 3}, {From: 1, To: 2}}, flat.Relations)
}

func TestGetRelationUnknownFileAndDroppedEdges(t *testing.T) {
	g := NewGraph(files(1), []Edge{{From: 1, To: 99}})

	_, ok := GetRelation(g, 42, Down)
	assert.False(t, ok)

	tree, ok := GetRelation(g, 1, Down)
	require.True(t, ok)
	assert.Empty(t, tree.Children)
	assert.Empty(t, Flatten(nil, Down).InfoMap)
}

func TestMergeUnionsNodesAndEdges(t *testing.T) {
	g := NewGraph(files(1, 2, 3), []Edge{{From: 1, To: 2}, {From: 2, To: 3}})
	down, _ := GetRelation(g, 2, Down)
	up, _ := GetRelation(g, 2, Up)

	merged := Merge(Flatten(down, Down), Flatten(up, Up))
	assert.Len(t, merged.InfoMap, 3)
	assert.True(t, merged.InfoMap[2].IsEntry)
	assert.ElementsMatch(t, []Relation{{From: 2, To: 3}, {From: 1, To: 2}}, merged.Relations)

	sorted := merged.SortedInfos()
	require.Len(t, sorted, 3)
	assert.Equal(t, "/p/a.ts", sorted[0].Path)
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Down, d)

	d, err = ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, Up, d)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
}
