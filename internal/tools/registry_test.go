package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadmapper/internal/types"
)

func testTool(name string) *Tool {
	return &Tool{
		Name:        name,
		Description: "test tool",
		Schema:      map[string]any{"type": "object"},
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTool("t1")))

	got := r.Get("t1")
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.Name)
	assert.Nil(t, r.Get("missing"))
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTool("dupe")))

	err := r.Register(testTool("dupe"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrToolAlreadyRegistered)
}

func TestRegisterInvalid(t *testing.T) {
	r := NewRegistry()

	err := r.Register(&Tool{Schema: map[string]any{}})
	assert.ErrorIs(t, err, ErrToolNameEmpty)

	err = r.Register(&Tool{Name: "no_schema"})
	assert.ErrorIs(t, err, ErrToolSchemaNil)
}

func TestNamesPreserveRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, r.Register(testTool(name)))
	}
	assert.Equal(t, []string{"c", "a", "b"}, r.Names())
}

func TestDefinitionsSkipsMissing(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(testTool("known")))

	defs := r.Definitions("known", "unknown")
	require.Len(t, defs, 1)
	assert.Equal(t, "known", defs[0].Name)
}

func TestCatalogRegistersAllTools(t *testing.T) {
	r := Catalog()
	want := []string{
		NameAskClarifyingQuestion,
		NameConfirmSpecifications,
		NameGenerateRoadmap,
		NameGenerateOverview,
		NameGenerateSubtasks,
		NameExpandRoadmap,
		NameAddSubtasks,
		NameEditMilestone,
	}
	assert.Equal(t, len(want), r.Count())
	for _, name := range want {
		assert.True(t, r.Has(name), name)
	}
}

func defNames(defs []types.ToolDefinition) []string {
	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	return names
}

func TestVisibleByPhase(t *testing.T) {
	r := Catalog()

	cases := []struct {
		phase  types.Phase
		intent types.Intent
		want   []string
	}{
		{types.PhaseDiscovery, types.IntentChat,
			[]string{NameAskClarifyingQuestion, NameConfirmSpecifications}},
		{types.PhaseConfirmation, types.IntentChat,
			[]string{NameGenerateRoadmap}},
		{types.PhaseGeneration, types.IntentChat,
			[]string{NameGenerateRoadmap}},
		{types.PhaseOverview, types.IntentChat,
			[]string{NameGenerateOverview}},
		{types.PhaseSubtasks, types.IntentChat,
			[]string{NameGenerateSubtasks}},
		{types.PhaseEditing, types.IntentExpand,
			[]string{NameAskClarifyingQuestion, NameExpandRoadmap}},
		{types.PhaseEditing, types.IntentEdit,
			[]string{NameAskClarifyingQuestion, NameEditMilestone}},
		{types.PhaseEditing, types.IntentChat,
			[]string{NameAskClarifyingQuestion, NameAddSubtasks}},
	}

	for _, tc := range cases {
		got := r.Visible(tc.phase, tc.intent)
		assert.Equal(t, tc.want, defNames(got), "phase=%s intent=%s", tc.phase, tc.intent)
	}
}

func TestMilestoneSchemaUsesClosedTagEnum(t *testing.T) {
	r := Catalog()
	defs := r.Definitions(NameGenerateRoadmap)
	require.Len(t, defs, 1)

	nodes := defs[0].InputSchema["properties"].(map[string]any)["nodes"].(map[string]any)
	items := nodes["items"].(map[string]any)
	tags := items["properties"].(map[string]any)["tags"].(map[string]any)
	enum := tags["items"].(map[string]any)["enum"].([]string)

	assert.ElementsMatch(t, types.TagNames(), enum)
}
