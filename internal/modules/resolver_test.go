package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biasharahq/platform/internal/model"
)

func TestResolve_DependenciesPrecedeDependents(t *testing.T) {
	resolved, err := Resolve([]string{"pos", "inventory", "accounting"})

	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "accounting", "pos"}, resolved)
}

func TestResolve_Deterministic(t *testing.T) {
	input := []string{"projects", "hr", "crm", "accounting", "pos", "inventory"}

	first, err := Resolve(input)
	require.NoError(t, err)
	second, err := Resolve(input)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestResolve_PermutationProperty(t *testing.T) {
	input := []string{"manufacturing", "purchasing", "pos", "inventory", "accounting", "hr", "projects", "crm"}

	resolved, err := Resolve(input)
	require.NoError(t, err)
	require.Len(t, resolved, len(input))

	pos := make(map[string]int, len(resolved))
	for i, code := range resolved {
		pos[code] = i
	}
	for _, code := range input {
		require.Contains(t, pos, code)
	}

	for _, code := range resolved {
		mod, ok := Get(code)
		require.True(t, ok)
		for _, dep := range mod.DependsOn {
			if depIdx, requested := pos[dep]; requested {
				assert.Less(t, depIdx, pos[code], "%s must precede %s", dep, code)
			}
		}
	}
}

func TestResolve_OnlyRequestedEdgesHonored(t *testing.T) {
	// projects depends on hr, but hr is not requested: projects sorts
	// freely by input order.
	resolved, err := Resolve([]string{"projects", "inventory"})

	require.NoError(t, err)
	assert.Equal(t, []string{"projects", "inventory"}, resolved)
}

func TestResolve_InputOrderBreaksTies(t *testing.T) {
	resolved, err := Resolve([]string{"accounting", "inventory"})
	require.NoError(t, err)
	assert.Equal(t, []string{"accounting", "inventory"}, resolved)

	resolved, err = Resolve([]string{"inventory", "accounting"})
	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "accounting"}, resolved)
}

func TestResolve_TransitiveChain(t *testing.T) {
	resolved, err := Resolve([]string{"projects", "hr", "accounting"})

	require.NoError(t, err)
	assert.Equal(t, []string{"accounting", "hr", "projects"}, resolved)
}

func TestResolve_DuplicatesCollapse(t *testing.T) {
	resolved, err := Resolve([]string{"inventory", "pos", "inventory", "pos", "accounting"})

	require.NoError(t, err)
	assert.Equal(t, []string{"inventory", "accounting", "pos"}, resolved)
}

func TestResolve_UnknownModule(t *testing.T) {
	_, err := Resolve([]string{"inventory", "timetravel"})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownModule)
	assert.Contains(t, err.Error(), "timetravel")
}

func TestResolve_EmptyInput(t *testing.T) {
	resolved, err := Resolve(nil)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}

func TestSortModules_CycleDetected(t *testing.T) {
	// The fixed catalog cannot cycle; exercise the defensive check with an
	// injected graph.
	order := []string{"a", "b", "c"}
	dependsOn := map[string][]string{
		"a": {"c"},
		"b": {"a"},
		"c": {"b"},
	}

	_, err := sortModules(order, dependsOn)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircularDependency)
}

func TestCatalog_AllModulesKnown(t *testing.T) {
	all := All()
	require.Len(t, all, 8)

	for _, mod := range all {
		got, ok := Get(mod.Code)
		require.True(t, ok)
		assert.Equal(t, mod.Title, got.Title)
		for _, dep := range mod.DependsOn {
			_, ok := Get(dep)
			assert.True(t, ok, "dependency %s of %s must be in the catalog", dep, mod.Code)
		}
	}

	_, ok := Get(model.ModulePOS)
	assert.True(t, ok)
}
