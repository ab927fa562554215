package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Scenarios(t *testing.T) {
	files, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		scenario, err := LoadScenarioWithBasePath(file, "testdata/defs")
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/narrow_and_rebind.yaml", "testdata/defs")
	require.NoError(t, err)

	var first []byte
	for i := 0; i < 3; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		data, err := Snapshot(scenario.Name, result)
		require.NoError(t, err)
		if i == 0 {
			first = data
			continue
		}
		assert.Equal(t, string(first), string(data), "run %d", i)
	}
}

func TestSnapshot_EmptyResult(t *testing.T) {
	data, err := Snapshot("empty", NewResult())
	require.NoError(t, err)
	assert.Equal(t, `{"final":{},"scenario_name":"empty","trace":[]}`, string(data))
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath("testdata/scenarios/vector_masks.yaml", "testdata/defs")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "vector_masks", result))
}
