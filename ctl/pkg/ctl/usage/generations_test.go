package usage

import (
	"testing"

	"github.com/bootusage/bootusage/common/profile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultIDs(results []*GenerationResult) []string {
	ids := []string{}
	for _, r := range results {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestGetGenerations(t *testing.T) {
	env := newTestEnvironment(t)

	results, err := GetGenerations(env, GenerationsCfg{})
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, resultIDs(results))

	first, second, third := results[0], results[1], results[2]
	assert.False(t, first.Current)
	assert.False(t, second.Current)
	assert.True(t, third.Current)

	assert.Equal(t, "nixos-system-first", first.Label)
	assert.Equal(t, "Second", second.Label)

	assert.Equal(t, []string{i1File, k1File}, first.BootFiles)
	assert.Equal(t, profile.Usage{
		Unique: []string{i1File},
		Shared: map[string][]string{k1File: {"2"}},
	}, first.Usage)
	assert.Equal(t, profile.Usage{
		Unique: []string{},
		Shared: map[string][]string{i2File: {"3"}, k1File: {"1"}},
	}, second.Usage)

	assert.Equal(t, int64(1024), first.UniqueBytes)
	assert.Equal(t, int64(2048), first.SharedBytes)
	assert.Equal(t, "(1.00KiB+2.00KiB)", first.SizeUsage)
	assert.Equal(t, "(0.00B+2.50KiB)", second.SizeUsage)
	assert.Equal(t, "(4.00KiB+512.00B)", third.SizeUsage)
}

func TestGetGenerationsFilter(t *testing.T) {
	env := newTestEnvironment(t)

	tests := []struct {
		filter string
		want   []string
	}{
		{"current", []string{"3"}},
		{"not current", []string{"1", "2"}},
		{"id >= 2", []string{"2", "3"}},
		{"label == 'Second'", []string{"2"}},
		{"unique > 1KiB", []string{"3"}},
		{"unique == 0B and shared > 2KiB", []string{"2"}},
		{"files == 2", []string{"1", "2", "3"}},
		{"age > 1d", []string{}},
		{"age < 1d and not current", []string{"1", "2"}},
		{"unique > 2KB", []string{"3"}},
		{"shared >= 2KB and shared < 2KiB", []string{}},
		{"glob(label, 'nixos-system-*')", []string{"1", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			results, err := GetGenerations(env, GenerationsCfg{Filter: tt.filter})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resultIDs(results))
		})
	}
}

func TestGetGenerationsInvalidFilter(t *testing.T) {
	env := newTestEnvironment(t)
	for _, filter := range []string{"age > 3q", "unique > 1XB", "size >"} {
		_, err := GetGenerations(env, GenerationsCfg{Filter: filter})
		assert.Error(t, err, filter)
	}
}

func TestCompileGenerationFilterFieldNamesInLiterals(t *testing.T) {
	info := GenerationInfo{ID: 4, Label: "nixos-current-files-unique", Current: true}

	for _, query := range []string{
		`label == "nixos-current-files-unique"`,
		`label == 'nixos-current-files-unique' and current`,
		`label != "age > 1d" and id == 4`,
	} {
		t.Run(query, func(t *testing.T) {
			filter, err := CompileGenerationFilter(query)
			require.NoError(t, err)
			keep, err := filter(info)
			require.NoError(t, err)
			assert.True(t, keep)
		})
	}
}

func TestGetGeneration(t *testing.T) {
	env := newTestEnvironment(t)

	result, err := GetGeneration(env, "", "3")
	require.NoError(t, err)
	assert.True(t, result.Current)
	assert.Equal(t, []string{i2File, k2File}, result.BootFiles)
	assert.Equal(t, []string{k2File}, result.Usage.Unique)

	_, err = GetGeneration(env, "", "42")
	assert.ErrorIs(t, err, profile.ErrGenerationNotFound)
}

func TestSerialize(t *testing.T) {
	env := newTestEnvironment(t)

	serialized, err := Serialize(env, "")
	require.NoError(t, err)
	assert.Equal(t, "system", serialized.Name)
	assert.Equal(t, []string{"1", "2", "3"}, serialized.Generations.IDs())
}
