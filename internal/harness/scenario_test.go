package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franks42/canonical-edn/canonerr"
)

func TestLoadSuite_ValidFile(t *testing.T) {
	suite, err := LoadSuite(filepath.Join("testdata", "suites", "basic.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "basic", suite.Name)
	assert.Equal(t, "rich", suite.Profile)
	require.NotEmpty(t, suite.Vectors)
	assert.Equal(t, "map-keys-sorted", suite.Vectors[0].Name)
	require.NotNil(t, suite.Vectors[0].Expect.Canonical)
	assert.Equal(t, "{:a 1 :b 2}", *suite.Vectors[0].Expect.Canonical)
}

func TestLoadSuite_MissingFile(t *testing.T) {
	_, err := LoadSuite(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read suite file")
}

func TestParseSuite_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: s\ndescription: d\nvector: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nvectors: [{name: a, input: '1', expect: {canonical: '1'}}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: s\nvectors: [{name: a, input: '1', expect: {canonical: '1'}}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no vectors",
			yaml:    "name: s\ndescription: d\n",
			wantErr: "vectors list is required",
		},
		{
			name:    "vector without name",
			yaml:    "name: s\ndescription: d\nvectors: [{input: '1', expect: {canonical: '1'}}]\n",
			wantErr: "vectors[0]: name is required",
		},
		{
			name:    "duplicate vector name",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, input: '1', expect: {canonical: '1'}}, {name: a, input: '2', expect: {canonical: '2'}}]\n",
			wantErr: "duplicate name",
		},
		{
			name:    "unknown format",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, format: toml, input: '1', expect: {canonical: '1'}}]\n",
			wantErr: "unknown input format",
		},
		{
			name:    "empty expectation",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, input: '1', expect: {}}]\n",
			wantErr: "one of canonical or error is required",
		},
		{
			name:    "both expectations",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, input: '1', expect: {canonical: '1', error: {kind: OutOfRange}}}]\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "unknown error kind",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, input: '1', expect: {error: {kind: Oops}}}]\n",
			wantErr: "unknown kind",
		},
		{
			name:    "sha256 on error",
			yaml:    "name: s\ndescription: d\nvectors: [{name: a, input: '1', expect: {sha256: abc, error: {kind: OutOfRange}}}]\n",
			wantErr: "sha256 requires canonical",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSuite([]byte(tt.yaml), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseSuite_EmptyCanonicalIsAnExpectation(t *testing.T) {
	suite, err := ParseSuite([]byte("name: s\ndescription: d\nvectors: [{name: a, input: '\"\"', expect: {canonical: '\"\"'}}]\n"), "")
	require.NoError(t, err)
	assert.Equal(t, `""`, *suite.Vectors[0].Expect.Canonical)
}

func TestResolveProfile_RelativeToSuite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.yaml"), []byte("name: mine\n"), 0o644))

	suite := &Suite{Profile: "p.yaml", baseDir: dir}
	p, err := suite.resolveProfile(Vector{})
	require.NoError(t, err)
	assert.Equal(t, "mine", p.Name)

	p, err = suite.resolveProfile(Vector{Profile: "portable"})
	require.NoError(t, err)
	assert.Equal(t, "portable", p.Name)

	p, err = (&Suite{}).resolveProfile(Vector{})
	require.NoError(t, err)
	assert.Equal(t, "rich", p.Name)
}

func TestKnownKind(t *testing.T) {
	for _, k := range canonerr.Kinds {
		assert.True(t, knownKind(k), k)
	}
	assert.False(t, knownKind("Nope"))
}
