package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Basic(t *testing.T) {
	suite, err := LoadSuite(filepath.Join("testdata", "suites", "basic.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, suite)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestSnapshot_IsCanonical(t *testing.T) {
	r := NewResult("s")
	r.Add(VectorResult{Name: "b", Profile: "rich", Pass: true, Canonical: `"x"`})
	r.Add(VectorResult{Name: "a", Profile: "rich", ErrorKind: "OutOfRange", ErrorPath: "[]", Errors: []string{"boom"}})

	snap, err := Snapshot(r)
	require.NoError(t, err)
	assert.Equal(t,
		`{:pass false :suite "s" :vectors [{:canonical "\"x\"" :name "b" :pass true :profile "rich"} {:error :OutOfRange :name "a" :pass false :path "[]" :profile "rich"}]}`,
		string(snap))
}
