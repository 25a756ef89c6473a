package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franks42/canonical-edn/canon"
	"github.com/franks42/canonical-edn/internal/store"
)

const testSeed = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// execute runs the root command with stdin and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCanon(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"edn map", `{:b 2, :a 1}`, nil, "{:a 1 :b 2}\n"},
		{"json keywordized", `{"b": 2, "a": 1}`, []string{"--from", "json"}, "{:a 1 :b 2}\n"},
		{"json string keys", `{"b": 2, "a": 1}`, []string{"--from", "json", "--string-keys"}, "{\"a\" 1 \"b\" 2}\n"},
		{"yaml", "b: 2.0\na: [1, x]\n", []string{"--from", "yaml"}, "{:a [1 \"x\"] :b 2.0}\n"},
		{"cue", "b: 2\na: \"x\"\n", []string{"--from", "cue"}, "{:a \"x\" :b 2}\n"},
		{"set", `#{3 1 2}`, nil, "#{1 2 3}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, append([]string{"canon"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestCanon_BytesOutHasNoNewline(t *testing.T) {
	out, err := execute(t, `[1.0 -0.0 1e21]`, "canon", "--bytes-out")
	require.NoError(t, err)
	assert.Equal(t, "[1.0 0.0 1e+21]", out)
}

func TestCanon_InfersFormatFromExtension(t *testing.T) {
	path := writeFile(t, "data.json", `{"z": null, "a": true}`)

	out, err := execute(t, "", "canon", path)
	require.NoError(t, err)
	assert.Equal(t, "{:a true :z nil}\n", out)
}

func TestCanon_JSONOutput(t *testing.T) {
	out, err := execute(t, `{:b 2 :a 1}`, "canon", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CanonResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "rich", resp.Data.Profile)
	assert.Equal(t, "{:a 1 :b 2}", resp.Data.Canonical)
}

func TestCanon_InvalidValueExitsFailure(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"duplicate json key", `{"a": 1, "a": 2}`, []string{"--from", "json"}, "DuplicateKey"},
		{"bytes under portable", `#bytes "00ff"`, []string{"--profile", "portable"}, "UnsupportedType"},
		{"nan", `[##NaN]`, nil, "InvalidNumber"},
		{"overflow", `99999999999999999999`, nil, "OutOfRange"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.stdin, append([]string{"canon"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestCanon_MissingFileExitsCommandError(t *testing.T) {
	out, err := execute(t, "", "canon", filepath.Join(t.TempDir(), "missing.edn"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}

func TestCanon_SyntaxErrorExitsCommandError(t *testing.T) {
	_, err := execute(t, `{:a`, "canon")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCanon_CustomProfileFile(t *testing.T) {
	path := writeFile(t, "strict.yaml", "name: strict\nallow_bytes: false\nallow_symbols: false\n")

	_, err := execute(t, `[foo]`, "canon", "--profile", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	out, err := execute(t, `[:foo]`, "canon", "--profile", path)
	require.NoError(t, err)
	assert.Equal(t, "[:foo]\n", out)
}

func TestValidate(t *testing.T) {
	out, err := execute(t, `{:a #{1 2}}`, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ valid")

	out, err = execute(t, `{:a #{1 1}}`, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "DuplicateElement at [:a 1]")
}

func TestValidate_JSON(t *testing.T) {
	out, err := execute(t, `[1 ##Inf]`, "validate", "--format", "json")
	require.Error(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   ValidateResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.Error)
	assert.Equal(t, "InvalidNumber", string(resp.Data.Error.Kind))
	assert.Equal(t, "[1]", resp.Data.Error.Path)
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "{:a 1 :b 2}\n", "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ canonical")

	out, err = execute(t, "{:b 2 :a 1}", "check")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "expected: {:a 1 :b 2}")
}

func TestHash(t *testing.T) {
	out, err := execute(t, `{:b 2 :a 1}`, "hash", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Data HashResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))

	canonical := []byte("{:a 1 :b 2}")
	cid, err := canon.CID(canonical)
	require.NoError(t, err)
	assert.Equal(t, canon.ContentHash(canonical), resp.Data.SHA256)
	assert.Equal(t, cid, resp.Data.CID)
	assert.Equal(t, len(canonical), resp.Data.ByteLength)
}

func TestInspect(t *testing.T) {
	out, err := execute(t, `#{:x "y"}`, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "status:    ok")
	assert.Contains(t, out, "type:      set")
	assert.Contains(t, out, `canonical: #{"y" :x}`)

	out, err = execute(t, `#bytes "00"`, "inspect", "--profile", "portable", "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data canon.Diagnostic `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, canon.StatusError, resp.Data.Status)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "UnsupportedType", string(resp.Data.Errors[0].Kind))
}

func TestStoreCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "forms.db")

	id, err := execute(t, `{:b 2 :a 1}`, "put", "--db", db)
	require.NoError(t, err)
	id = strings.TrimSpace(id)
	assert.Len(t, id, 64)

	again, err := execute(t, `{:a 1, :b 2}`, "put", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, id, strings.TrimSpace(again))

	_, err = execute(t, `[:v]`, "put", "--db", db, "--profile", "portable")
	require.NoError(t, err)

	out, err := execute(t, "", "get", "--db", db, id)
	require.NoError(t, err)
	assert.Equal(t, "{:a 1 :b 2}\n", out)

	out, err = execute(t, "", "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var resp struct {
		Data []store.Record `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, id, resp.Data[0].ID)

	out, err = execute(t, "", "list", "--db", db, "--all")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 2)

	_, err = execute(t, "", "get", "--db", db, "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSignAndVerify(t *testing.T) {
	for _, alg := range []string{"ed25519", "dilithium3"} {
		t.Run(alg, func(t *testing.T) {
			sigText, err := execute(t, `{:b 2 :a 1}`, "sign", "--alg", alg, "--hash", "sha3-256", "--seed", testSeed)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(sigText, "{:alg "+`"`+alg+`"`))
			sigPath := writeFile(t, "value.sig.edn", sigText)

			out, err := execute(t, `{:a 1 :b 2}`, "verify", "--sig", sigPath)
			require.NoError(t, err)
			assert.Contains(t, out, "✓ signature valid")

			_, err = execute(t, `{:a 1 :b 3}`, "verify", "--sig", sigPath)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))

			_, err = execute(t, `{:a 1 :b 2}`, "verify", "--sig", sigPath, "--profile", "portable")
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
		})
	}
}

func TestSign_BadSeed(t *testing.T) {
	_, err := execute(t, `1`, "sign", "--seed", "abcd")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestConformance(t *testing.T) {
	passing := writeFile(t, "pass.yaml", `name: pass
description: passing vectors
vectors:
  - name: sorted
    input: '{:b 2 :a 1}'
    expect:
      canonical: '{:a 1 :b 2}'
  - name: json
    format: json
    input: '{"n": 1.0}'
    expect:
      canonical: '{:n 1.0}'
`)
	failing := writeFile(t, "fail.yaml", `name: fail
description: a wrong expectation
vectors:
  - name: wrong
    input: '#{2 1}'
    expect:
      canonical: '#{2 1}'
`)

	out, err := execute(t, "", "conformance", passing)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 2/2 vectors passed")

	out, err = execute(t, "", "conformance", passing, failing)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ fail/wrong")
	assert.Contains(t, out, "2/3 vectors passed")

	out, err = execute(t, "", "conformance", "--format", "json", failing)
	require.Error(t, err)
	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Suite string `json:"suite"`
			Pass  bool   `json:"pass"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "fail", resp.Data[0].Suite)
	assert.False(t, resp.Data[0].Pass)
}

func TestConformance_MissingSuite(t *testing.T) {
	_, err := execute(t, "", "conformance", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
