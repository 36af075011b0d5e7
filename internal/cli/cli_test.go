package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metabulo/internal/services"
	"metabulo/internal/shared/testutil"
	"metabulo/pkg/contracts"
)

// writeConfig writes a config file that keeps the database and logs in a temp dir
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`database:
  driver: sqlite
  dsn: %s
logging:
  level: error
  output: stderr
`, filepath.Join(dir, "metabulo.db"))
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, contracts.GetVersionString())

	stdout, _, err = run(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"version": "`+contracts.Version+`"`)
}

func TestCreateTablesCommand(t *testing.T) {
	cfg := writeConfig(t)

	stdout, _, err := run(t, "--config", cfg, "create-tables")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema version 1\n", stdout)

	// Running again is a no-op
	stdout, _, err = run(t, "--config", cfg, "create-tables")
	require.NoError(t, err)
	assert.Equal(t, "sqlite schema version 1\n", stdout)
}

func TestCreateTablesCommand_MissingConfig(t *testing.T) {
	_, _, err := run(t, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "create-tables")
	assert.Error(t, err)
}

func TestProcessCommand(t *testing.T) {
	cfg := writeConfig(t)
	input := testutil.WriteTempFile(t, "samples.csv", testutil.SampleCSV)

	tests := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name:     "no steps drops metadata",
			args:     nil,
			expected: "id,m1,m2,m3\ns1,1,2,7\ns2,2,2,4\ns3,3,6,1\n",
		},
		{
			name:     "sum normalization",
			args:     []string{"--normalization", "sum"},
			expected: "id,m1,m2,m3\ns1,100,200,700\ns2,250,250,500\ns3,300,600,100\n",
		},
		{
			name:     "reference sample",
			args:     []string{"--normalization", "reference-sample", "--normalization-arg", "s1", "--precision", "1"},
			expected: "id,m1,m2,m3\ns1,1.0,2.0,7.0\ns2,2.0,2.0,4.0\ns3,1.0,2.0,0.3\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--config", cfg, "process", input}, tt.args...)
			stdout, _, err := run(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, stdout)
		})
	}
}

func TestProcessCommand_OutputFile(t *testing.T) {
	cfg := writeConfig(t)
	input := testutil.WriteTempFile(t, "missing.csv", testutil.MissingValuesCSV)
	output := filepath.Join(t.TempDir(), "out.csv")

	stdout, stderr, err := run(t, "--config", cfg, "process", input, "-o", output)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "imputed 1 missing values")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	// The missing m2 value is a fifth of the smallest observed value
	assert.Equal(t, "id,m1,m2\ns1,1,4\ns2,2,0.8\ns3,3,10\n", string(data))
}

func TestProcessCommand_Rejects(t *testing.T) {
	cfg := writeConfig(t)
	input := testutil.WriteTempFile(t, "samples.csv", testutil.SampleCSV)

	t.Run("unknown method", func(t *testing.T) {
		_, _, err := run(t, "--config", cfg, "process", input, "--scaling", "zscore")
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrInvalidMethod)
		assert.Contains(t, err.Error(), "auto, pareto, range, vast, level")
	})

	t.Run("bad precision", func(t *testing.T) {
		_, _, err := run(t, "--config", cfg, "process", input, "--precision", "-3")
		assert.Error(t, err)
	})

	t.Run("unknown reference sample", func(t *testing.T) {
		_, _, err := run(t, "--config", cfg, "process", input,
			"--normalization", "reference-sample", "--normalization-arg", "s9")
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrProcessingFailed)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		pdf := testutil.WriteTempFile(t, "samples.pdf", testutil.SampleCSV)
		_, _, err := run(t, "--config", cfg, "process", pdf)
		require.Error(t, err)
		assert.ErrorIs(t, err, services.ErrUnsupportedFile)
	})

	t.Run("missing file argument", func(t *testing.T) {
		_, _, err := run(t, "--config", cfg, "process")
		assert.Error(t, err)
	})
}
