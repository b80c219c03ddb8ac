package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpgo/retirement-simulator/internal/config"
	"github.com/rpgo/retirement-simulator/internal/domain"
)

const testReturns = `year,us_equities,international,bonds,inflation
2000,6,5,3,2
2001,-10,-12,4,2
2002,12,10,2,2
2003,8,7,3,2
`

// isolateEnv clears RETIRESIM_* so a developer's environment cannot leak in.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvReturns,
		config.EnvSeed, config.EnvStore, config.EnvAddr, config.EnvWorkers} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeExample(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "profile.yaml")
	_, err := execute(t, "example", path)
	require.NoError(t, err)
	return path
}

func TestVersionCmd(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "retiresim version "+version)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, version, v["version"])
}

func TestExampleCmd(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeExample(t, dir)

	_, err := os.Stat(path)
	require.NoError(t, err)

	_, err = execute(t, "example", path)
	require.Error(t, err, "refuses to overwrite without --force")

	_, err = execute(t, "example", path, "--force")
	require.NoError(t, err)
}

func TestUniformCmd_Table(t *testing.T) {
	isolateEnv(t)
	path := writeExample(t, t.TempDir())

	out, err := execute(t, "uniform", path, "--start", "2025-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "-= Simulation using uniform returns =-")
	assert.Contains(t, out, "Retired!")
	assert.NotContains(t, out, "Monte Carlo")
}

func TestMonteCarloCmd_JSONReproducible(t *testing.T) {
	isolateEnv(t)
	path := writeExample(t, t.TempDir())
	args := []string{"montecarlo", path, "--start", "2025-01-01", "--seed", "99", "--format", "json"}

	decode := func(out string) *domain.SimulationReport {
		var report domain.SimulationReport
		require.NoError(t, json.Unmarshal([]byte(out), &report))
		return &report
	}

	out1, err := execute(t, args...)
	require.NoError(t, err)
	out2, err := execute(t, args...)
	require.NoError(t, err)

	r1, r2 := decode(out1), decode(out2)
	require.NotNil(t, r1.MonteCarlo)
	assert.Equal(t, int64(99), r1.MonteCarlo.Seed)
	assert.True(t, r1.MonteCarlo.SuccessRate.Equal(r2.MonteCarlo.SuccessRate))
	assert.True(t, r1.MonteCarlo.MinTerminalBalance.Equal(r2.MonteCarlo.MinTerminalBalance))
	assert.NotEqual(t, r1.RunID, r2.RunID)
}

func TestHistoricalCmd(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeExample(t, dir)

	_, err := execute(t, "historical", path, "--start", "2025-01-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returns file")

	returns := filepath.Join(dir, "returns.csv")
	require.NoError(t, os.WriteFile(returns, []byte(testReturns), 0o600))

	out, err := execute(t, "historical", path, "--start", "2025-01-01", "--returns", returns, "--format", "csv-summary")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5, "header + one row per start year")
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "historical,"), line)
	}
}

func TestRunCmd_UnknownFormat(t *testing.T) {
	isolateEnv(t)
	path := writeExample(t, t.TempDir())
	_, err := execute(t, "run", path, "--format", "pdf")
	require.Error(t, err)
}

func TestRunCmd_StoreAndHistory(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeExample(t, dir)
	db := filepath.Join(dir, "runs.db")
	saveDir := filepath.Join(dir, "reports")
	require.NoError(t, os.MkdirAll(saveDir, 0o755))

	out, err := execute(t, "uniform", path, "--start", "2025-01-01", "--store", db,
		"--format", "json", "--save-dir", saveDir)
	require.NoError(t, err)
	var report domain.SimulationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	files, err := os.ReadDir(saveDir)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	out, err = execute(t, "history", "--store", db)
	require.NoError(t, err)
	assert.Contains(t, out, report.RunID)
	assert.Contains(t, out, "uniform")

	out, err = execute(t, "history", report.RunID, "--store", db, "--mode", "uniform")
	require.NoError(t, err)
	var traj domain.Trajectory
	require.NoError(t, json.Unmarshal([]byte(out), &traj))
	assert.Equal(t, domain.ModeUniform, traj.Provenance.Mode)
	assert.NotEmpty(t, traj.Records)
}

func TestHistoryCmd_RequiresStore(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "history")
	require.Error(t, err)
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	logger := setupLogger("warn", "json", &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	buf.Reset()
	logger = setupLogger("debug", "text", &buf)
	logger.Debug("detail")
	assert.Contains(t, buf.String(), "msg=detail")
}
