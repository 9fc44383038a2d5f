package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/bnema/wm-pickup-cli/internal/adapters/wm/wmtest"
	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	srv := wmtest.NewServer(wmtest.Fixture{
		Username: "user@example.com",
		Password: "hunter2",
		UserID:   "u1",
		Accounts: []domain.Account{{ID: "A1", Name: "Home"}},
		Services: map[domain.AccountID][]domain.Service{
			"A1": {{ID: "S1", Name: "Trash"}},
		},
		Pickups: map[string][]string{"A1_S1": {"2099-01-05"}},
	})
	t.Cleanup(srv.Close)

	env := []string{
		"HOME=" + home,
		"WMP_UPSTREAM_AUTH_URL=" + srv.URL,
		"WMP_UPSTREAM_API_URL=" + srv.URL,
		"WMP_UPSTREAM_CLIENT_ID=" + wmtest.ClientID,
		"WMP_UPSTREAM_API_KEY=" + wmtest.APIKey,
		"WMP_SECRETS_BACKEND=file",
		"WMP_SCHEDULE_TIMEZONE=UTC",
		"WMP_LOG_LEVEL=error",
	}

	_, stderr, err := runWMP(t, binaryPath, env,
		"onboard",
		"--username", "user@example.com",
		"--password", "hunter2",
	)
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err := runWMP(t, binaryPath, env, "poll", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, `"resolved": 1`)

	stdout, stderr, err = runWMP(t, binaryPath, env, "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Home (A1)")
	assert.Contains(t, stdout, "Trash:")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "wmp-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/wmp")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build wmp binary: %s", string(output))
	return binaryPath
}

func runWMP(t *testing.T, binaryPath string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
