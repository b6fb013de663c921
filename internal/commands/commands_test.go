package commands

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/auth"
)

const testSecret = "commands-secret"

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BILLED_SESSION_JWT_SECRET", testSecret)
	t.Setenv("BILLED_DATABASE_PATH", filepath.Join(dir, "billed.db"))
	t.Setenv("BILLED_STORAGE_UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("BILLED_LOGGER_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestToken_IssuesParsableToken(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "token", "--email", "admin@test.tld", "--type", entity.UserTypeAdmin)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)
	user, err := tokens.Parse(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "admin@test.tld", user.Email)
	assert.True(t, user.IsAdmin())
}

func TestToken_Validation(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "token")
	assert.Error(t, err, "email is required")

	_, err = run(t, "token", "--email", "a@a", "--type", "Intern")
	assert.Error(t, err)
}

func TestMigrate_AppliesOnce(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 1 migration(s)")

	out, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "applied 0 migration(s)")
}

func TestRoot_MissingConfigFile(t *testing.T) {
	setupEnv(t)

	_, err := run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "token", "--email", "a@a")
	assert.Error(t, err)
}
