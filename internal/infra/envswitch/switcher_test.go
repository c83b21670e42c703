package envswitch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	apperrors "github.com/innercalm/backend/pkg/errors"
)

func writeProfile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func seedProfiles(t *testing.T, dir string) {
	t.Helper()
	writeProfile(t, dir, ".env.development", "ENVIRONMENT=development\nDEBUG=True\nDATABASE_URL=sqlite:///./innercalm.db\nSECRET_KEY=dev-secret-key-not-for-production\n")
	writeProfile(t, dir, ".env.testing", "ENVIRONMENT=testing\nDEBUG=True\nDATABASE_URL=sqlite:///:memory:\nALLOWED_ORIGINS=*\nSECRET_KEY=test-secret-key\n")
	writeProfile(t, dir, ".env.production", "ENVIRONMENT=production\nDEBUG=False\nDATABASE_URL=postgresql://your_postgresql_url_here\nSECRET_KEY=your_production_secret_key_here\n")
}

func TestActivateEachEnvironment(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)
	sw := New(dir)

	for _, env := range ValidEnvironments {
		result, err := sw.Activate(env)
		require.NoError(t, err)
		require.Equal(t, env, result.Environment)

		values, err := godotenv.Read(filepath.Join(dir, ".env"))
		require.NoError(t, err)
		require.Equal(t, env, values["ENVIRONMENT"])
	}
}

func TestActivateTestingProfileValues(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)

	_, err := New(dir).Activate("testing")
	require.NoError(t, err)

	values, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, "sqlite:///:memory:", values["DATABASE_URL"])
	require.Equal(t, "*", values["ALLOWED_ORIGINS"])
}

func TestActivateProductionDisablesDebug(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)

	_, err := New(dir).Activate("production")
	require.NoError(t, err)

	values, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, "False", values["DEBUG"])
}

func TestActivateUnknownEnvironmentLeavesConfigUntouched(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)
	sw := New(dir)

	_, err := sw.Activate("development")
	require.NoError(t, err)
	before, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)

	_, err = sw.Activate("bogus")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "unknown_environment"))

	after, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestActivateMissingProfile(t *testing.T) {
	dir := t.TempDir()
	sw := New(dir)

	_, err := sw.Activate("production")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "profile_missing"))

	_, statErr := os.Stat(filepath.Join(dir, ".env"))
	require.True(t, os.IsNotExist(statErr))
}

func TestActivatePrefersLocalOverride(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)
	writeProfile(t, dir, ".env.development.local", "ENVIRONMENT=development\nSECRET_KEY=real-local-secret\n")

	result, err := New(dir).Activate("development")
	require.NoError(t, err)
	require.True(t, result.UsedLocal)
	require.Equal(t, ".env.development.local", result.Source)

	values, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	require.Equal(t, "real-local-secret", values["SECRET_KEY"])
}

func TestActivateBacksUpPreviousConfig(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)
	sw := New(dir)

	_, err := sw.Activate("development")
	require.NoError(t, err)

	result, err := sw.Activate("testing")
	require.NoError(t, err)
	require.True(t, result.BackedUp)

	backup, err := godotenv.Read(filepath.Join(dir, ".env.backup"))
	require.NoError(t, err)
	require.Equal(t, "development", backup["ENVIRONMENT"])
}

func TestListSkipsBackupAndLocalFiles(t *testing.T) {
	dir := t.TempDir()
	seedProfiles(t, dir)
	writeProfile(t, dir, ".env.development.local", "ENVIRONMENT=development\n")
	writeProfile(t, dir, ".env.backup", "ENVIRONMENT=development\n")
	writeProfile(t, dir, ".env.example", "ENVIRONMENT=development\n")

	envs, err := New(dir).List()
	require.NoError(t, err)
	require.Equal(t, []string{"development", "example", "production", "testing"}, envs)
}

func TestCurrentMasksSecrets(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, ".env", "ENVIRONMENT=production\nOPENAI_API_KEY=sk-proj-abcdefghijklmnop1234\nDEBUG=False\n")

	profile, err := New(dir).Current()
	require.NoError(t, err)
	require.Equal(t, "production", profile.Name)
	require.Equal(t, "sk-proj-ab...1234", profile.Display("OPENAI_API_KEY"))
	require.Equal(t, "False", profile.Display("DEBUG"))
}

func TestCurrentWithoutActiveProfile(t *testing.T) {
	_, err := New(t.TempDir()).Current()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "no_active_profile"))
}
