package envswitch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	apperrors "github.com/innercalm/backend/pkg/errors"
)

// ValidEnvironments is the closed set of profiles the switcher accepts.
var ValidEnvironments = []string{"development", "testing", "production"}

const (
	activeFile = ".env"
	backupFile = ".env.backup"
)

// Switcher activates one named environment profile by copying it over the
// active .env file. Activation is the only mutation in the system and is not
// safe for concurrent invocation against the same directory.
type Switcher struct {
	dir string
}

// New constructs a Switcher rooted at the directory holding the profiles.
func New(dir string) *Switcher {
	if dir == "" {
		dir = "."
	}
	return &Switcher{dir: dir}
}

// Result reports what an activation did.
type Result struct {
	Environment string
	Source      string
	UsedLocal   bool
	BackedUp    bool
}

// Activate copies the named profile over the active configuration. A
// .env.<name>.local file takes precedence over the checked-in template so
// operators can keep real credentials out of version control. On any failure
// the previously active configuration is left untouched.
func (s *Switcher) Activate(env string) (Result, error) {
	if !IsValid(env) {
		return Result{}, apperrors.Wrap("unknown_environment",
			fmt.Sprintf("invalid environment %q, valid environments: %s", env, strings.Join(ValidEnvironments, ", ")), nil)
	}

	local := filepath.Join(s.dir, activeFile+"."+env+".local")
	template := filepath.Join(s.dir, activeFile+"."+env)

	source := template
	usedLocal := false
	if _, err := os.Stat(local); err == nil {
		source = local
		usedLocal = true
	} else if _, err := os.Stat(template); err != nil {
		return Result{}, apperrors.Wrap("profile_missing",
			fmt.Sprintf("environment file not found: %s", template), err)
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return Result{}, apperrors.Wrap("config_error", "read environment profile", err)
	}
	if _, err := godotenv.Unmarshal(string(data)); err != nil {
		return Result{}, apperrors.Wrap("config_error", "parse environment profile", err)
	}

	target := filepath.Join(s.dir, activeFile)
	backedUp := false
	if current, err := os.ReadFile(target); err == nil {
		if err := os.WriteFile(filepath.Join(s.dir, backupFile), current, 0o600); err != nil {
			return Result{}, apperrors.Wrap("config_error", "back up active configuration", err)
		}
		backedUp = true
	}

	if err := os.WriteFile(target, data, 0o600); err != nil {
		return Result{}, apperrors.Wrap("config_error", "write active configuration", err)
	}

	return Result{
		Environment: env,
		Source:      filepath.Base(source),
		UsedLocal:   usedLocal,
		BackedUp:    backedUp,
	}, nil
}

// Current returns the settings of the active configuration with secret values
// masked for display.
func (s *Switcher) Current() (Profile, error) {
	target := filepath.Join(s.dir, activeFile)
	values, err := godotenv.Read(target)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, apperrors.Wrap("no_active_profile", "no .env file found, run: switchenv switch <environment>", err)
		}
		return Profile{}, apperrors.Wrap("config_error", "read active configuration", err)
	}
	return Profile{Name: values["ENVIRONMENT"], Values: values}, nil
}

// List enumerates the profile templates available in the directory.
func (s *Switcher) List() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, activeFile+".*"))
	if err != nil {
		return nil, apperrors.Wrap("config_error", "list environment profiles", err)
	}
	var envs []string
	for _, match := range matches {
		name := strings.TrimPrefix(filepath.Base(match), activeFile+".")
		if name == "backup" || name == "local" || strings.HasSuffix(name, ".local") {
			continue
		}
		envs = append(envs, name)
	}
	sort.Strings(envs)
	return envs, nil
}

// IsValid reports membership in the closed environment set.
func IsValid(env string) bool {
	for _, valid := range ValidEnvironments {
		if env == valid {
			return true
		}
	}
	return false
}

// Profile is the parsed active configuration.
type Profile struct {
	Name   string
	Values map[string]string
}

// SortedKeys returns the setting names in stable order.
func (p Profile) SortedKeys() []string {
	keys := make([]string, 0, len(p.Values))
	for key := range p.Values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Display returns the value for a key, masking credentials.
func (p Profile) Display(key string) string {
	value := p.Values[key]
	if !sensitiveKey(key) {
		return value
	}
	if len(value) <= 10 || strings.HasPrefix(value, "your_") || strings.HasPrefix(value, "test-") {
		return value
	}
	return value[:10] + "..." + value[len(value)-4:]
}

func sensitiveKey(key string) bool {
	return strings.Contains(key, "API_KEY") || strings.Contains(key, "SECRET")
}

// DescribeDatabase renders a short human readable database summary, keeping
// connection credentials out of terminal output.
func DescribeDatabase(url string) string {
	switch {
	case strings.Contains(url, ":memory:"):
		return "In-memory (testing)"
	case strings.HasPrefix(url, "sqlite"):
		return "SQLite (" + url[strings.LastIndex(url, "/")+1:] + ")"
	case strings.HasPrefix(url, "postgres"):
		if strings.Contains(url, "your_postgresql") {
			return "PostgreSQL (template - needs real URL)"
		}
		return "PostgreSQL"
	case url == "":
		return "not configured"
	default:
		return "unknown"
	}
}
