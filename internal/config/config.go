// Package config loads the run configuration from an INI file, an optional
// .env file and VISUAL_RUNNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

// ErrMissingKey is returned when a key required for a run is absent.
var ErrMissingKey = errors.New("missing required configuration key")

// EnvPrefix prefixes environment overrides, e.g. VISUAL_RUNNER_PASSWORD.
const EnvPrefix = "VISUAL_RUNNER"

// Conventional layout under the base directory.
const (
	DefaultConfigFile = "Config/configFile.ini"
	DefaultScriptFile = "Config/Properties_1.JSON"
	DefaultDataDir    = "Data"
	DefaultObjectsDir = "Objects"
	DefaultRuntimeDir = "RunTime"
)

// Credential field names whose payload comes from configuration.
const (
	FieldUsername = "Username"
	FieldPassword = "Password"
)

// key describes one recognized configuration key.
type key struct {
	section string
	name    string
	env     string
	def     any
}

var keys = []key{
	{"default", "url", "URL", nil},
	{"default", "username", "USERNAME", "default_user"},
	{"default", "password", "PASSWORD", "default_pass"},
	{"default", "test_records_to_create", "TEST_RECORDS_TO_CREATE", "1"},
	{"default", "excel_file_input", "EXCEL_FILE_INPUT", nil},
	{"settings", "timeout", "TIMEOUT", "10"},
	{"settings", "confidence", "CONFIDENCE", "0.8"},
	{"settings", "launch_delay_ms", "LAUNCH_DELAY_MS", "5000"},
	{"settings", "click_settle_ms", "CLICK_SETTLE_MS", "1000"},
	{"settings", "keystroke_interval_ms", "KEYSTROKE_INTERVAL_MS", "100"},
	{"settings", "keep_screenshots", "KEEP_SCREENSHOTS", "false"},
	{"settings", "coarse_match", "COARSE_MATCH", "false"},
	{"settings", "script_file", "SCRIPT_FILE", DefaultScriptFile},
	{"settings", "data_dir", "DATA_DIR", DefaultDataDir},
	{"settings", "objects_dir", "OBJECTS_DIR", DefaultObjectsDir},
	{"settings", "runtime_dir", "RUNTIME_DIR", DefaultRuntimeDir},
}

func (k key) path() string { return k.section + "." + k.name }

// RunContext is the immutable process-wide configuration.
type RunContext struct {
	BaseDir    string
	ConfigFile string

	URL                 string
	Username            string
	Password            string
	TestRecordsToCreate int // reserved, not used by the run loop

	Timeout           time.Duration
	Confidence        float64
	LaunchDelay       time.Duration
	ClickSettle       time.Duration
	KeystrokeInterval time.Duration
	KeepScreenshots   bool
	// CoarseMatch searches large references at half resolution first.
	CoarseMatch bool

	ExcelFile  string
	ScriptFile string
	ObjectsDir string
	RuntimeDir string
}

// Credentials maps credential field names to their configured values.
func (c RunContext) Credentials() map[string]string {
	return map[string]string{
		FieldUsername: c.Username,
		FieldPassword: c.Password,
	}
}

// LogFields describes the loaded configuration with secrets masked.
func (c RunContext) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("base_dir", c.BaseDir),
		zap.String("config", c.ConfigFile),
		zap.String("url", c.URL),
		zap.String("username", c.Username),
		zap.String("password", mask(c.Password)),
		zap.Int("test_records_to_create", c.TestRecordsToCreate),
		zap.Duration("timeout", c.Timeout),
		zap.Float64("confidence", c.Confidence),
		zap.String("data", c.ExcelFile),
		zap.String("script", c.ScriptFile),
		zap.String("objects", c.ObjectsDir),
		zap.String("runtime", c.RuntimeDir),
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	BaseDir    string            // resolved base directory
	ConfigFile string            // INI file; relative paths resolve against BaseDir
	EnvFile    string            // optional .env file; defaults to BaseDir/.env when present
	Overrides  map[string]string // "section.key" → value, highest precedence
	// Lenient skips required-key validation, for commands that only need
	// the locator settings.
	Lenient bool
}

// Load reads the configuration and validates it into a RunContext.
func Load(opts LoadOptions) (RunContext, error) {
	base := opts.BaseDir
	if base == "" {
		var err error
		if base, err = os.Getwd(); err != nil {
			return RunContext{}, fmt.Errorf("resolve working directory: %w", err)
		}
	}
	cfgFile := opts.ConfigFile
	if cfgFile == "" {
		cfgFile = DefaultConfigFile
	}
	cfgFile = resolve(base, cfgFile)

	if err := loadEnvFile(base, opts.EnvFile); err != nil {
		return RunContext{}, err
	}

	v := viper.New()
	for _, k := range keys {
		if k.def != nil {
			v.SetDefault(k.path(), k.def)
		}
		if err := v.BindEnv(k.path(), EnvPrefix+"_"+k.env); err != nil {
			return RunContext{}, fmt.Errorf("bind env for %s: %w", k.path(), err)
		}
	}

	sections, err := readINI(cfgFile)
	switch {
	case err == nil:
		if err := v.MergeConfigMap(sections); err != nil {
			return RunContext{}, fmt.Errorf("merge config %s: %w", cfgFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && opts.Lenient:
	default:
		return RunContext{}, err
	}

	for path, val := range opts.Overrides {
		v.Set(path, val)
	}

	return build(v, base, cfgFile, opts.Lenient)
}

func build(v *viper.Viper, base, cfgFile string, lenient bool) (RunContext, error) {
	rc := RunContext{
		BaseDir:    base,
		ConfigFile: cfgFile,
		URL:        strings.TrimSpace(v.GetString("default.url")),
		Username:   v.GetString("default.username"),
		Password:   v.GetString("default.password"),
	}

	if !lenient {
		for _, path := range []string{"default.url", "default.excel_file_input"} {
			if strings.TrimSpace(v.GetString(path)) == "" {
				return RunContext{}, fmt.Errorf("%w: %s in %s", ErrMissingKey, path, cfgFile)
			}
		}
	}

	var err error
	if rc.TestRecordsToCreate, err = intKey(v, "default.test_records_to_create"); err != nil {
		return RunContext{}, err
	}
	timeout, err := intKey(v, "settings.timeout")
	if err != nil {
		return RunContext{}, err
	}
	rc.Timeout = time.Duration(timeout) * time.Second

	rc.Confidence, err = strconv.ParseFloat(strings.TrimSpace(v.GetString("settings.confidence")), 64)
	if err != nil {
		return RunContext{}, fmt.Errorf("settings.confidence: %w", err)
	}
	if rc.Confidence < 0 || rc.Confidence > 1 {
		return RunContext{}, fmt.Errorf("settings.confidence: %v outside [0, 1]", rc.Confidence)
	}

	if rc.LaunchDelay, err = msKey(v, "settings.launch_delay_ms"); err != nil {
		return RunContext{}, err
	}
	if rc.ClickSettle, err = msKey(v, "settings.click_settle_ms"); err != nil {
		return RunContext{}, err
	}
	if rc.KeystrokeInterval, err = msKey(v, "settings.keystroke_interval_ms"); err != nil {
		return RunContext{}, err
	}
	if rc.KeepScreenshots, err = strconv.ParseBool(strings.TrimSpace(v.GetString("settings.keep_screenshots"))); err != nil {
		return RunContext{}, fmt.Errorf("settings.keep_screenshots: %w", err)
	}
	if rc.CoarseMatch, err = strconv.ParseBool(strings.TrimSpace(v.GetString("settings.coarse_match"))); err != nil {
		return RunContext{}, fmt.Errorf("settings.coarse_match: %w", err)
	}

	if name := strings.TrimSpace(v.GetString("default.excel_file_input")); name != "" {
		rc.ExcelFile = resolve(resolve(base, v.GetString("settings.data_dir")), name)
	}
	rc.ScriptFile = resolve(base, v.GetString("settings.script_file"))
	rc.ObjectsDir = resolve(base, v.GetString("settings.objects_dir"))
	rc.RuntimeDir = resolve(base, v.GetString("settings.runtime_dir"))
	return rc, nil
}

func intKey(v *viper.Viper, path string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(path)))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative", path)
	}
	return n, nil
}

func msKey(v *viper.Viper, path string) (time.Duration, error) {
	n, err := intKey(v, path)
	return time.Duration(n) * time.Millisecond, err
}

// readINI parses an INI file into section → key → value maps. Keys in the
// DEFAULT section are inherited by every other section unless overridden.
func readINI(path string) (map[string]any, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	f, err := ini.LoadSources(ini.LoadOptions{InsensitiveKeys: true, IgnoreInlineComment: true}, path)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	defaults := map[string]any{}
	for _, sec := range f.Sections() {
		if !strings.EqualFold(sec.Name(), ini.DefaultSection) {
			continue
		}
		for _, k := range sec.Keys() {
			defaults[k.Name()] = k.Value()
		}
	}
	out := map[string]any{"default": defaults}
	for _, sec := range f.Sections() {
		if strings.EqualFold(sec.Name(), ini.DefaultSection) {
			continue
		}
		name := strings.ToLower(sec.Name())
		vals, ok := out[name].(map[string]any)
		if !ok {
			vals = map[string]any{}
			for k, val := range defaults {
				vals[k] = val
			}
		}
		for _, k := range sec.Keys() {
			vals[k.Name()] = k.Value()
		}
		out[name] = vals
	}
	if _, ok := out["settings"]; !ok {
		settings := map[string]any{}
		for k, val := range defaults {
			settings[k] = val
		}
		out["settings"] = settings
	}
	return out, nil
}

func loadEnvFile(base, envFile string) error {
	if envFile == "" {
		candidate := filepath.Join(base, ".env")
		if _, err := os.Stat(candidate); err != nil {
			return nil
		}
		envFile = candidate
	}
	if err := godotenv.Load(resolve(base, envFile)); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
