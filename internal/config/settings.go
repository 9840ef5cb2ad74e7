package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/muurk/positions/internal/positions"
)

// Defaults applied when neither the profile nor the environment set a value.
const (
	DefaultLocale     = "en"
	DefaultValidation = "compatible"
	DefaultTimeout    = positions.DefaultTimeout
)

// EnvFiles are loaded, when present, before the environment is parsed.
var EnvFiles = []string{".env", ".env.local"}

// Overrides holds the settings read from the environment. Empty values leave
// the profile untouched.
type Overrides struct {
	Profile        string        `env:"POSITIONS_PROFILE"`
	BaseURL        string        `env:"POSITIONS_BASE_URL"`
	FormID         string        `env:"POSITIONS_FORM_ID"`
	Username       string        `env:"POSITIONS_USERNAME"`
	Password       string        `env:"POSITIONS_PASSWORD"`
	Locale         string        `env:"POSITIONS_LOCALE"`
	PageSize       int           `env:"POSITIONS_PAGE_SIZE"`
	LookupDebounce time.Duration `env:"POSITIONS_LOOKUP_DEBOUNCE"`
	Validation     string        `env:"POSITIONS_VALIDATION"`
	Timeout        time.Duration `env:"POSITIONS_TIMEOUT"`
}

// Settings are the resolved values a command runs with.
type Settings struct {
	Profile        string
	BaseURL        string `validate:"required,url"`
	FormID         string
	Username       string
	Password       string
	Locale         string        `validate:"required"`
	PageSize       int           `validate:"min=1,max=1000"`
	LookupDebounce time.Duration `validate:"gte=0"`
	Validation     string        `validate:"oneof=compatible strict"`
	Timeout        time.Duration `validate:"gte=0"`
	ChangeFeed     bool
}

// LoadEnv loads the env files that exist and returns how many were loaded.
// Variables already set in the process environment are not overridden.
func LoadEnv(files []string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil && !info.IsDir() {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

// ParseOverrides reads Overrides from the process environment.
func ParseOverrides() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("invalid environment: %w", err)
	}
	return o, nil
}

// Resolve merges defaults, the selected profile and the environment, in that
// order of increasing precedence. The profile is o.Profile when set,
// otherwise the registry's current profile. Resolve does not validate; call
// Validate once command-line flags have been applied too.
func Resolve(reg *Registry, o Overrides) (*Settings, error) {
	s := &Settings{
		Locale:     DefaultLocale,
		PageSize:   positions.DefaultPageSize,
		Validation: DefaultValidation,
		Timeout:    DefaultTimeout,
		ChangeFeed: true,
	}

	name := o.Profile
	if name == "" && reg != nil {
		name = reg.CurrentProfile
	}
	if name != "" {
		if reg == nil || reg.GetProfile(name) == nil {
			return nil, fmt.Errorf("profile %q not found", name)
		}
		s.Profile = name
		s.applyProfile(reg.GetProfile(name))
	}
	if reg != nil && reg.Preferences != nil {
		s.ChangeFeed = reg.Preferences.ChangeFeed
	}

	s.applyOverrides(o)
	return s, nil
}

func (s *Settings) applyProfile(p *Profile) {
	setString(&s.BaseURL, p.BaseURL)
	setString(&s.FormID, p.FormID)
	setString(&s.Username, p.Username)
	setString(&s.Locale, p.Locale)
	setString(&s.Validation, p.Validation)
	if p.PageSize > 0 {
		s.PageSize = p.PageSize
	}
	if p.LookupDebounceMS > 0 {
		s.LookupDebounce = time.Duration(p.LookupDebounceMS) * time.Millisecond
	}
	if p.TimeoutSeconds > 0 {
		s.Timeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
}

func (s *Settings) applyOverrides(o Overrides) {
	setString(&s.BaseURL, o.BaseURL)
	setString(&s.FormID, o.FormID)
	setString(&s.Username, o.Username)
	setString(&s.Password, o.Password)
	setString(&s.Locale, o.Locale)
	setString(&s.Validation, strings.ToLower(o.Validation))
	if o.PageSize > 0 {
		s.PageSize = o.PageSize
	}
	if o.LookupDebounce > 0 {
		s.LookupDebounce = o.LookupDebounce
	}
	if o.Timeout > 0 {
		s.Timeout = o.Timeout
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the resolved settings.
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// RequireFormID reports an error when no document is selected.
func (s *Settings) RequireFormID() error {
	if s.FormID == "" {
		return errors.New("no document selected: set form_id in the profile, POSITIONS_FORM_ID, --form or --context-url")
	}
	return nil
}

// ValidationMode returns the quantity validation mode.
func (s *Settings) ValidationMode() positions.ValidationMode {
	return positions.ParseValidationMode(s.Validation)
}

// NewClient returns a backend client configured from the settings.
func (s *Settings) NewClient() *positions.Client {
	client := positions.NewClient(s.BaseURL)
	if s.Timeout > 0 {
		client.SetTimeout(s.Timeout)
	}
	if s.Username != "" {
		client.SetAuth(s.Username, s.Password)
	}
	return client
}
