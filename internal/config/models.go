package config

import (
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// It stores named backend connection profiles and application preferences.
type Registry struct {
	Version        int                 `yaml:"version"`
	CurrentProfile string              `yaml:"current_profile,omitempty"`
	Profiles       map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences    *Preferences        `yaml:"preferences,omitempty"`
}

// Profile describes how to reach one positions backend.
type Profile struct {
	BaseURL          string    `yaml:"base_url"`                     // e.g. http://erp.local:8080
	Username         string    `yaml:"username,omitempty"`           // HTTP Basic Auth user
	FormID           string    `yaml:"form_id,omitempty"`            // Document whose positions are edited
	Locale           string    `yaml:"locale,omitempty"`             // Header and notice language (en, pl)
	PageSize         int       `yaml:"page_size,omitempty"`          // Rows per page
	LookupDebounceMS int       `yaml:"lookup_debounce_ms,omitempty"` // Delay before a lookup search
	Validation       string    `yaml:"validation,omitempty"`         // "compatible" or "strict"
	TimeoutSeconds   int       `yaml:"timeout_seconds,omitempty"`    // HTTP request timeout
	LastUsed         time.Time `yaml:"last_used,omitempty"`
	// Password is NEVER stored in config file for security reasons
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool `yaml:"auto_discover"`    // Browse mDNS when no profile is configured
	DiscoverTimeout int  `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
	ChangeFeed      bool `yaml:"change_feed"`      // Reload the grid on server change events
}

func defaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
		ChangeFeed:      true,
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Profiles:    make(map[string]*Profile),
		Preferences: defaultPreferences(),
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// EnsureProfile ensures a profile entry exists and returns it.
func (r *Registry) EnsureProfile(name string) *Profile {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	if p, exists := r.Profiles[name]; exists {
		return p
	}
	p := &Profile{}
	r.Profiles[name] = p
	if r.CurrentProfile == "" {
		r.CurrentProfile = name
	}
	return p
}

// RemoveProfile deletes a profile. Removing the current profile clears the
// selection.
func (r *Registry) RemoveProfile(name string) bool {
	if _, ok := r.Profiles[name]; !ok {
		return false
	}
	delete(r.Profiles, name)
	if r.CurrentProfile == name {
		r.CurrentProfile = ""
	}
	return true
}

// Current returns the selected profile, or nil when none is selected.
func (r *Registry) Current() (string, *Profile) {
	if r.CurrentProfile == "" {
		return "", nil
	}
	return r.CurrentProfile, r.Profiles[r.CurrentProfile]
}

// TouchProfile records that a profile was just used.
func (r *Registry) TouchProfile(name string) {
	if p := r.Profiles[name]; p != nil {
		p.LastUsed = time.Now()
	}
}

// ProfileNames returns the profile names sorted alphabetically.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
