package main

import (
	"bufio"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/muurk/positions/internal/config"
	"github.com/muurk/positions/internal/discovery"
	"github.com/muurk/positions/internal/i18n"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/notice"
	"github.com/muurk/positions/internal/positions"
)

// loadSettings resolves the settings a command runs with: defaults, the
// profile, POSITIONS_* variables, then command-line flags.
func loadSettings(ctx context.Context, needForm bool) (*config.Settings, error) {
	if _, err := config.LoadEnv(config.EnvFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return nil, err
	}

	overrides, err := config.ParseOverrides()
	if err != nil {
		return nil, err
	}
	if profileName != "" {
		overrides.Profile = profileName
	}

	s, err := config.Resolve(reg, overrides)
	if err != nil {
		return nil, err
	}

	if baseURL != "" {
		s.BaseURL = baseURL
	}
	if username != "" {
		s.Username = username
	}
	if locale != "" {
		s.Locale = locale
	}
	if strict {
		s.Validation = "strict"
	}
	if contextURL != "" {
		id, err := positions.FormIDFromURL(contextURL)
		if err != nil {
			return nil, fmt.Errorf("invalid --context-url: %w", err)
		}
		s.FormID = id
	}
	if formID != "" {
		s.FormID = formID
	}

	if s.BaseURL == "" && reg.Preferences != nil && reg.Preferences.AutoDiscover {
		url, err := discoverBackend(ctx, time.Duration(reg.Preferences.DiscoverTimeout)*time.Second)
		if err != nil {
			return nil, err
		}
		s.BaseURL = url
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	if needForm {
		if err := s.RequireFormID(); err != nil {
			return nil, err
		}
	}

	if s.Username != "" && s.Password == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := promptPassword(s.Username)
		if err != nil {
			return nil, err
		}
		s.Password = password
	}

	if s.Profile != "" {
		reg.TouchProfile(s.Profile)
		if err := reg.Save(); err != nil {
			logging.Debug("Could not record profile use", zap.Error(err))
		}
	}

	logging.Debug("Settings resolved",
		zap.String("profile", s.Profile),
		zap.String("base_url", s.BaseURL),
		zap.String("form_id", s.FormID),
		zap.String("validation", s.Validation))
	return s, nil
}

// discoverBackend browses the network when no backend URL is configured.
// Exactly one answering backend is used; several are an error.
func discoverBackend(ctx context.Context, timeout time.Duration) (string, error) {
	fmt.Fprintln(os.Stderr, "No backend URL configured, attempting auto-discovery...")

	scanner := discovery.NewScanner()
	if timeout > 0 {
		scanner.Timeout = timeout
	}
	backends, err := scanner.Scan(ctx)
	if err != nil {
		return "", fmt.Errorf("discovery failed: %w", err)
	}

	switch len(backends) {
	case 0:
		return "", fmt.Errorf("no backends found. Use --url or 'positions config add' to configure one")
	case 1:
		fmt.Fprintf(os.Stderr, "Found backend: %s\n\n", backends[0])
		return backends[0].BaseURL(), nil
	}

	fmt.Fprintf(os.Stderr, "Found %d backends:\n", len(backends))
	for i, b := range backends {
		fmt.Fprintf(os.Stderr, "%d. %s\n", i+1, b)
	}
	return "", fmt.Errorf("multiple backends found. Use --url to specify which one")
}

func promptPassword(user string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", user)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

// readLine reads one line from stdin without echo suppression.
func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newTranslator(s *config.Settings) *i18n.Translator {
	t, err := i18n.New(s.Locale)
	if err != nil {
		logging.Warn("Translations unavailable", zap.Error(err))
		return nil
	}
	return t
}

// newRowEditor returns an editor that reports to stdout. There is no grid to
// reload.
func newRowEditor(s *config.Settings) *positions.RowEditor {
	editor := positions.NewRowEditor(s.NewClient(), nil, printer, nil)
	if t := newTranslator(s); t != nil {
		editor.Translator = t
	}
	editor.Mode = s.ValidationMode()
	return editor
}

// printer shows success and info notices on stdout. Failures are returned
// as errors by the commands and printed once by main.
var printer = notice.Multi{
	notice.Log{},
	notice.Func(func(n notice.Notice) {
		switch n.Kind {
		case notice.KindSuccess:
			fmt.Printf("✓ %s\n", n.Content)
		case notice.KindInfo:
			fmt.Println(n.Content)
		}
	}),
}

// authHeader returns the Basic Auth header for the change feed dial.
func authHeader(user, password string) http.Header {
	if user == "" {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
	return http.Header{"Authorization": []string{"Basic " + token}}
}

// parseAssignments turns field=value arguments into form fields.
func parseAssignments(args []string) (positions.PostData, error) {
	pd := positions.PostData{}
	known := make(map[string]bool, len(positions.RowFields))
	for _, f := range positions.RowFields {
		known[f] = true
	}
	for _, arg := range args {
		field, value, ok := strings.Cut(arg, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid assignment %q (want field=value)", arg)
		}
		if !known[field] || field == positions.FieldID {
			return nil, fmt.Errorf("unknown field %q (valid: %s)", field, strings.Join(positions.RowFields[1:], ", "))
		}
		pd[field] = value
	}
	return pd, nil
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
