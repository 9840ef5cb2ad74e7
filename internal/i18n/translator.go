// Package i18n resolves the message keys used by the grid (column headers,
// notices, pager text) to display text in the configured locale.
package i18n

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/iota-uz/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/muurk/positions/internal/logging"
)

// ColumnKeyPrefix prefixes the translation key of every column header.
const ColumnKeyPrefix = "qcadooView.gridColumn."

// PagerKey formats the pager line; it takes Page, Total and Records.
const PagerKey = "qcadooView.grid.pager"

// DefaultLocale is used when no locale is configured.
const DefaultLocale = "en"

//go:embed locales/*.yaml
var localeFS embed.FS

// ColumnKey returns the translation key of a column header.
func ColumnKey(name string) string {
	return ColumnKeyPrefix + name
}

// LoadBundle returns a bundle holding every embedded locale.
func LoadBundle() (*i18n.Bundle, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, entry := range entries {
		name := path.Join("locales", entry.Name())
		data, err := localeFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return bundle, nil
}

// Translator resolves message keys for one locale. Unknown keys resolve to
// themselves so a missing translation is visible rather than blank.
type Translator struct {
	locale    string
	localizer *i18n.Localizer
}

// New returns a translator for locale (e.g. "pl", "en-US"). An empty locale
// means DefaultLocale.
func New(locale string) (*Translator, error) {
	bundle, err := LoadBundle()
	if err != nil {
		return nil, err
	}
	return NewWithBundle(bundle, locale), nil
}

// NewWithBundle returns a translator backed by an existing bundle.
func NewWithBundle(bundle *i18n.Bundle, locale string) *Translator {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	return &Translator{
		locale:    locale,
		localizer: i18n.NewLocalizer(bundle, locale, DefaultLocale),
	}
}

// Locale returns the requested locale.
func (t *Translator) Locale() string { return t.locale }

// Translate returns the text for key, or key itself when it is unknown.
func (t *Translator) Translate(key string) string {
	return t.TranslateWith(key, nil)
}

// TranslateWith renders a templated message with data.
func (t *Translator) TranslateWith(key string, data map[string]any) string {
	text, err := t.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil || text == "" {
		logging.Debug("Missing translation", zap.String("key", key), zap.String("locale", t.locale))
		return key
	}
	return text
}

// Column returns the header text of a column.
func (t *Translator) Column(name string) string {
	return t.Translate(ColumnKey(name))
}

// Pager formats the pager line.
func (t *Translator) Pager(page, total, records int) string {
	return t.TranslateWith(PagerKey, map[string]any{
		"Page":    page,
		"Total":   total,
		"Records": records,
	})
}
