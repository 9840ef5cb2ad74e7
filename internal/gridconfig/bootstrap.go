package gridconfig

import (
	"context"
	"fmt"

	"github.com/muurk/positions/internal/i18n"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/notice"
	"github.com/muurk/positions/internal/positions"
)

// Bootstrap step names, as they appear in logs and wrapped errors.
const (
	StepDisplaySettings = "display settings"
	StepTranslate       = "translate headers"
	StepUnits           = "units"
	StepPalletTypes     = "pallet types"
)

// Fetcher supplies the server-side configuration. *positions.Client
// implements it.
type Fetcher interface {
	DisplaySettings(ctx context.Context) (positions.DisplaySettings, error)
	Units(ctx context.Context) ([]positions.Option, error)
	PalletTypes(ctx context.Context) ([]positions.Option, error)
}

// Publisher receives the finished config. It is called at most once per Run
// and only with a frozen, fully enriched config.
type Publisher interface {
	Publish(cfg *GridConfig)
}

// PublishFunc adapts a function to Publisher.
type PublishFunc func(cfg *GridConfig)

// Publish implements Publisher.
func (f PublishFunc) Publish(cfg *GridConfig) { f(cfg) }

// Bootstrapper enriches a base config with server settings before the grid
// becomes interactive.
type Bootstrapper struct {
	Fetcher    Fetcher
	Translator positions.Translator
	Notifier   notice.Notifier
}

// NewBootstrapper creates a bootstrapper. A nil translator leaves labels
// untouched; a nil notifier discards failure notices.
func NewBootstrapper(fetcher Fetcher, translator positions.Translator, notifier notice.Notifier) *Bootstrapper {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &Bootstrapper{Fetcher: fetcher, Translator: translator, Notifier: notifier}
}

// Prepare runs the bootstrap steps strictly in order on a copy of base and
// returns the enriched copy. base itself is never modified. The first
// failing step aborts the whole bootstrap.
func (b *Bootstrapper) Prepare(ctx context.Context, base *GridConfig) (*GridConfig, error) {
	cfg := base.Clone()

	settings, err := b.Fetcher.DisplaySettings(ctx)
	if err = b.step(StepDisplaySettings, err); err != nil {
		return nil, err
	}
	if !settings.ShowStorageLocation {
		if err := cfg.HideColumn(positions.FieldStorageLocation); err != nil {
			return nil, b.step(StepDisplaySettings, err)
		}
	}

	if b.Translator != nil {
		err := cfg.TranslateLabels(func(label string) string {
			return b.Translator.Translate(i18n.ColumnKey(label))
		})
		if err = b.step(StepTranslate, err); err != nil {
			return nil, err
		}
	}

	units, err := b.Fetcher.Units(ctx)
	if err == nil {
		err = cfg.SetOptions(positions.FieldGivenUnit, units)
	}
	if err = b.step(StepUnits, err); err != nil {
		return nil, err
	}

	pallets, err := b.Fetcher.PalletTypes(ctx)
	if err == nil {
		err = cfg.SetOptions(positions.FieldTypeOfPallet, pallets)
	}
	if err = b.step(StepPalletTypes, err); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Run prepares the config, freezes it and hands it to pub. On failure the
// server message is shown through the notifier and nothing is published.
func (b *Bootstrapper) Run(ctx context.Context, base *GridConfig, pub Publisher) (*GridConfig, error) {
	cfg, err := b.Prepare(ctx, base)
	if err != nil {
		if b.Notifier != nil && !positions.IsCanceled(err) {
			b.Notifier.Notify(notice.Failure(positions.UserMessage(err)))
		}
		return nil, err
	}

	cfg.Freeze()
	if pub != nil {
		pub.Publish(cfg)
	}
	return cfg, nil
}

func (b *Bootstrapper) step(name string, err error) error {
	logging.LogBootstrapStep(name, err)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
