package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/positions/internal/changefeed"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/notice"
)

// Run shows the grid editor until the user quits or ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	if opts.Backend == nil {
		return errors.New("no backend configured")
	}
	if opts.FormID == "" {
		return errors.New("no document selected")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	b := newBridge(nil)
	m := newModel(ctx, opts, b)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	b.setSend(p.Send)

	if opts.ChangeFeedURL != "" {
		reload := changefeed.ReloadOnChange(m.loader)
		sub := changefeed.NewSubscriber(opts.ChangeFeedURL, opts.FormID, func(ctx context.Context, e changefeed.Event) {
			b.Notify(notice.Info(fmt.Sprintf("Position %s %s elsewhere", e.ID, e.Event)))
			reload(ctx, e)
		})
		sub.Header = opts.ChangeFeedHeader
		go func() {
			if err := sub.Run(ctx); err != nil {
				logging.Warn("Change feed unavailable", zap.Error(err))
			}
		}()
	}

	_, err := p.Run()
	cancel()
	m.Close()

	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("grid editor failed: %w", err)
	}
	return nil
}
