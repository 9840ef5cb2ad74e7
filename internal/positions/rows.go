package positions

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/notice"
)

// SaveMessageKey is the translation key of the notice shown after a save.
const SaveMessageKey = "qcadooView.message.saveMessage"

// RowStore is the subset of Client the row editor needs.
type RowStore interface {
	UpdateRow(ctx context.Context, id string, body []byte) error
	CreateRow(ctx context.Context, body []byte) error
	DeleteRow(ctx context.Context, id string) error
}

// Reloader re-fetches every row from the backend. Server-computed fields are
// only consistent after a full reload, so a save is never patched locally.
type Reloader interface {
	Reload(ctx context.Context) error
}

// ReloadFunc adapts a function to Reloader.
type ReloadFunc func(ctx context.Context) error

// Reload implements Reloader.
func (f ReloadFunc) Reload(ctx context.Context) error { return f(ctx) }

// RowLister fetches one page of a document's rows.
type RowLister interface {
	ListRows(ctx context.Context, formID string, req PageRequest) (*Page, error)
}

// PageLoader is the grid's Reloader: it re-fetches the current page of one
// document and hands it to OnPage.
type PageLoader struct {
	Lister  RowLister
	FormID  string
	Request PageRequest
	OnPage  func(*Page)

	mu   sync.Mutex
	last *Page
}

// NewPageLoader creates a loader for the first page of formID.
func NewPageLoader(lister RowLister, formID string, onPage func(*Page)) *PageLoader {
	return &PageLoader{
		Lister:  lister,
		FormID:  formID,
		Request: DefaultPageRequest(),
		OnPage:  onPage,
	}
}

// Reload implements Reloader.
func (l *PageLoader) Reload(ctx context.Context) error {
	l.mu.Lock()
	req := l.Request
	l.mu.Unlock()

	page, err := l.Lister.ListRows(ctx, l.FormID, req)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.last = page
	l.mu.Unlock()

	if l.OnPage != nil {
		l.OnPage(page)
	}
	return nil
}

// SetRequest replaces the paging, sorting and filter parameters used by the
// next Reload.
func (l *PageLoader) SetRequest(req PageRequest) {
	l.mu.Lock()
	l.Request = req
	l.mu.Unlock()
}

// Last returns the most recently loaded page, or nil.
func (l *PageLoader) Last() *Page {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Translator resolves a message key to display text.
type Translator interface {
	Translate(key string) string
}

// RowEditor turns the grid's edit, add and delete intents into backend calls
// and reports the outcome as notices.
type RowEditor struct {
	Store      RowStore
	Reloader   Reloader
	Notifier   notice.Notifier
	Translator Translator
	Mode       ValidationMode
}

// NewRowEditor creates a row editor. A nil notifier discards notices.
func NewRowEditor(store RowStore, reloader Reloader, notifier notice.Notifier, translator Translator) *RowEditor {
	if notifier == nil {
		notifier = notice.Discard
	}
	return &RowEditor{
		Store:      store,
		Reloader:   reloader,
		Notifier:   notifier,
		Translator: translator,
	}
}

// Edit validates and submits an edited row, then reloads the grid.
func (e *RowEditor) Edit(ctx context.Context, pd PostData) error {
	id := pd.ID()
	if id == "" || id == NewRowID {
		err := NewClientValidationError(FieldID, "row has not been saved yet")
		e.fail(err)
		return err
	}
	if err := ValidateRow(pd, e.Mode); err != nil {
		e.fail(err)
		return err
	}

	body, err := pd.EditBody()
	if err != nil {
		return fmt.Errorf("failed to encode row %s: %w", id, err)
	}

	if err := e.Store.UpdateRow(ctx, id, body); err != nil {
		e.fail(err)
		return err
	}

	logging.Info("Row updated", zap.String("id", id))
	e.succeed()
	return e.reload(ctx)
}

// Add validates and submits a new row, then reloads the grid.
func (e *RowEditor) Add(ctx context.Context, pd PostData) error {
	if err := ValidateRow(pd, e.Mode); err != nil {
		e.fail(err)
		return err
	}

	body, err := pd.AddBody()
	if err != nil {
		return fmt.Errorf("failed to encode new row: %w", err)
	}

	if err := e.Store.CreateRow(ctx, body); err != nil {
		e.fail(err)
		return err
	}

	logging.Info("Row created", zap.String("document", pd[FieldDocument]))
	e.succeed()
	return e.reload(ctx)
}

// Delete removes a row, then reloads the grid.
func (e *RowEditor) Delete(ctx context.Context, id string) error {
	if err := e.Store.DeleteRow(ctx, id); err != nil {
		e.fail(err)
		return err
	}

	logging.Info("Row deleted", zap.String("id", id))
	return e.reload(ctx)
}

// Submit dispatches on the form's oper marker.
func (e *RowEditor) Submit(ctx context.Context, pd PostData) error {
	switch pd[FieldOper] {
	case OperAdd:
		return e.Add(ctx, pd)
	case OperDelete:
		return e.Delete(ctx, pd.ID())
	default:
		return e.Edit(ctx, pd)
	}
}

// Reload re-fetches the grid. A failure is shown as a notice.
func (e *RowEditor) Reload(ctx context.Context) error {
	return e.reload(ctx)
}

func (e *RowEditor) reload(ctx context.Context) error {
	if e.Reloader == nil {
		return nil
	}
	if err := e.Reloader.Reload(ctx); err != nil {
		e.fail(err)
		return fmt.Errorf("reload after save: %w", err)
	}
	return nil
}

func (e *RowEditor) succeed() {
	msg := SaveMessageKey
	if e.Translator != nil {
		msg = e.Translator.Translate(SaveMessageKey)
	}
	e.notifier().Notify(notice.Success(msg))
}

func (e *RowEditor) fail(err error) {
	if IsCanceled(err) {
		return
	}
	e.notifier().Notify(notice.Failure(UserMessage(err)))
}

func (e *RowEditor) notifier() notice.Notifier {
	if e.Notifier == nil {
		return notice.Discard
	}
	return e.Notifier
}
