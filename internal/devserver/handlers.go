package devserver

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/muurk/positions/internal/changefeed"
	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/urls"
)

// maxBodySize caps accepted request bodies.
const maxBodySize = 1 << 20

type handlers struct {
	store *Store
	hub   *changefeed.Hub
}

// NewRouter mounts every backend route under contextRoot ("" for the server
// root). Credentials enable HTTP Basic Auth when username is non-empty.
func NewRouter(store *Store, hub *changefeed.Hub, contextRoot, username, password string) *mux.Router {
	h := &handlers{store: store, hub: hub}

	root := mux.NewRouter()
	r := root
	if prefix := "/" + strings.Trim(contextRoot, "/"); prefix != "/" {
		r = root.PathPrefix(prefix).Subrouter()
	}

	r.Use(logRequests)
	if username != "" {
		r.Use(basicAuth(username, password))
	}

	// Fixed routes first: they share the {id}.html shape.
	r.HandleFunc(urls.GridConfigPath, h.gridConfig).Methods(http.MethodGet)
	r.HandleFunc(urls.StorageLocationsPath, h.search(func(s *Store) []positions.Candidate { return s.StorageLocations })).Methods(http.MethodGet)
	r.HandleFunc(urls.ProductUnitPath, h.productUnit).Methods(http.MethodGet)
	r.HandleFunc(urls.PositionsPath, h.createRow).Methods(http.MethodPut)
	r.HandleFunc(urls.PositionPath, h.listRows).Methods(http.MethodGet)
	r.HandleFunc(urls.PositionPath, h.updateRow).Methods(http.MethodPut)
	r.HandleFunc(urls.PositionPath, h.deleteRow).Methods(http.MethodDelete)

	r.HandleFunc(urls.UnitsPath, h.options(func(s *Store) []positions.Option { return s.Units })).Methods(http.MethodGet)
	r.HandleFunc(urls.TypeOfPalletsPath, h.options(func(s *Store) []positions.Option { return s.PalletTypes })).Methods(http.MethodGet)
	r.HandleFunc(urls.ProductsPath, h.search(func(s *Store) []positions.Candidate { return s.Products })).Methods(http.MethodGet)
	r.HandleFunc(urls.AdditionalCodesPath, h.search(func(s *Store) []positions.Candidate { return s.AdditionalCodes })).Methods(http.MethodGet)
	r.HandleFunc(urls.PalletNumbersPath, h.search(func(s *Store) []positions.Candidate { return s.PalletNumbers })).Methods(http.MethodGet)

	if hub != nil {
		r.Handle(urls.ChangeFeedPath, hub)
	}

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, http.StatusNotFound, "no route for "+req.URL.Path)
	})
	return root
}

func (h *handlers) gridConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, positions.DisplaySettings{ShowStorageLocation: h.store.ShowStorageLocation})
}

func (h *handlers) options(get func(*Store) []positions.Option) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, get(h.store))
	}
}

func (h *handlers) search(get func(*Store) []positions.Candidate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Search(get(h.store), r.URL.Query().Get("query")))
	}
}

func (h *handlers) productUnit(w http.ResponseWriter, r *http.Request) {
	unit := h.store.ProductUnit(mux.Vars(r)["product"])
	writeJSON(w, http.StatusOK, unit)
}

func (h *handlers) listRows(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	q := Query{
		Document:  mux.Vars(r)["id"],
		Page:      cast.ToInt(params.Get("page")),
		Rows:      cast.ToInt(params.Get("rows")),
		SortField: params.Get("sidx"),
		SortOrder: params.Get("sord"),
	}
	if params.Get("_search") == "true" {
		q.Filters = map[string]string{}
		for _, field := range positions.RowFields {
			if v := params.Get(field); v != "" {
				q.Filters[field] = v
			}
		}
	}
	writeJSON(w, http.StatusOK, h.store.List(q))
}

func (h *handlers) createRow(w http.ResponseWriter, r *http.Request) {
	pd, err := readPostData(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	delete(pd, positions.FieldID)

	row, err := h.store.Create(pd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(changefeed.EventCreated, row)
	writeJSON(w, http.StatusOK, row)
}

func (h *handlers) updateRow(w http.ResponseWriter, r *http.Request) {
	pd, err := readPostData(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	row, err := h.store.Update(mux.Vars(r)["id"], pd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(changefeed.EventUpdated, row)
	writeJSON(w, http.StatusOK, row)
}

func (h *handlers) deleteRow(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		writeError(w, http.StatusBadRequest, "delete takes no body")
		return
	}

	row, err := h.store.Delete(mux.Vars(r)["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.publish(changefeed.EventDeleted, row)
	w.WriteHeader(http.StatusOK)
}

func (h *handlers) publish(event string, row positions.RowRecord) {
	if h.hub == nil {
		return
	}
	h.hub.Publish(changefeed.Event{Event: event, ID: row.ID, Document: row.Document})
}

// readPostData decodes a row form. The grid's oper marker must have been
// stripped by the client.
func readPostData(r *http.Request) (positions.PostData, error) {
	var raw map[string]any
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid row body: %v", err)
	}
	if _, ok := raw[positions.FieldOper]; ok {
		return nil, errors.New("unexpected field oper")
	}
	pd := make(positions.PostData, len(raw))
	for k, v := range raw {
		pd[k] = cast.ToString(v)
	}
	return pd, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, "Position not found")
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Warn("Failed to write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// statusRecorder captures the response status for the request log. It keeps
// http.Hijacker so websocket upgrades pass through.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.LogHTTPRequest(r.RemoteAddr, r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func basicAuth(username, password string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != username || p != password {
				w.Header().Set("WWW-Authenticate", `Basic realm="positions"`)
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
