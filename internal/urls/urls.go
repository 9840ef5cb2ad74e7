package urls

import (
	"net/url"
	"strings"
)

// Route prefixes as mounted by the backend.
const (
	// IntegrationPrefix hosts the document positions resource.
	IntegrationPrefix = "/integration/rest"

	// RestPrefix hosts the shared dictionaries and lookup searches.
	RestPrefix = "/rest"

	// PositionsResource is the collection name for document positions.
	PositionsResource = "/documentPositions"

	// ChangeFeedPath is the websocket endpoint publishing row change events.
	ChangeFeedPath = "/ws/positions"
)

// Route templates, relative to the server root. "{id}" style placeholders are
// the gorilla/mux syntax used by the development backend.
const (
	GridConfigPath       = IntegrationPrefix + PositionsResource + "/gridConfig.html"
	UnitsPath            = RestPrefix + "/units"
	TypeOfPalletsPath    = RestPrefix + "/typeOfPallets"
	PositionsPath        = IntegrationPrefix + PositionsResource + ".html"
	PositionPath         = IntegrationPrefix + PositionsResource + "/{id}.html"
	ProductsPath         = RestPrefix + "/products"
	AdditionalCodesPath  = RestPrefix + "/additionalcodes"
	PalletNumbersPath    = RestPrefix + "/palletnumbers"
	StorageLocationsPath = IntegrationPrefix + PositionsResource + "/storagelocations.html"
	ProductUnitPath      = IntegrationPrefix + PositionsResource + "/unit/{product}.html"
)

// Endpoints builds absolute URLs against one backend base URL.
type Endpoints struct {
	base string
}

// New returns an Endpoints for base (scheme://host[:port][/context]).
// A trailing slash on base is ignored.
func New(base string) Endpoints {
	return Endpoints{base: strings.TrimRight(base, "/")}
}

// Base returns the normalized base URL.
func (e Endpoints) Base() string { return e.base }

// GridConfig is the display settings endpoint.
func (e Endpoints) GridConfig() string { return e.base + GridConfigPath }

// Units is the unit vocabulary endpoint.
func (e Endpoints) Units() string { return e.base + UnitsPath }

// TypeOfPallets is the pallet type vocabulary endpoint.
func (e Endpoints) TypeOfPallets() string { return e.base + TypeOfPalletsPath }

// Positions is the collection endpoint used to add a row.
func (e Endpoints) Positions() string { return e.base + PositionsPath }

// Position is the single-row endpoint used for edit and delete.
func (e Endpoints) Position(id string) string {
	return e.base + strings.Replace(PositionPath, "{id}", url.PathEscape(id), 1)
}

// DocumentRows is the row data endpoint for one document. It shares its
// shape with Position; the backend tells them apart by verb.
func (e Endpoints) DocumentRows(formID string) string {
	return e.Position(formID)
}

// ProductUnit returns the unit lookup endpoint for a product.
func (e Endpoints) ProductUnit(product string) string {
	return e.base + strings.Replace(ProductUnitPath, "{product}", url.PathEscape(product), 1)
}

// Products is the product lookup search endpoint.
func (e Endpoints) Products() string { return e.base + ProductsPath }

// AdditionalCodes is the additional code lookup search endpoint.
func (e Endpoints) AdditionalCodes() string { return e.base + AdditionalCodesPath }

// PalletNumbers is the pallet number lookup search endpoint.
func (e Endpoints) PalletNumbers() string { return e.base + PalletNumbersPath }

// StorageLocations is the storage location lookup search endpoint.
func (e Endpoints) StorageLocations() string { return e.base + StorageLocationsPath }

// ChangeFeed returns the websocket URL of the change feed (http→ws, https→wss).
func (e Endpoints) ChangeFeed() string {
	u := e.base + ChangeFeedPath
	switch {
	case strings.HasPrefix(u, "https://"):
		return "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		return "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u
}

// WithQuery appends query parameters to rawURL. Empty values are kept so the
// backend sees "query=" for an empty lookup search.
func WithQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + params.Encode()
}
