package positions

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const mockPageResponse = `{"page":"1","total":1,"records":"2","rows":[
{"id":7,"document":42,"product":"P-100","additional_code":"","quantity":"5.5","unit":"kg","givenquantity":null,"givenunit":"","conversion":1,"expirationdate":"2026-01-31","pallet":"","type_of_pallet":"","storage_location":"A-01"},
{"id":"8","document":"42","product":"P-200","quantity":3,"unit":"szt"}]}`

func TestNewClient(t *testing.T) {
	client := NewClient("http://erp.local:8080/")

	if client.Endpoints.Base() != "http://erp.local:8080" {
		t.Errorf("Base = %s, want http://erp.local:8080", client.Endpoints.Base())
	}
	if client.HTTPClient == nil {
		t.Fatal("HTTPClient should not be nil")
	}
	if client.HTTPClient.Jar == nil {
		t.Error("HTTPClient should carry a cookie jar")
	}
	if client.HTTPClient.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", client.HTTPClient.Timeout, DefaultTimeout)
	}
	if !strings.HasPrefix(client.UserAgent, "positions-client/") {
		t.Errorf("UserAgent = %q", client.UserAgent)
	}
}

func TestSetTimeoutAndAuth(t *testing.T) {
	client := NewClient("http://erp.local")
	client.SetTimeout(3 * time.Second)
	client.SetAuth("admin", "secret")

	if client.HTTPClient.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", client.HTTPClient.Timeout)
	}
	if client.Username != "admin" || client.Password != "secret" {
		t.Errorf("auth = %s/%s, want admin/secret", client.Username, client.Password)
	}
}

func TestDisplaySettings(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"true", `{"showstoragelocation":true}`, true},
		{"false", `{"showstoragelocation":false}`, false},
		{"string true", `{"showstoragelocation":"true"}`, true},
		{"missing", `{}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/integration/rest/documentPositions/gridConfig.html" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			settings, err := NewClient(server.URL).DisplaySettings(context.Background())
			if err != nil {
				t.Fatalf("DisplaySettings() error = %v", err)
			}
			if settings.ShowStorageLocation != tt.want {
				t.Errorf("ShowStorageLocation = %v, want %v", settings.ShowStorageLocation, tt.want)
			}
		})
	}
}

func TestUnitsKeepsServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/units" {
			t.Errorf("path = %s, want /rest/units", r.URL.Path)
		}
		w.Write([]byte(`[{"key":2,"value":"szt"},{"key":"1","value":"kg"}]`))
	}))
	defer server.Close()

	units, err := NewClient(server.URL).Units(context.Background())
	if err != nil {
		t.Fatalf("Units() error = %v", err)
	}
	want := []Option{{Key: "2", Value: "szt"}, {Key: "1", Value: "kg"}}
	if len(units) != len(want) {
		t.Fatalf("len(units) = %d, want %d", len(units), len(want))
	}
	for i := range want {
		if units[i] != want[i] {
			t.Errorf("units[%d] = %+v, want %+v", i, units[i], want[i])
		}
	}
}

func TestListRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/integration/rest/documentPositions/42.html" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("rows") != "150" || q.Get("sidx") != "id" || q.Get("sord") != "asc" || q.Get("page") != "1" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		w.Write([]byte(mockPageResponse))
	}))
	defer server.Close()

	page, err := NewClient(server.URL).ListRows(context.Background(), "42", DefaultPageRequest())
	if err != nil {
		t.Fatalf("ListRows() error = %v", err)
	}
	if page.Page != 1 || page.Records != 2 || len(page.Rows) != 2 {
		t.Fatalf("page = %+v", page)
	}
	if page.Rows[0].ID != "7" || page.Rows[0].Document != "42" {
		t.Errorf("row 0 identity = %s/%s", page.Rows[0].ID, page.Rows[0].Document)
	}
	if page.Rows[0].Quantity.String() != "5.5" {
		t.Errorf("row 0 quantity = %s, want 5.5", page.Rows[0].Quantity.String())
	}
	if page.Rows[0].GivenQuantity.Valid {
		t.Error("row 0 given quantity should be null")
	}
}

func TestUpdateRow(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %s", ct)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	pd := PostData{FieldOper: OperEdit, FieldID: "7", FieldQuantity: "3"}
	body, _ := pd.EditBody()

	if err := NewClient(server.URL).UpdateRow(context.Background(), "7", body); err != nil {
		t.Fatalf("UpdateRow() error = %v", err)
	}
	if gotMethod != http.MethodPut {
		t.Errorf("method = %s, want PUT", gotMethod)
	}
	if gotPath != "/integration/rest/documentPositions/7.html" {
		t.Errorf("path = %s", gotPath)
	}
	if _, ok := gotBody[FieldOper]; ok {
		t.Error("body should not contain oper")
	}
	if gotBody[FieldID] != "7" {
		t.Errorf("body id = %q, want 7", gotBody[FieldID])
	}
}

func TestCreateRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if r.URL.Path != "/integration/rest/documentPositions.html" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	body, _ := NewAddPostData("42").AddBody()
	if err := NewClient(server.URL).CreateRow(context.Background(), body); err != nil {
		t.Fatalf("CreateRow() error = %v", err)
	}
}

func TestDeleteRowSendsEmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if r.URL.Path != "/integration/rest/documentPositions/9.html" {
			t.Errorf("path = %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) != 0 {
			t.Errorf("body = %q, want empty", data)
		}
		if r.Header.Get("Content-Type") != "" {
			t.Errorf("Content-Type = %q, want none", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := NewClient(server.URL).DeleteRow(context.Background(), "9"); err != nil {
		t.Fatalf("DeleteRow() error = %v", err)
	}
}

func TestServerValidationMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"Product is required"}`))
	}))
	defer server.Close()

	err := NewClient(server.URL).UpdateRow(context.Background(), "1", []byte(`{}`))
	if err == nil {
		t.Fatal("UpdateRow() should fail")
	}
	if !IsServerValidationError(err) {
		t.Fatalf("error kind = %v, want server validation", err)
	}
	if got := UserMessage(err); got != "Product is required" {
		t.Errorf("UserMessage = %q, want verbatim server message", got)
	}
}

func TestHTTPErrorWithoutMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>boom</html>`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Units(context.Background())
	if !IsHTTPError(err) {
		t.Fatalf("error = %v, want HTTP error", err)
	}
	if got := UserMessage(err); got != "Server error (HTTP 500)" {
		t.Errorf("UserMessage = %q", got)
	}
}

func TestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).PalletTypes(context.Background())
	if !IsParseError(err) {
		t.Fatalf("error = %v, want parse error", err)
	}
}

func TestBasicAuthSent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetAuth("admin", "secret")
	if _, err := client.Units(context.Background()); err != nil {
		t.Fatalf("Units() error = %v", err)
	}
}

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/palletnumbers" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("query"); q != "PL 1" {
			t.Errorf("query = %q, want %q", q, "PL 1")
		}
		w.Write([]byte(`[{"id":1,"number":"PL100"},{"id":2,"number":"PL101"}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.Search(context.Background(), client.Endpoints.PalletNumbers(), "PL 1")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 || got[0].Label() != "PL100" || got[1].ID != "2" {
		t.Errorf("Search() = %+v", got)
	}
}

func TestSearchCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`[]`))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL)
	_, err := client.Search(ctx, client.Endpoints.Products(), "x")
	if !IsCanceled(err) {
		t.Fatalf("error = %v, want canceled", err)
	}
}

func TestProductUnit(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bare", "kg\n", "kg"},
		{"quoted", `"szt"`, "szt"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/integration/rest/documentPositions/unit/P-1.html" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			got, err := NewClient(server.URL).ProductUnit(context.Background(), "P-1")
			if err != nil {
				t.Fatalf("ProductUnit() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ProductUnit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Units(context.Background())
	if !IsNetworkError(err) {
		t.Fatalf("error = %v, want network error", err)
	}
}
