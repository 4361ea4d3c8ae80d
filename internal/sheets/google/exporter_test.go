package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/log"
)

func newTestExporter(t *testing.T, handler http.HandlerFunc) *Exporter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	e, err := New(context.Background(), Config{SpreadsheetID: "sheet-id", SheetName: "May's Export"}, log.Discard(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new exporter: %v", err)
	}
	return e
}

func TestAppendRows(t *testing.T) {
	var got gsheet.ValueRange
	var query string
	var path string
	e := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		path = r.URL.Path
		query = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"spreadsheetId":"sheet-id","updates":{"updatedRange":"'May''s Export'!A1:E2","updatedRows":2}}`))
	})

	rng, err := e.AppendRows(context.Background(), [][]string{
		{"Date", "Type", "Category", "Description", "Amount"},
		{"2024-05-05", "expense", "Rent", "=HYPERLINK(\"x\")", "1200"},
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if rng != "'May''s Export'!A1:E2" {
		t.Errorf("range = %q", rng)
	}
	if !strings.Contains(path, "/v4/spreadsheets/sheet-id/values/") || !strings.HasSuffix(path, ":append") {
		t.Errorf("path = %q", path)
	}
	if !strings.Contains(query, "valueInputOption=USER_ENTERED") || !strings.Contains(query, "insertDataOption=INSERT_ROWS") {
		t.Errorf("query = %q", query)
	}
	if len(got.Values) != 2 || got.Values[1][3] != `'=HYPERLINK("x")` || got.Values[1][4] != "1200" {
		t.Errorf("values = %v", got.Values)
	}
}

func TestAppendRowsAPIError(t *testing.T) {
	e := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"caller lacks permission"}}`))
	})
	if _, err := e.AppendRows(context.Background(), [][]string{{"a"}}); err == nil || !strings.Contains(err.Error(), "append rows") {
		t.Fatalf("expected wrapped API error, got %v", err)
	}
}

func TestAppendRowsEmpty(t *testing.T) {
	e := newTestExporter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})
	if rng, err := e.AppendRows(context.Background(), nil); rng != "" || err != nil {
		t.Fatalf("rng=%q err=%v", rng, err)
	}
}

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := New(context.Background(), Config{SpreadsheetID: "x"}, nil); err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New(context.Background(), Config{SpreadsheetID: "x", CredentialsFile: "/no/such/file.json"}, nil); err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCellValue(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"Rent":       "Rent",
		"=SUM(A1)":   "'=SUM(A1)",
		"+1":         "'+1",
		"@mention":   "'@mention",
		"2024-05-05": "2024-05-05",
	}
	for in, want := range cases {
		if got := cellValue(in); got != want {
			t.Errorf("cellValue(%q) = %q, want %q", in, got, want)
		}
	}
}
