package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"invoicedesk/internal/invoice"
	"invoicedesk/pkg/models"
)

func sampleRecords() []invoice.Record {
	return invoice.FlattenAll([]models.Invoice{
		{
			InvoiceNumber: "00001",
			Date:          "2025-01-15",
			Client:        models.ClientInfo{Name: "Sita \"Didi\" Gurung", Address: "Pokhara"},
			Items:         []models.LineItem{{ID: "1", Description: "IELTS Class", Amount: decimal.NewFromInt(6000)}},
			DiscountType:  models.DiscountPercentage,
			PaidAmount:    decimal.NewFromInt(6000),
		},
		{
			InvoiceNumber: "00002",
			Date:          "2025-01-16",
			Client:        models.ClientInfo{Name: "Hari", Address: "Kathmandu"},
			Items:         []models.LineItem{{ID: "1", Description: "Consultation", Amount: decimal.NewFromInt(1000)}},
			DiscountType:  models.DiscountPercentage,
		},
	})
}

func TestExtractSpreadsheetID(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{name: "edit url", url: "https://docs.google.com/spreadsheets/d/1AbC-d_9/edit#gid=0", want: "1AbC-d_9"},
		{name: "bare url", url: "https://docs.google.com/spreadsheets/d/xyz", want: "xyz"},
		{name: "not a sheet", url: "https://example.com/doc", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractSpreadsheetID(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordsToValues(t *testing.T) {
	rows := recordsToValues(sampleRecords())
	require.Len(t, rows, 2)
	require.Len(t, rows[0], len(invoice.RecordHeaders))

	assert.Equal(t, "00001", rows[0][0])
	assert.Equal(t, json.Number("6000"), rows[0][6])
	assert.Equal(t, "Paid", rows[0][11])
	assert.Equal(t, "Unpaid", rows[1][11])
	assert.Equal(t, "M", lastColumn())
}

func TestPayload(t *testing.T) {
	body, err := Payload(sampleRecords())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(body, "data="))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())

	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.PostForm.Get("data")), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Sita \"Didi\" Gurung", rows[0]["Client Name"])
	assert.Equal(t, float64(6000), rows[0]["Paid Amount"])
	assert.Equal(t, "1/16/2025", rows[1]["Date"])
}

func newAppsScript(t *testing.T, url string, retryMax int) *AppsScriptMirror {
	t.Helper()
	m, err := NewAppsScriptMirror(AppsScriptConfig{
		URL:          url,
		Timeout:      2 * time.Second,
		RetryMax:     retryMax,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	})
	require.NoError(t, err)
	return m
}

func TestAppsScriptMirror_Replace(t *testing.T) {
	var gotData string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = r.ParseForm()
		gotData = r.PostForm.Get("data")
		_, _ = io.WriteString(w, `{"result":"success"}`)
	}))
	defer srv.Close()

	err := newAppsScript(t, srv.URL, 0).Replace(context.Background(), sampleRecords())
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal([]byte(gotData), &rows))
	assert.Len(t, rows, 2)
}

func TestAppsScriptMirror_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := newAppsScript(t, srv.URL, 0).Replace(context.Background(), sampleRecords())
	require.Error(t, err)

	mirrorErr, ok := IsMirrorError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, mirrorErr.StatusCode)
}

func TestAppsScriptMirror_RetriesServerErrors(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newAppsScript(t, srv.URL, 2).Replace(context.Background(), sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestAppsScriptMirror_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newAppsScript(t, url, 0).Replace(context.Background(), sampleRecords())
	_, ok := IsMirrorError(err)
	assert.True(t, ok)
}

func TestNewAppsScriptMirror_RequiresURL(t *testing.T) {
	_, err := NewAppsScriptMirror(AppsScriptConfig{})
	assert.True(t, errors.Is(err, ErrMirrorNotConfigured))

	_, err = NewAppsScriptMirror(AppsScriptConfig{URL: "not a url"})
	assert.Error(t, err)
}

// fakeSheetsAPI answers the handful of Sheets v4 endpoints the mirror uses.
type fakeSheetsAPI struct {
	mu        sync.Mutex
	calls     []string
	headerRow bool
	written   map[string][][]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(path, "/v4/spreadsheets/sheet123"):
		f.calls = append(f.calls, "get-spreadsheet")
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet123","sheets":[{"properties":{"sheetId":7,"title":"Invoices"}}]}`)
	case r.Method == http.MethodGet && strings.Contains(path, "/values/"):
		f.calls = append(f.calls, "get-header")
		if f.headerRow {
			_, _ = io.WriteString(w, `{"range":"Invoices!A1:M1","values":[["Invoice No"]]}`)
			return
		}
		_, _ = io.WriteString(w, `{"range":"Invoices!A1:M1"}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "batch-update")
		_, _ = io.WriteString(w, `{}`)
	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var body struct {
			Values [][]any `json:"values"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		rangeSpec := path[strings.Index(path, "/values/")+len("/values/"):]
		f.calls = append(f.calls, "update "+rangeSpec)
		f.written[rangeSpec] = body.Values
		_, _ = io.WriteString(w, `{}`)
	default:
		http.NotFound(w, r)
	}
}

func newFakeSheets(t *testing.T, headerRow bool) (*Service, *fakeSheetsAPI) {
	t.Helper()
	api := &fakeSheetsAPI{headerRow: headerRow, written: map[string][][]any{}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := NewSheetsServiceWithOptions(context.Background(),
		"https://docs.google.com/spreadsheets/d/sheet123/edit", "",
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return svc, api
}

func TestService_ReplaceWithExistingHeader(t *testing.T) {
	svc, api := newFakeSheets(t, true)

	require.NoError(t, svc.Replace(context.Background(), sampleRecords()))

	assert.Equal(t, []string{"get-spreadsheet", "get-header", "clear", "update Invoices!A2"}, api.calls)
	rows := api.written["Invoices!A2"]
	require.Len(t, rows, 2)
	assert.Equal(t, "00001", rows[0][0])
	assert.Equal(t, float64(6000), rows[0][6])
}

func TestService_ReplaceWritesMissingHeader(t *testing.T) {
	svc, api := newFakeSheets(t, false)

	require.NoError(t, svc.Replace(context.Background(), nil))

	assert.Equal(t, []string{"get-spreadsheet", "get-header", "update Invoices!A1:M1", "batch-update", "clear"}, api.calls)
	header := api.written["Invoices!A1:M1"]
	require.Len(t, header, 1)
	assert.Len(t, header[0], len(invoice.RecordHeaders))
	assert.Equal(t, "Invoice No", header[0][0])
}
