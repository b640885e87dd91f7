package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice"
	"github.com/ukaji3/xlinvoice-go/pkg/xlinvoice/template"
	"github.com/xuri/excelize/v2"
)

func newTestServer(t *testing.T, src template.Source) *Server {
	t.Helper()
	return New(xlinvoice.NewRenderer(src), nil)
}

func hqSource(t *testing.T) template.MemorySource {
	t.Helper()
	data, err := template.Scaffold(template.VariantHQ)
	if err != nil {
		t.Fatalf("Scaffold failed: %v", err)
	}
	return template.MemorySource{template.VariantHQ: data}
}

const renderBody = `{
  "invoiceNo": "INV-001",
  "invoiceDate": "5/3/2025",
  "destinationCountry": "JAPAN",
  "consignee": {"name": "ACME KK"},
  "items": [
    {"partNo": "P-1", "unit": "PCS", "quantity": 10, "unitPrice": 2, "packaging": 25, "palletCount": 1, "totalWeight": 88}
  ]
}`

func TestRenderEndpoint(t *testing.T) {
	s := newTestServer(t, hqSource(t))

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/ORD-7/documents?templateType=hq", strings.NewReader(renderBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="ORD-7.xlsx"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if got := rec.Header().Get("X-Template-Variant"); got != "hq" {
		t.Errorf("X-Template-Variant = %q", got)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	m := template.CellMapFor(template.VariantHQ)
	if got, _ := f.GetCellValue(template.SheetInvoice, m.Invoice.Anchors.OrderNo); got != "ORD-7" {
		t.Errorf("order anchor = %q", got)
	}
}

func TestRenderEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		body   string
		status int
		kind   string
	}{
		{"bad json", "/v1/orders/O/documents?templateType=hq", "{", http.StatusBadRequest, "InvalidInput"},
		{"unknown field", "/v1/orders/O/documents?templateType=hq", `{"invoiceNo":"I","bogus":1}`, http.StatusBadRequest, "InvalidInput"},
		{"missing invoice no", "/v1/orders/O/documents?templateType=hq", `{}`, http.StatusBadRequest, "InvalidInput"},
		{"missing template", "/v1/orders/O/documents?templateType=client", renderBody, http.StatusNotFound, "TemplateNotFound"},
	}

	s := newTestServer(t, hqSource(t))
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, tt.url, strings.NewReader(tt.body))
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		if rec.Code != tt.status {
			t.Errorf("%s: status = %d, expected %d", tt.name, rec.Code, tt.status)
			continue
		}
		var body errorBody
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Errorf("%s: bad error body: %v", tt.name, err)
			continue
		}
		if body.Kind != tt.kind {
			t.Errorf("%s: kind = %q, expected %q", tt.name, body.Kind, tt.kind)
		}
	}
}

func TestMalformedTemplateIs500(t *testing.T) {
	s := newTestServer(t, template.MemorySource{template.VariantHQ: []byte("garbage")})

	req := httptest.NewRequest(http.MethodPost, "/v1/orders/O/documents?templateType=hq", strings.NewReader(renderBody))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if rec.Header().Get("Content-Disposition") != "" {
		t.Error("error response must not carry a document")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, template.MemorySource{})
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
