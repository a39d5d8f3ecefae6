package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/shopspring/decimal"

	"github.com/meenmo/curvelib/bootstrap"
	"github.com/meenmo/curvelib/marketdata"
	"github.com/meenmo/curvelib/store"
)

func testServer() *server {
	src := marketdata.NewStaticSource([]marketdata.Quote{
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 1, Value: decimal.NewFromFloat(0.030)},
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 2, Value: decimal.NewFromFloat(0.032)},
		{CurveID: "usd-ois", Kind: "OIS", Maturity: 3, Value: decimal.NewFromFloat(0.034)},
		{CurveID: "usd-3m", Kind: "IRS", Maturity: 2, Value: decimal.NewFromFloat(0.035)},
		{CurveID: "usd-3m", Kind: "IRS", Maturity: 3, Value: decimal.NewFromFloat(0.037)},
		{CurveID: "broken", Kind: "OIS", Maturity: 1, Value: decimal.NewFromFloat(-2.0)},
	})
	return newServer(store.NewMemoryStore(), src, bootstrap.NewBuilder(bootstrap.DefaultConfig(), 0))
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBuildAndQueryCurve(t *testing.T) {
	t.Parallel()

	router := testServer().routes()

	rec := doRequest(t, router, "POST", "/api/v1/curves",
		`{"id":"usd","date":"2024-03-15","discount":"usd-ois","forwards":{"3M":"usd-3m"}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /curves = %d: %s", rec.Code, rec.Body.String())
	}
	var snap store.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != "usd" || len(snap.Forwards) != 1 {
		t.Fatalf("snapshot = %q with %d forwards", snap.ID, len(snap.Forwards))
	}

	rec = doRequest(t, router, "GET", "/api/v1/curves", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /curves = %d", rec.Code)
	}
	var list map[string][]string
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list["curves"]) != 1 || list["curves"][0] != "usd" {
		t.Fatalf("curves = %v", list["curves"])
	}

	rec = doRequest(t, router, "GET", "/api/v1/curves/usd", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /curves/usd = %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/v1/curves/usd/discount-factor?t=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET discount-factor = %d: %s", rec.Code, rec.Body.String())
	}
	var dfResp struct {
		T              float64 `json:"t"`
		DiscountFactor float64 `json:"discount_factor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &dfResp); err != nil {
		t.Fatalf("decode df: %v", err)
	}
	if want := 1.0 / 1.030; math.Abs(dfResp.DiscountFactor-want) > 1e-9 {
		t.Fatalf("df(1) = %.12f, want %.12f", dfResp.DiscountFactor, want)
	}

	rec = doRequest(t, router, "GET", "/api/v1/curves/usd/zero-rate?t=1&tenor=3M", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET zero-rate = %d: %s", rec.Code, rec.Body.String())
	}
	var zeroResp struct {
		Tenor    string  `json:"tenor"`
		ZeroRate float64 `json:"zero_rate"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &zeroResp); err != nil {
		t.Fatalf("decode zero: %v", err)
	}
	if zeroResp.Tenor != "3M" || zeroResp.ZeroRate <= 0 {
		t.Fatalf("zero response = %+v", zeroResp)
	}

	rec = doRequest(t, router, "DELETE", "/api/v1/curves/usd", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE = %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/v1/curves/usd", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("GET after delete = %d", rec.Code)
	}
}

func TestBuildValidation(t *testing.T) {
	t.Parallel()

	router := testServer().routes()

	cases := []struct {
		name string
		body string
		code int
	}{
		{"missing discount id", `{}`, http.StatusBadRequest},
		{"bad date", `{"discount":"usd-ois","date":"15/03/2024"}`, http.StatusBadRequest},
		{"unknown strip", `{"discount":"eur-ois"}`, http.StatusNotFound},
		{"diverging quotes", `{"discount":"broken"}`, http.StatusUnprocessableEntity},
		{"invalid body", `{"discount"`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := doRequest(t, router, "POST", "/api/v1/curves", tc.body)
			if rec.Code != tc.code {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.code, rec.Body.String())
			}
		})
	}
}

func TestPointQueryValidation(t *testing.T) {
	t.Parallel()

	router := testServer().routes()
	rec := doRequest(t, router, "POST", "/api/v1/curves", `{"id":"usd","discount":"usd-ois"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST = %d", rec.Code)
	}

	rec = doRequest(t, router, "GET", "/api/v1/curves/usd/discount-factor", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing t = %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/v1/curves/usd/discount-factor?t=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad t = %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/v1/curves/usd/discount-factor?t=-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("negative t = %d", rec.Code)
	}
	rec = doRequest(t, router, "GET", "/api/v1/curves/missing/discount-factor?t=1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing snapshot = %d", rec.Code)
	}
}

func TestZstdMiddleware(t *testing.T) {
	t.Parallel()

	router := testServer().routes()
	handler := zstdMiddleware(router)

	rec := doRequest(t, handler, "POST", "/api/v1/curves", `{"id":"usd","discount":"usd-ois"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST = %d", rec.Code)
	}

	req := httptest.NewRequest("GET", "/api/v1/curves/usd", nil)
	req.Header.Set("Accept-Encoding", "zstd")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Content-Encoding"); got != "zstd" {
		t.Fatalf("Content-Encoding = %q, want zstd", got)
	}
	dec, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("zstd.NewReader: %v", err)
	}
	defer dec.Close()
	plain, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !strings.Contains(string(plain), `"id":"usd"`) {
		t.Fatalf("decompressed body = %s", plain)
	}

	// Clients that do not ask for zstd get identity responses.
	rec = doRequest(t, handler, "GET", "/api/v1/curves/usd", "")
	if got := rec.Header().Get("Content-Encoding"); got != "" {
		t.Fatalf("Content-Encoding = %q, want none", got)
	}
	if !strings.Contains(rec.Body.String(), `"id":"usd"`) {
		t.Fatalf("plain body = %s", rec.Body.String())
	}
}
