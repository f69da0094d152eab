// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
)

// fakePortal serves a minimal address-search payload in the portal's
// wrapped shape and counts hits.
func fakePortal(calls *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck
		w.Write([]byte(`{
			"results": {
				"common": {"totalCount": "1", "errorCode": "0"},
				"juso": [{
					"roadAddr": "서울특별시 중구 세종대로 110",
					"jibunAddr": "서울특별시 중구 태평로1가 31",
					"zipNo": "04524",
					"bdNm": "서울특별시청",
					"entX": "953898.5",
					"entY": "1952172.6"
				}]
			}
		}`))
	}))
}

func TestAddressSearch(t *testing.T) {
	var calls atomic.Int32
	portal := fakePortal(&calls)
	defer portal.Close()

	_, router := newTestStack(t, portal.URL)

	rec := get(router, "/api/address?keyword=%EC%84%9C%EC%9A%B8%EC%8B%9C%EC%B2%AD&pageNo=1&numOfRows=10")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	if !env.Success {
		t.Fatalf("expected success: %s", rec.Body.String())
	}
	if env.Metadata.Cached == nil || *env.Metadata.Cached {
		t.Error("first search must report cached=false")
	}

	var data struct {
		Items []struct {
			RoadAddr string `json:"roadAddr"`
			ZipNo    string `json:"zipNo"`
		} `json:"items"`
		Pagination struct {
			CurrentPage int `json:"currentPage"`
			NumOfRows   int `json:"numOfRows"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if data.Pagination.CurrentPage != 1 || data.Pagination.NumOfRows != 10 {
		t.Errorf("pagination = %+v", data.Pagination)
	}
	if len(data.Items) != 1 || data.Items[0].ZipNo != "04524" {
		t.Errorf("items = %+v", data.Items)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "public, max-age=86400" {
		t.Errorf("Cache-Control = %q, want public, max-age=86400", cc)
	}
}

func TestAddressSearchCachedSecondCall(t *testing.T) {
	var calls atomic.Int32
	portal := fakePortal(&calls)
	defer portal.Close()

	_, router := newTestStack(t, portal.URL)
	target := "/api/address?keyword=seoul&pageNo=1&numOfRows=10"

	get(router, target)
	rec := get(router, target)

	env := decodeEnvelope(t, rec)
	if env.Metadata.Cached == nil || !*env.Metadata.Cached {
		t.Error("second identical search must report cached=true")
	}
	if calls.Load() != 1 {
		t.Errorf("portal calls = %d, want 1", calls.Load())
	}
}

func TestAddressSearchValidation(t *testing.T) {
	_, router := newTestStack(t, "http://unused.invalid")

	tests := []struct {
		name   string
		target string
	}{
		{"keyword too short", "/api/address?keyword=a"},
		{"missing keyword", "/api/address"},
		{"bad pageNo", "/api/address?keyword=seoul&pageNo=zero"},
		{"rows above cap", "/api/address?keyword=seoul&numOfRows=500"},
		{"bad target system", "/api/address?keyword=seoul&targetSystem=TM42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(router, tt.target)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			env := decodeEnvelope(t, rec)
			if env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
				t.Errorf("expected VALIDATION_ERROR: %s", rec.Body.String())
			}
		})
	}
}

func TestAddressSearchConvertCoordinate(t *testing.T) {
	var calls atomic.Int32
	portal := fakePortal(&calls)
	defer portal.Close()

	_, router := newTestStack(t, portal.URL)

	rec := get(router, "/api/address?keyword=seoul&convertCoordinate=true&targetSystem=WGS84")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var data struct {
		Items []struct {
			Converted *struct {
				X float64 `json:"x"`
				Y float64 `json:"y"`
			} `json:"converted"`
		} `json:"items"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatal(err)
	}
	if len(data.Items) != 1 || data.Items[0].Converted == nil {
		t.Fatalf("expected converted coordinates: %s", env.Data)
	}
	// The UTM-K entrance point sits in central Seoul.
	got := data.Items[0].Converted
	if got.X < 126 || got.X > 128 || got.Y < 37 || got.Y > 38 {
		t.Errorf("converted = (%f, %f), want central Seoul in WGS84", got.X, got.Y)
	}
}

func TestAddressUpstreamFailure(t *testing.T) {
	portal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer portal.Close()

	_, router := newTestStack(t, portal.URL)

	rec := get(router, "/api/address?keyword=seoul")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != "EXTERNAL_API_ERROR" {
		t.Errorf("expected EXTERNAL_API_ERROR: %s", rec.Body.String())
	}
}
