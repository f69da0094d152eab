// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/coord"
	"github.com/joonake9644/public-api/internal/logging"
	"github.com/joonake9644/public-api/internal/ratelimit"
	"github.com/joonake9644/public-api/internal/validation"
)

// addressEndpoint is the upstream address-search path under the portal
// base URL.
const addressEndpoint = "/addrlink/addrLinkApi"

// addressItem is the typed view of one upstream address row. Upstream
// serves coordinates as strings in the unified grid (UTM-K).
type addressItem struct {
	RoadAddr  string `json:"roadAddr"`
	JibunAddr string `json:"jibunAddr"`
	ZipNo     string `json:"zipNo"`
	BdNm      string `json:"bdNm,omitempty"`
	EntX      string `json:"entX,omitempty"`
	EntY      string `json:"entY,omitempty"`

	// Converted is populated when coordinate conversion was requested
	// and the row carries a usable entrance point.
	Converted *coord.Point `json:"converted,omitempty"`
}

// addressData is the address search payload.
type addressData struct {
	Items      []addressItem     `json:"items"`
	Raw        any               `json:"raw,omitempty"`
	Pagination addressPagination `json:"pagination"`
}

type addressPagination struct {
	CurrentPage int `json:"currentPage"`
	NumOfRows   int `json:"numOfRows"`
}

// Address handles GET /api/address at the authenticated tier, proxying
// the portal address search through the response cache.
func (h *Handler) Address(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)

	if err := h.admit(w, r, ratelimit.TierAuthenticated); err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	req, err := parseAddressQuery(r)
	if err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	params := map[string]string{
		"keyword":      req.Keyword,
		"currentPage":  strconv.Itoa(req.PageNo),
		"countPerPage": strconv.Itoa(req.NumOfRows),
		"resultType":   "json",
	}

	env, err := h.client.GetCached(r.Context(), cache.TypeAddress, addressEndpoint, params)
	if err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	data := addressData{
		Items: decodeAddressItems(env.Data),
		Pagination: addressPagination{
			CurrentPage: req.PageNo,
			NumOfRows:   req.NumOfRows,
		},
	}
	if data.Items == nil {
		// Unknown payload shape: hand the raw document through rather
		// than dropping it.
		data.Items = []addressItem{}
		data.Raw = env.Data
	}

	if req.ConvertCoordinate {
		target := coord.Code(req.TargetSystem)
		if req.TargetSystem == "" {
			target = coord.WGS84
		}
		h.convertAddressItems(data.Items, target)
	}

	writeCachePolicy(w, cache.TypeAddress)
	rw.Envelope(http.StatusOK, envelopeWithData(env, data))
}

// decodeAddressItems extracts the typed rows out of the dynamic upstream
// payload. Returns nil when the shape is not recognized.
func decodeAddressItems(payload any) []addressItem {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil
	}

	// The portal wraps rows as {"results": {"juso": [...]}}.
	var wrapped struct {
		Results struct {
			Juso []addressItem `json:"juso"`
		} `json:"results"`
	}
	if err := json.Unmarshal(encoded, &wrapped); err == nil && wrapped.Results.Juso != nil {
		return wrapped.Results.Juso
	}

	// Some services serve the row list at the top level.
	var flat struct {
		Juso []addressItem `json:"juso"`
	}
	if err := json.Unmarshal(encoded, &flat); err == nil && flat.Juso != nil {
		return flat.Juso
	}

	return nil
}

// convertAddressItems converts each row's entrance point from the
// unified grid into the target system. Rows without usable coordinates
// are skipped.
func (h *Handler) convertAddressItems(items []addressItem, target coord.Code) {
	for i := range items {
		x, errX := strconv.ParseFloat(items[i].EntX, 64)
		y, errY := strconv.ParseFloat(items[i].EntY, 64)
		if errX != nil || errY != nil {
			continue
		}
		p, err := h.engine.Transform(coord.Point{X: x, Y: y}, coord.UTMK, target)
		if err != nil {
			logging.Warn().Err(err).Str("roadAddr", items[i].RoadAddr).
				Msg("Skipping address coordinate conversion")
			continue
		}
		items[i].Converted = &p
	}
}
