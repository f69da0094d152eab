// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/joonake9644/public-api/internal/apierror"
	"github.com/joonake9644/public-api/internal/cache"
	"github.com/joonake9644/public-api/internal/coord"
	"github.com/joonake9644/public-api/internal/metrics"
	"github.com/joonake9644/public-api/internal/models"
	"github.com/joonake9644/public-api/internal/ratelimit"
	"github.com/joonake9644/public-api/internal/upstream"
	"github.com/joonake9644/public-api/internal/validation"
)

// transformData is the single-point transform payload.
type transformData struct {
	From        coord.Code  `json:"from"`
	To          coord.Code  `json:"to"`
	Input       coord.Point `json:"input"`
	Transformed coord.Point `json:"transformed"`
	Accuracy    string      `json:"accuracy"`
}

// transformBatchData is the batch transform payload.
type transformBatchData struct {
	From        coord.Code    `json:"from"`
	To          coord.Code    `json:"to"`
	Count       int           `json:"count"`
	Transformed []coord.Point `json:"transformed"`
}

// TransformGet handles GET /api/coordinate/transform at the anonymous
// tier. Results are cached under the coordinate type.
func (h *Handler) TransformGet(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)

	if err := h.admit(w, r, ratelimit.TierAnonymous); err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	req, err := parseTransformQuery(r)
	if err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	key := upstream.CacheKey("transform", map[string]string{
		"from": string(req.From),
		"to":   string(req.To),
		"x":    strconv.FormatFloat(req.P.X, 'f', -1, 64),
		"y":    strconv.FormatFloat(req.P.Y, 'f', -1, 64),
	})

	if result := h.store.Get(cache.TypeCoordinate, key); result.Hit {
		if data, ok := result.Value.(transformData); ok {
			writeCachePolicy(w, cache.TypeCoordinate)
			rw.Success(data, models.Bool(true))
			return
		}
	}

	out, err := h.engine.Transform(req.P, req.From, req.To)
	if err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}
	metrics.TransformsTotal.WithLabelValues(string(req.From), string(req.To)).Inc()

	data := transformData{
		From:        req.From,
		To:          req.To,
		Input:       req.P,
		Transformed: out,
		Accuracy:    coord.Accuracy,
	}
	if err := h.store.Set(cache.TypeCoordinate, key, data); err != nil {
		// A full cache never fails the transform.
		writeNoCache(w)
		rw.Success(data, models.Bool(false))
		return
	}

	writeCachePolicy(w, cache.TypeCoordinate)
	rw.Success(data, models.Bool(false))
}

// TransformPost handles POST /api/coordinate/transform at the
// authenticated tier: 1 to 100 points in one batch.
func (h *Handler) TransformPost(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)
	writeNoCache(w)

	if err := h.admit(w, r, ratelimit.TierAuthenticated); err != nil {
		rw.Error(err)
		return
	}

	var req transformBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.Error(apierror.Wrap(err, apierror.CodeSchemaValidation, "request body is not valid JSON"))
		return
	}
	if req.To == "" {
		req.To = string(coord.WGS84)
	}
	if err := validation.ValidateStruct(&req); err != nil {
		rw.Error(err)
		return
	}

	points := make([]coord.Point, len(req.Points))
	for i, bp := range req.Points {
		p, ok := bp.toPoint()
		if !ok {
			rw.Error(apierror.Newf(apierror.CodeValidation,
				"points[%d] needs either x/y or longitude/latitude", i))
			return
		}
		points[i] = p
	}

	out, err := h.engine.TransformBatch(points, coord.Code(req.From), coord.Code(req.To))
	if err != nil {
		rw.Error(err)
		return
	}
	metrics.TransformsTotal.WithLabelValues(req.From, req.To).Inc()

	rw.Success(transformBatchData{
		From:        coord.Code(req.From),
		To:          coord.Code(req.To),
		Count:       len(out),
		Transformed: out,
	}, models.Bool(false))
}

// systemInfo is one entry of the supported-systems listing.
type systemInfo struct {
	Code   coord.Code  `json:"code"`
	EPSG   int         `json:"epsg"`
	Unit   coord.Unit  `json:"unit"`
	Proj   string      `json:"proj"`
	XRange coord.Range `json:"xRange"`
	YRange coord.Range `json:"yRange"`
}

// Systems handles GET /api/coordinate/systems.
func (h *Handler) Systems(w http.ResponseWriter, r *http.Request) {
	rw := h.response(w, r)

	if err := h.admit(w, r, ratelimit.TierAnonymous); err != nil {
		writeNoCache(w)
		rw.Error(err)
		return
	}

	infos := make([]systemInfo, 0, len(h.engine.SupportedSystems()))
	for _, code := range h.engine.SupportedSystems() {
		s, _ := coord.Lookup(code)
		infos = append(infos, systemInfo{
			Code:   s.Code,
			EPSG:   s.EPSG,
			Unit:   s.Unit,
			Proj:   s.Proj,
			XRange: s.XRange,
			YRange: s.YRange,
		})
	}

	writeCachePolicy(w, cache.TypeStatic)
	rw.Success(map[string]any{"systems": infos, "count": len(infos)}, nil)
}
