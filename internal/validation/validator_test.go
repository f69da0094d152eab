// Public API Gateway - Korean Public Data Portal Gateway
// Copyright 2026 Joonake (joonake9644)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/joonake9644/public-api

package validation

import (
	"errors"
	"testing"

	"github.com/joonake9644/public-api/internal/apierror"
)

type searchRequest struct {
	Keyword   string `validate:"required,min=2"`
	PageNo    int    `validate:"min=1"`
	NumOfRows int    `validate:"min=1,max=100"`
	Target    string `validate:"omitempty,coordsystem"`
}

func TestValidateStructOK(t *testing.T) {
	req := searchRequest{Keyword: "서울시청", PageNo: 1, NumOfRows: 10}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestValidateStructFailures(t *testing.T) {
	tests := []struct {
		name string
		req  searchRequest
	}{
		{"missing keyword", searchRequest{PageNo: 1, NumOfRows: 10}},
		{"keyword too short", searchRequest{Keyword: "a", PageNo: 1, NumOfRows: 10}},
		{"page below one", searchRequest{Keyword: "ab", PageNo: 0, NumOfRows: 10}},
		{"rows above cap", searchRequest{Keyword: "ab", PageNo: 1, NumOfRows: 500}},
		{"bad coord system", searchRequest{Keyword: "ab", PageNo: 1, NumOfRows: 10, Target: "EPSG:9999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var apiErr *apierror.Error
			if !errors.As(err, &apiErr) || apiErr.Code != apierror.CodeValidation {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
			if apiErr.Details == nil {
				t.Error("expected per-field details")
			}
		})
	}
}

func TestCoordSystemValidator(t *testing.T) {
	ok := searchRequest{Keyword: "ab", PageNo: 1, NumOfRows: 10, Target: "GRS80_CENTRAL"}
	if err := ValidateStruct(&ok); err != nil {
		t.Errorf("GRS80_CENTRAL should validate: %v", err)
	}
}
