package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bargen/bargen-backend/internal/cart"
	"github.com/bargen/bargen-backend/pkg/auth"
)

type fakeCart struct {
	cart.Service
	selected    *cart.Insurance
	selectCalls int
}

func (f *fakeCart) SelectInsurance(_ context.Context, _ auth.Caller, insurance *cart.Insurance) (*cart.Insurance, error) {
	f.selectCalls++
	f.selected = insurance
	return insurance, nil
}

func (f *fakeCart) RecommendBestInsurance(total int64) *cart.Insurance {
	if total < 1000 {
		return nil
	}
	return &cart.Insurance{Name: "Standard", Premium: 100}
}

func TestSelectInsuranceNullClearsSelection(t *testing.T) {
	svc := &fakeCart{selected: &cart.Insurance{Name: "Basic"}}
	req := asUser(newRequest(http.MethodPut, "/api/v1/cart/insurance", `{"insurance":null}`), "alice")
	resp := httptest.NewRecorder()
	SelectInsurance(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.selectCalls != 1 || svc.selected != nil {
		t.Fatalf("expected selection cleared, got %+v after %d calls", svc.selected, svc.selectCalls)
	}
}

func TestSelectInsuranceForwardsOption(t *testing.T) {
	svc := &fakeCart{}
	body := `{"insurance":{"name":"Basic Deal Protection","details":"x","premium":4900,"coverageAmount":100000}}`
	req := asUser(newRequest(http.MethodPut, "/api/v1/cart/insurance", body), "alice")
	resp := httptest.NewRecorder()
	SelectInsurance(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if svc.selected == nil || svc.selected.Premium != 4900 {
		t.Fatalf("unexpected selection %+v", svc.selected)
	}
}

func TestRecommendInsuranceRequiresCartTotal(t *testing.T) {
	resp := httptest.NewRecorder()
	RecommendInsurance(&fakeCart{}, testLogger())(resp, newRequest(http.MethodGet, "/api/v1/insurance/recommendation", ""))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestRecommendInsuranceReturnsNullBelowThreshold(t *testing.T) {
	resp := httptest.NewRecorder()
	RecommendInsurance(&fakeCart{}, testLogger())(resp, newRequest(http.MethodGet, "/api/v1/insurance/recommendation?cartTotal=10", ""))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var out *cart.Insurance
	decodeData(t, resp, &out)
	if out != nil {
		t.Fatalf("expected no recommendation, got %+v", out)
	}

	resp = httptest.NewRecorder()
	RecommendInsurance(&fakeCart{}, testLogger())(resp, newRequest(http.MethodGet, "/api/v1/insurance/recommendation?cartTotal=5000", ""))
	decodeData(t, resp, &out)
	if out == nil || out.Name != "Standard" {
		t.Fatalf("expected Standard, got %+v", out)
	}
}
