package types

import (
	"testing"
)

func TestAgeTimeValidateVariants(t *testing.T) {
	valid := []AgeTime{AgeDays(0), AgeMonths(3), AgeYears(2), AgeBrandNew(), AgeUnknown()}
	for _, v := range valid {
		if err := v.Validate(); err != nil {
			t.Fatalf("expected %+v valid, got %v", v, err)
		}
	}

	neg := int64(-1)
	invalid := []AgeTime{
		{Kind: AgeKindDays},
		{Kind: AgeKindYears, Value: &neg},
		{Kind: AgeKindBrandNew, Value: &neg},
		{Kind: "decades"},
		{},
	}
	for _, v := range invalid {
		if err := v.Validate(); err == nil {
			t.Fatalf("expected %+v to be invalid", v)
		}
	}
}

func TestAgeTimeDescribe(t *testing.T) {
	cases := map[string]AgeTime{
		"1 month":   AgeMonths(1),
		"3 years":   AgeYears(3),
		"brand new": AgeBrandNew(),
		"unknown":   AgeUnknown(),
	}
	for want, age := range cases {
		if got := age.Describe(); got != want {
			t.Fatalf("Describe(%+v) = %q, want %q", age, got, want)
		}
	}
}

func TestProductAgeScanRestoresVariant(t *testing.T) {
	age := ProductAge{ConditionDescription: "barely used", Time: AgeMonths(4)}
	raw, err := age.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var decoded ProductAge
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if decoded.Time.Kind != AgeKindMonths || decoded.Time.Value == nil || *decoded.Time.Value != 4 {
		t.Fatalf("unexpected decoded age %+v", decoded)
	}
}

func TestVerificationLabelsNormalize(t *testing.T) {
	labels := VerificationLabels{
		{LabelText: " Original box ", Description: " included "},
		{LabelText: "original BOX", Description: "dup"},
		{LabelText: "   "},
		{LabelText: "Receipt"},
	}
	got := labels.Normalize()
	if len(got) != 2 {
		t.Fatalf("expected 2 labels, got %+v", got)
	}
	if got[0].LabelText != "Original box" || got[0].Description != "included" {
		t.Fatalf("unexpected first label %+v", got[0])
	}
}

func TestOrderedPairIsSymmetric(t *testing.T) {
	a, b := OrderedPair("zed", "amy")
	c, d := OrderedPair("amy", "zed")
	if a != c || b != d || a != "amy" {
		t.Fatalf("OrderedPair not symmetric: (%s,%s) (%s,%s)", a, b, c, d)
	}
}
