package guardrail

import (
	"errors"
	"math"
	"testing"
)

func TestOptimize_InfeasibleGuardrails(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	_, err := o.Optimize(Input{
		CandidatePrice: 45,
		MarginFloor:    50,
		PriceCeiling:   40,
	})
	if !errors.Is(err, ErrInfeasibleGuardrails) {
		t.Errorf("Expected ErrInfeasibleGuardrails, got %v", err)
	}
}

func TestOptimize_ClampsIntoBounds(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	tests := []struct {
		name      string
		candidate float64
		want      float64
	}{
		{"below floor", 30, 80},
		{"above ceiling", 200, 120},
		{"inside bounds", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Zero confidence disables the margin search: pure clamping.
			got, err := o.Optimize(Input{
				CandidatePrice: tt.candidate,
				MarginFloor:    80,
				PriceCeiling:   120,
			})
			if err != nil {
				t.Fatalf("Optimize failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestOptimize_LowConfidenceSkipsSearch(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	got, err := o.Optimize(Input{
		CandidatePrice:       100,
		CostBasis:            60,
		MarginFloor:          80,
		PriceCeiling:         120,
		Elasticity:           -1.0,
		ElasticityConfidence: 0.2,
		CurrentPrice:         100,
		CurrentDemand:        100,
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got != 100 {
		t.Errorf("Search must not run below the confidence threshold, got %v", got)
	}
}

func TestOptimize_SearchMovesTowardHigherMargin(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	// With elasticity -1, margin (p-60)*demand(p) is strictly increasing
	// in p, so the search lands on the top of the 5% neighborhood.
	got, err := o.Optimize(Input{
		CandidatePrice:       100,
		CostBasis:            60,
		MarginFloor:          80,
		PriceCeiling:         120,
		Elasticity:           -1.0,
		ElasticityConfidence: 0.9,
		CurrentPrice:         100,
		CurrentDemand:        100,
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if math.Abs(got-105) > 1e-9 {
		t.Errorf("Expected search to reach 105, got %v", got)
	}
}

func TestOptimize_SearchRespectsCeiling(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	got, err := o.Optimize(Input{
		CandidatePrice:       100,
		CostBasis:            60,
		MarginFloor:          80,
		PriceCeiling:         102, // tighter than the 5% radius
		Elasticity:           -1.0,
		ElasticityConfidence: 0.9,
		CurrentPrice:         100,
		CurrentDemand:        100,
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got > 102 {
		t.Errorf("Result %v escaped the ceiling", got)
	}
	if math.Abs(got-102) > 1e-9 {
		t.Errorf("Expected search pinned at the ceiling 102, got %v", got)
	}
}

func TestOptimize_HighElasticityPullsPriceDown(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	// Elasticity -4: the constant-elasticity optimum is cost*e/(e+1) = 80,
	// below the search window, so the search pins its lower edge at 95.
	got, err := o.Optimize(Input{
		CandidatePrice:       100,
		CostBasis:            60,
		MarginFloor:          80,
		PriceCeiling:         120,
		Elasticity:           -4.0,
		ElasticityConfidence: 0.9,
		CurrentPrice:         100,
		CurrentDemand:        100,
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if math.Abs(got-95) > 1e-9 {
		t.Errorf("Expected the search to land on 95, got %v", got)
	}
}

func TestOptimize_ZeroDemandDisablesSearch(t *testing.T) {
	o := NewOptimizer(DefaultConfig())

	got, err := o.Optimize(Input{
		CandidatePrice:       100,
		CostBasis:            60,
		MarginFloor:          80,
		PriceCeiling:         120,
		Elasticity:           -1.0,
		ElasticityConfidence: 0.9,
		CurrentPrice:         100,
		CurrentDemand:        0,
	})
	if err != nil {
		t.Fatalf("Optimize failed: %v", err)
	}
	if got != 100 {
		t.Errorf("No demand anchor means no search, got %v", got)
	}
}

func TestOptimize_ResultAlwaysWithinBounds(t *testing.T) {
	o := NewOptimizer(Config{ConfidenceThreshold: 0.1, SearchRadiusPct: 50, SearchSteps: 11})

	candidates := []float64{1, 50, 79.99, 100, 120.01, 500}
	for _, c := range candidates {
		got, err := o.Optimize(Input{
			CandidatePrice:       c,
			CostBasis:            60,
			MarginFloor:          80,
			PriceCeiling:         120,
			Elasticity:           -1.2,
			ElasticityConfidence: 0.9,
			CurrentPrice:         100,
			CurrentDemand:        100,
		})
		if err != nil {
			t.Fatalf("Optimize(%v) failed: %v", c, err)
		}
		if got < 80 || got > 120 {
			t.Errorf("Optimize(%v) = %v escaped [80, 120]", c, got)
		}
	}
}
