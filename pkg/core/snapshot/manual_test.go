package snapshot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const manualFixture = `
{
  // hand-entered after the provider came back empty
  ticker: nvda
  company_name: NVIDIA Corporation
  # last close
  price: 450.25
  shares_outstanding: 2.47e9
  free_cash_flow: 27e9
  total_debt: 11e9
  cash: 26e9
  beta: 1.7
}
`

func TestParseManual(t *testing.T) {
	s, err := ParseManual([]byte(manualFixture))
	if err != nil {
		t.Fatalf("ParseManual failed: %v", err)
	}
	if s.Ticker != "NVDA" {
		t.Errorf("Expected ticker NVDA, got %s", s.Ticker)
	}
	if s.CompanyName != "NVIDIA Corporation" {
		t.Errorf("Unexpected company name %s", s.CompanyName)
	}
	if math.Abs(s.Price-450.25) > 1e-9 {
		t.Errorf("Expected price 450.25, got %f", s.Price)
	}
	// Market cap derived: 450.25 * 2.47e9
	if math.Abs(s.MarketCap-450.25*2.47e9) > 1 {
		t.Errorf("Expected derived market cap, got %f", s.MarketCap)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Fixture snapshot should be complete: %v", err)
	}
}

func TestParseManualRequiresTicker(t *testing.T) {
	if _, err := ParseManual([]byte(`{price: 10}`)); err == nil {
		t.Error("Expected error for record without ticker")
	}
}

func TestParseManualRejectsGarbage(t *testing.T) {
	if _, err := ParseManual([]byte(`{{{{`)); err == nil {
		t.Error("Expected parse error")
	}
}

func TestLoadManual(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.hjson")
	if err := os.WriteFile(path, []byte(manualFixture), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadManual(path)
	if err != nil {
		t.Fatalf("LoadManual failed: %v", err)
	}
	if s.Ticker != "NVDA" {
		t.Errorf("Expected ticker NVDA, got %s", s.Ticker)
	}

	if _, err := LoadManual(filepath.Join(t.TempDir(), "missing.hjson")); err == nil {
		t.Error("Expected error for missing file")
	}
}
