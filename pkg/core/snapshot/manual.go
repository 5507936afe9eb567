package snapshot

import (
	"fmt"
	"os"

	hjson "github.com/hjson/hjson-go/v4"
)

// LoadManual reads a hand-maintained snapshot file. The file is Hjson, so
// analysts can keep comments next to the numbers and skip the quoting
// ceremony:
//
//	{
//	  ticker: AAPL
//	  # last close
//	  price: 185.50
//	  shares_outstanding: 15.5e9
//	  free_cash_flow: 99.5e9
//	  total_debt: 111e9
//	  cash: 62e9
//	}
//
// The parsed record goes through the same Normalize path as fetched data.
func LoadManual(path string) (*FinancialSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}
	return ParseManual(data)
}

// ParseManual parses an Hjson snapshot record from memory.
func ParseManual(data []byte) (*FinancialSnapshot, error) {
	var rec PartialRecord
	if err := hjson.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot hjson: %w", err)
	}
	if rec.Ticker == "" {
		return nil, fmt.Errorf("snapshot record has no ticker")
	}
	s := Normalize(rec)
	return &s, nil
}
