package utils

import (
	"os"
	"path/filepath"
	"testing"

	"fxSignalBot/internal/domain"
)

func TestCandleCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "candles.csv")

	in := []domain.Candle{
		{Time: 1717243200000, Open: 2400.5, High: 2410, Low: 2395.25, Close: 2405.75, Volume: 1234},
		{Time: 1717243260000, Open: 2405.75, High: 2408, Low: 2401, Close: 2402.5, Volume: 987},
	}
	if err := WriteCandlesToCSV(in, path); err != nil {
		t.Fatalf("WriteCandlesToCSV: %v", err)
	}

	out, err := ReadCandlesFromCSV(path)
	if err != nil {
		t.Fatalf("ReadCandlesFromCSV: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d candles, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("candle %d: got %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestReadCandlesFromCSVMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")

	content := "time,open,high,low,close,volume\nnot-a-time,1,2,0.5,1.5,10\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadCandlesFromCSV(path); err == nil {
		t.Fatal("expected parse error for malformed time field")
	}
}

func TestReadCandlesFromCSVEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.csv")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	candles, err := ReadCandlesFromCSV(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candles) != 0 {
		t.Fatalf("expected no candles, got %d", len(candles))
	}
}
