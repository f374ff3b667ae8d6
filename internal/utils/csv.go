package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"fxSignalBot/internal/domain"
)

// WriteCandlesToCSV writes candles with a header row. Times are epoch
// milliseconds so a file round trips without precision loss.
func WriteCandlesToCSV(candles []domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"time", "open", "high", "low", "close", "volume"})

	for _, c := range candles {
		writer.Write([]string{
			strconv.FormatInt(c.Time, 10),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatInt(c.Volume, 10),
		})
	}
	return writer.Error()
}

// ReadCandlesFromCSV reads a candle file produced by WriteCandlesToCSV.
func ReadCandlesFromCSV(filename string) ([]domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)

	// Skip the header.
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", filename, err)
	}

	var candles []domain.Candle
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s line %d: %w", filename, line, err)
		}
		if len(record) < 6 {
			return nil, fmt.Errorf("%s line %d: expected 6 fields, got %d", filename, line, len(record))
		}

		c, err := parseCandleRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", filename, line, err)
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func parseCandleRecord(record []string) (domain.Candle, error) {
	var c domain.Candle
	var err error
	if c.Time, err = strconv.ParseInt(record[0], 10, 64); err != nil {
		return c, fmt.Errorf("parsing time %q: %w", record[0], err)
	}
	if c.Open, err = strconv.ParseFloat(record[1], 64); err != nil {
		return c, fmt.Errorf("parsing open %q: %w", record[1], err)
	}
	if c.High, err = strconv.ParseFloat(record[2], 64); err != nil {
		return c, fmt.Errorf("parsing high %q: %w", record[2], err)
	}
	if c.Low, err = strconv.ParseFloat(record[3], 64); err != nil {
		return c, fmt.Errorf("parsing low %q: %w", record[3], err)
	}
	if c.Close, err = strconv.ParseFloat(record[4], 64); err != nil {
		return c, fmt.Errorf("parsing close %q: %w", record[4], err)
	}
	if c.Volume, err = strconv.ParseInt(record[5], 10, 64); err != nil {
		return c, fmt.Errorf("parsing volume %q: %w", record[5], err)
	}
	return c, nil
}

// WriteTradesToCSV writes closed trades with a header row for offline
// analysis in a spreadsheet.
func WriteTradesToCSV(trades []*domain.ClosedTrade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"position_id", "side", "symbol", "entry_price", "exit_price", "lot_size",
		"exit_reason", "pnl", "pnl_pct", "result", "opened_at", "closed_at", "balance",
	})

	for _, t := range trades {
		writer.Write([]string{
			strconv.FormatInt(t.PositionID, 10),
			string(t.Side),
			t.Symbol,
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(t.LotSize, 'f', -1, 64),
			string(t.ExitReason),
			strconv.FormatFloat(t.PNL, 'f', -1, 64),
			strconv.FormatFloat(t.PNLPct, 'f', -1, 64),
			string(t.Result),
			t.OpenedAt.Format(time.RFC3339),
			t.ClosedAt.Format(time.RFC3339),
			strconv.FormatFloat(t.Balance, 'f', -1, 64),
		})
	}
	return writer.Error()
}
