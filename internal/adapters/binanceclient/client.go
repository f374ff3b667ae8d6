package binanceclient

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"fxSignalBot/internal/domain"
	"fxSignalBot/internal/ports"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
)

// Client implements ports.MarketDataClient against the Binance spot API.
// Forex and metals symbols are mapped to tradable proxies (XAUUSD to
// PAXGUSDT by default) before any request leaves the adapter; tick and
// candle data coming back is stamped with the engine-side symbol.
type Client struct {
	spot                 *binance.Client
	logger               ports.Logger
	symbolMap            map[string]string
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// Config holds configuration specific to the Binance adapter.
type Config struct {
	APIKey               string
	SecretKey            string
	Logger               ports.Logger
	SymbolMap            map[string]string // engine symbol -> exchange symbol
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int
}

// DefaultSymbolMap maps the built-in instruments to their closest Binance
// proxies. Pairs without a listed proxy keep their own name.
func DefaultSymbolMap() map[string]string {
	return map[string]string{
		"XAUUSD": "PAXGUSDT",
		"EURUSD": "EURUSDT",
	}
}

// New creates a new Binance market data adapter.
func New(cfg Config) (*Client, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for Binance client")
	}

	symbolMap := cfg.SymbolMap
	if symbolMap == nil {
		symbolMap = DefaultSymbolMap()
	}
	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = 1 * time.Second
	}
	maxAttempts := cfg.MaxReconnectAttempts
	if maxAttempts <= 0 {
		maxAttempts = 10
	}

	return &Client{
		spot:                 binance.NewClient(cfg.APIKey, cfg.SecretKey),
		logger:               cfg.Logger,
		symbolMap:            symbolMap,
		reconnectDelay:       reconnectDelay,
		maxReconnectAttempts: maxAttempts,
	}, nil
}

func (c *Client) exchangeSymbol(symbol string) string {
	if mapped, ok := c.symbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// handleError translates Binance API errors into standardized ports errors.
func (c *Client) handleError(ctx context.Context, err error, operation string) error {
	if err == nil {
		return nil
	}

	fields := map[string]interface{}{"operation": operation, "originalError": err.Error()}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		fields["apiErrorCode"] = apiErr.Code
		fields["apiErrorMessage"] = apiErr.Message

		var mappedErr error
		switch apiErr.Code {
		case -1003: // Too many requests
			mappedErr = ports.ErrFeedUnavailable
		case -1100, -1101, -1102, -1103, -1104, -1105, -1106, -1121: // Parameter/request format errors
			mappedErr = ports.ErrInvalidRequest
		default:
			mappedErr = ports.ErrFeedUnavailable
		}
		finalErr := fmt.Errorf("%s failed: %w: %w", operation, mappedErr, err)
		c.logger.Error(ctx, err, operation+" failed with API error", fields)
		return finalErr
	}

	var finalErr error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		finalErr = fmt.Errorf("%s canceled: %w", operation, err)
	case strings.Contains(err.Error(), "use of closed network connection"),
		strings.Contains(err.Error(), "connection refused"),
		strings.Contains(err.Error(), "connection reset by peer"):
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrConnectionFailed, err)
	default:
		finalErr = fmt.Errorf("%s failed: %w: %w", operation, ports.ErrFeedUnavailable, err)
	}

	c.logger.Error(ctx, err, operation+" failed", fields)
	return finalErr
}

// GetCandles retrieves up to limit historical candles, oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	op := "GetCandles"
	klines, err := c.spot.NewKlinesService().
		Symbol(c.exchangeSymbol(symbol)).
		Interval(interval).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, c.handleError(ctx, err, op)
	}

	candles := make([]domain.Candle, 0, len(klines))
	for _, k := range klines {
		candle, err := translateKline(k)
		if err != nil {
			return nil, c.handleError(ctx, fmt.Errorf("failed to translate historical kline: %w", err), op)
		}
		candles = append(candles, candle)
	}

	// The API returns chronological data, but the ordering contract sits
	// here, not on the callers.
	sort.Slice(candles, func(i, j int) bool { return candles[i].Time < candles[j].Time })

	c.logger.Debug(ctx, op+" completed", map[string]interface{}{"symbol": symbol, "interval": interval, "count": len(candles)})
	return candles, nil
}

// StreamTicks starts an aggregated-trade WebSocket stream for the symbol,
// reconnecting with exponential backoff until the context is cancelled or the
// reconnect attempts are exhausted.
func (c *Client) StreamTicks(ctx context.Context, symbol string, handler func(tick domain.Tick), errHandler func(err error)) (doneCh chan struct{}, stopCh chan struct{}, err error) {
	op := "StreamTicks"
	wsCtx, cancelWs := context.WithCancel(ctx)
	exchangeSymbol := c.exchangeSymbol(symbol)

	tradeHandler := func(event *binance.WsAggTradeEvent) {
		tick, err := translateAggTrade(symbol, event)
		if err != nil {
			c.logger.Error(wsCtx, err, op+": failed to translate trade event")
			return
		}
		handler(tick)
	}

	wsErrHandler := func(err error) {
		translated := c.handleError(wsCtx, err, op+" WebSocket")
		errHandler(translated)
	}

	go func() {
		defer cancelWs()

		attempt := 0
		for {
			select {
			case <-wsCtx.Done():
				return
			default:
			}

			innerDoneCh, innerStopCh, connectErr := binance.WsAggTradeServe(exchangeSymbol, tradeHandler, wsErrHandler)
			if connectErr != nil {
				c.handleError(wsCtx, connectErr, op+" connection attempt")
				attempt++
				if attempt >= c.maxReconnectAttempts {
					c.logger.Error(wsCtx, connectErr, op+": max reconnection attempts exceeded, giving up",
						map[string]interface{}{"symbol": symbol, "maxAttempts": c.maxReconnectAttempts})
					return
				}
				delay := c.reconnectDelay * time.Duration(1<<uint(attempt-1))
				select {
				case <-time.After(delay):
					continue
				case <-wsCtx.Done():
					return
				}
			}

			c.logger.Info(wsCtx, op+": WebSocket connection established",
				map[string]interface{}{"symbol": symbol, "exchangeSymbol": exchangeSymbol})
			attempt = 0

			select {
			case <-innerDoneCh:
				c.logger.Warn(wsCtx, op+": WebSocket connection closed, reconnecting",
					map[string]interface{}{"symbol": symbol})
			case <-wsCtx.Done():
				select {
				case innerStopCh <- struct{}{}:
				default:
				}
				return
			}
		}
	}()

	doneCh = make(chan struct{})
	stopCh = make(chan struct{})

	go func() {
		select {
		case <-stopCh:
			cancelWs()
		case <-wsCtx.Done():
		}
	}()
	go func() {
		<-wsCtx.Done()
		close(doneCh)
	}()

	return doneCh, stopCh, nil
}

func translateKline(k *binance.Kline) (domain.Candle, error) {
	if k == nil {
		return domain.Candle{}, errors.New("received nil kline")
	}
	open, err := strconv.ParseFloat(k.Open, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing open price '%s': %w", k.Open, err)
	}
	high, err := strconv.ParseFloat(k.High, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing high price '%s': %w", k.High, err)
	}
	low, err := strconv.ParseFloat(k.Low, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing low price '%s': %w", k.Low, err)
	}
	cls, err := strconv.ParseFloat(k.Close, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing close price '%s': %w", k.Close, err)
	}
	vol, err := strconv.ParseFloat(k.Volume, 64)
	if err != nil {
		return domain.Candle{}, fmt.Errorf("parsing volume '%s': %w", k.Volume, err)
	}

	return domain.Candle{
		Time:   k.OpenTime,
		Open:   open,
		High:   high,
		Low:    low,
		Close:  cls,
		Volume: int64(vol),
	}, nil
}

func translateAggTrade(symbol string, event *binance.WsAggTradeEvent) (domain.Tick, error) {
	if event == nil {
		return domain.Tick{}, errors.New("received nil trade event")
	}
	price, err := strconv.ParseFloat(event.Price, 64)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("parsing trade price '%s': %w", event.Price, err)
	}
	qty, err := strconv.ParseFloat(event.Quantity, 64)
	if err != nil {
		return domain.Tick{}, fmt.Errorf("parsing trade quantity '%s': %w", event.Quantity, err)
	}

	return domain.Tick{
		Symbol: symbol,
		Time:   event.TradeTime,
		Price:  price,
		Volume: int64(qty),
	}, nil
}
