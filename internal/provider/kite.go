package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
)

// KiteProvider serves market data from the Kite Connect REST API. It covers
// quotes and historical bars; option chains and news are not part of the
// API surface and return ErrUnsupported so the fallback layer can fill in.
type KiteProvider struct {
	client   *kiteconnect.Client
	exchange string

	tokens map[string]int // "EXCHANGE:SYMBOL" -> instrument token
	mu     sync.RWMutex
}

// KiteConfig holds Kite provider configuration.
type KiteConfig struct {
	APIKey      string
	AccessToken string
	Exchange    string // defaults to NSE
}

// NewKiteProvider creates a Kite-backed provider.
func NewKiteProvider(cfg KiteConfig) *KiteProvider {
	client := kiteconnect.New(cfg.APIKey)
	if cfg.AccessToken != "" {
		client.SetAccessToken(cfg.AccessToken)
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = "NSE"
	}
	return &KiteProvider{
		client:   client,
		exchange: exchange,
		tokens:   make(map[string]int),
	}
}

func (k *KiteProvider) Name() string {
	return "kite"
}

func (k *KiteProvider) instrumentID(symbol string) string {
	return fmt.Sprintf("%s:%s", k.exchange, symbol)
}

func (k *KiteProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := k.instrumentID(symbol)
	quotes, err := k.client.GetQuote(id)
	if err != nil {
		return nil, errors.NewProviderError(k.Name(), "quote", symbol, err)
	}

	q, ok := quotes[id]
	if !ok {
		return nil, errors.NewProviderError(k.Name(), "quote", symbol, errors.ErrSymbolNotFound)
	}

	quote := &models.Quote{
		Symbol:    symbol,
		Last:      q.LastPrice,
		Open:      q.OHLC.Open,
		High:      q.OHLC.High,
		Low:       q.OHLC.Low,
		PrevClose: q.OHLC.Close,
		Volume:    int64(q.Volume),
		Change:    q.NetChange,
		Timestamp: q.LastTradeTime.Time,
		Source:    models.SourceLive,
	}
	if quote.PrevClose != 0 {
		quote.ChangePercent = 100 * quote.Change / quote.PrevClose
	}
	return quote, nil
}

func (k *KiteProvider) GetBars(ctx context.Context, req BarsRequest) ([]models.Bar, error) {
	symbol, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	token, err := k.lookupToken(symbol)
	if err != nil {
		return nil, err
	}

	tf := req.Timeframe
	if tf == "" {
		tf = models.TimeframeDay
	}
	to := req.To
	if to.IsZero() {
		to = time.Now()
	}
	from := req.From
	if from.IsZero() {
		from = to.Add(-defaultBarSpan(tf))
	}

	data, err := k.client.GetHistoricalData(token, kiteInterval(tf), from, to, false, false)
	if err != nil {
		return nil, errors.NewProviderError(k.Name(), "bars", symbol, err)
	}

	bars := make([]models.Bar, len(data))
	for i, d := range data {
		bars[i] = models.Bar{
			Timestamp: d.Date.Time,
			Open:      d.Open,
			High:      d.High,
			Low:       d.Low,
			Close:     d.Close,
			Volume:    int64(d.Volume),
		}
	}

	if req.Limit > 0 && len(bars) > req.Limit {
		bars = bars[len(bars)-req.Limit:]
	}
	return bars, nil
}

// GetOptionChain is not served by the Kite market data API surface we use.
func (k *KiteProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	return nil, errors.NewProviderError(k.Name(), "option_chain", symbol, errors.ErrUnsupported)
}

// GetNews is not served by Kite.
func (k *KiteProvider) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return nil, errors.NewProviderError(k.Name(), "news", symbol, errors.ErrUnsupported)
}

// lookupToken resolves the instrument token for a symbol, populating the
// token cache from the full instrument dump on first use.
func (k *KiteProvider) lookupToken(symbol string) (int, error) {
	key := k.instrumentID(symbol)

	k.mu.RLock()
	token, ok := k.tokens[key]
	k.mu.RUnlock()
	if ok {
		return token, nil
	}

	instruments, err := k.client.GetInstruments()
	if err != nil {
		return 0, errors.NewProviderError(k.Name(), "instruments", symbol, err)
	}

	k.mu.Lock()
	for _, inst := range instruments {
		k.tokens[fmt.Sprintf("%s:%s", inst.Exchange, inst.Tradingsymbol)] = inst.InstrumentToken
	}
	token, ok = k.tokens[key]
	k.mu.Unlock()

	if !ok {
		return 0, errors.NewProviderError(k.Name(), "instruments", symbol, errors.ErrSymbolNotFound)
	}
	return token, nil
}

func kiteInterval(tf models.Timeframe) string {
	switch tf {
	case models.TimeframeMinute:
		return "minute"
	case models.Timeframe5Minute:
		return "5minute"
	case models.TimeframeHour:
		return "60minute"
	default:
		return "day"
	}
}
