// Package notify formats trade lifecycle events and delivers them to the
// messaging channel. Delivery is best-effort: a failed notification is
// logged and swallowed, never surfaced to the trade lifecycle.
package notify

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"time"

	"signalwatcher/internal/domain"
	"signalwatcher/internal/ports"

	"github.com/go-resty/resty/v2"
)

const fetchTimeout = 30 * time.Second

// driveFileID matches the file ID inside a Google Drive share link.
var driveFileID = regexp.MustCompile(`[-\w]{25,}`)

// Notifier formats trade events into HTML captions and hands them to the
// messenger, falling back to a raw-bytes upload when URL delivery fails.
type Notifier struct {
	messenger ports.Messenger
	fetcher   *resty.Client
	logger    ports.Logger
}

// Config holds the notifier dependencies.
type Config struct {
	Messenger ports.Messenger
	Logger    ports.Logger
}

// New creates a Notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Messenger == nil {
		return nil, fmt.Errorf("messenger is required for notifier")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for notifier")
	}
	return &Notifier{
		messenger: cfg.Messenger,
		fetcher:   resty.New().SetTimeout(fetchTimeout),
		logger:    cfg.Logger,
	}, nil
}

// TradeOpened announces a newly detected trade.
func (n *Notifier) TradeOpened(ctx context.Context, t *domain.Trade) {
	n.deliver(ctx, t, caption("🚨 New trade detected!", t))
}

// Target1Hit announces the first target being reached.
func (n *Notifier) Target1Hit(ctx context.Context, t *domain.Trade, pnl float64) {
	header := fmt.Sprintf("🚨 Trade Updated – Target 1 Hit (%.2f%%)", pnl)
	n.deliver(ctx, t, caption(header, t))
}

// TradeClosed announces the close of a trade with its final PnL.
func (n *Notifier) TradeClosed(ctx context.Context, t *domain.Trade, finalPnl float64, kind domain.CloseKind) {
	var header string
	switch {
	case kind == domain.CloseStopLoss:
		header = fmt.Sprintf("🚨 Trade Closed! – Stop Loss (%.2f%%)", finalPnl)
	case t.Target2Result != nil:
		header = fmt.Sprintf("🚨 Trade Closed! – Target 2 Hit (%.2f%%)", *t.Target2Result)
	default:
		header = fmt.Sprintf("🚨 Trade Closed! – Target 1 Hit (%.2f%%)", finalPnl)
	}
	n.deliver(ctx, t, caption(header, t))
}

// caption renders the full HTML caption for any event kind.
func caption(header string, t *domain.Trade) string {
	targets := fmt.Sprintf("%v", t.Target1Price)
	if t.Target2Price != nil {
		targets = fmt.Sprintf("%v | Target 2: %v", t.Target1Price, *t.Target2Price)
	}
	return fmt.Sprintf(`%s
Symbol: %s
Category: %s
Side: %s | Leverage: %vx
🎯 Entry: %v | Stop: %v
Target: %s

Trader: %s
Date: %s

Analysis: %s`,
		header,
		html.EscapeString(t.Symbol),
		html.EscapeString(t.Category),
		t.Side, t.Leverage,
		t.EntryPrice, t.StopPrice,
		targets,
		html.EscapeString(t.Trader),
		html.EscapeString(t.Timestamp),
		html.EscapeString(t.AnalysisText),
	)
}

// DirectImageURL rewrites a Google Drive share link into its direct-download
// form; any other URL is passed through unchanged.
func DirectImageURL(imageRef string) string {
	id := driveFileID.FindString(imageRef)
	if id == "" {
		return imageRef
	}
	return fmt.Sprintf("https://drive.google.com/uc?export=download&id=%s", id)
}

// deliver sends the caption with the trade's image. URL mode first; when the
// channel cannot fetch the image itself, the bytes are fetched here and
// re-sent as an upload. Both failing is logged and swallowed.
func (n *Notifier) deliver(ctx context.Context, t *domain.Trade, text string) {
	photoURL := DirectImageURL(t.ImageRef)

	urlErr := n.messenger.SendPhotoURL(ctx, text, photoURL)
	if urlErr == nil {
		return
	}
	n.logger.Warn(ctx, "URL-mode delivery failed, retrying with upload", map[string]interface{}{
		"tradeID": t.ID, "url": photoURL, "error": urlErr.Error(),
	})

	resp, err := n.fetcher.R().SetContext(ctx).Get(photoURL)
	if err == nil && resp.IsError() {
		err = fmt.Errorf("image fetch returned status %d", resp.StatusCode())
	}
	if err == nil {
		filename := fmt.Sprintf("trade_%d.jpg", time.Now().UnixNano())
		err = n.messenger.SendPhotoUpload(ctx, text, filename, resp.Body())
		if err == nil {
			return
		}
	}

	n.logger.Error(ctx, err, "Notification delivery failed even with upload fallback", map[string]interface{}{
		"tradeID": t.ID, "symbol": t.Symbol,
	})
}
