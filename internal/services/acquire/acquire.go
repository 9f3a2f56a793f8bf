// Package acquire pulls the price and balance payloads from the broker
// within a bounded window, degrading gracefully at every stage: an offline
// network, an unreachable broker or a silent topic never fails the cycle,
// it only means the retained values get another day on screen.
package acquire

import (
	"context"
	"time"

	"go.uber.org/zap"

	"freedomclock/internal/domain"
	"freedomclock/pkg/retrier"
)

// Netlink is the network-layer capability: Online blocks until connectivity
// is available or the context expires.
type Netlink interface {
	Online(ctx context.Context) error
}

// Broker is the slice of an MQTT session the sequencer needs. Handlers run
// on the transport's callback goroutine and must not block.
type Broker interface {
	Connect(ctx context.Context) error
	Subscribe(topic string, handler func(payload []byte)) error
	Disconnect()
}

// Default step budgets; every network step has one so a wake cycle can
// never hang.
const (
	DefaultLinkTimeout    = 15 * time.Second
	DefaultBrokerTimeout  = 5 * time.Second
	DefaultConnectRetry   = 500 * time.Millisecond
	DefaultMessageWindow  = 4 * time.Second
	brokerConnectAttempts = 12
)

// Config carries the topic names and optional budget overrides.
type Config struct {
	PriceTopic    string
	BalanceTopic  string
	LinkTimeout   time.Duration
	BrokerTimeout time.Duration
	ConnectRetry  time.Duration
	MessageWindow time.Duration
}

// Sequencer orchestrates one acquisition pass per wake cycle.
type Sequencer struct {
	netlink Netlink
	broker  Broker
	cfg     Config
	logger  *zap.Logger
}

// NewSequencer creates a Sequencer. Zero budgets fall back to the defaults.
func NewSequencer(netlink Netlink, broker Broker, cfg Config, logger *zap.Logger) *Sequencer {
	if cfg.LinkTimeout == 0 {
		cfg.LinkTimeout = DefaultLinkTimeout
	}
	if cfg.BrokerTimeout == 0 {
		cfg.BrokerTimeout = DefaultBrokerTimeout
	}
	if cfg.ConnectRetry == 0 {
		cfg.ConnectRetry = DefaultConnectRetry
	}
	if cfg.MessageWindow == 0 {
		cfg.MessageWindow = DefaultMessageWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sequencer{netlink: netlink, broker: broker, cfg: cfg, logger: logger}
}

// Fetch runs the acquisition sequence and returns whatever arrived. The
// result starts from fresh buffers every call; nothing from a previous
// cycle can leak into it.
func (s *Sequencer) Fetch(ctx context.Context) domain.FetchResult {
	var res domain.FetchResult

	linkCtx, cancelLink := context.WithTimeout(ctx, s.cfg.LinkTimeout)
	defer cancelLink()
	if err := s.netlink.Online(linkCtx); err != nil {
		s.logger.Warn("network unavailable, running from retained values", zap.Error(err))
		res.Offline = true
		return res
	}

	connectCtx, cancelConnect := context.WithTimeout(ctx, s.cfg.BrokerTimeout)
	defer cancelConnect()
	connect := retrier.New(
		retrier.WithInterval(s.cfg.ConnectRetry),
		retrier.WithMultiplier(1),
		retrier.WithMaxAttempts(brokerConnectAttempts),
	)
	if err := connect.Do(connectCtx, s.broker.Connect); err != nil {
		s.logger.Warn("broker unreachable this cycle", zap.Error(err))
		return res
	}
	defer s.broker.Disconnect()

	// Handoff channels between the transport callback and this goroutine.
	// Capacity one with drop-on-full: only the latest payload matters.
	prices := make(chan string, 1)
	balances := make(chan string, 1)

	if err := s.broker.Subscribe(s.cfg.PriceTopic, func(payload []byte) {
		select {
		case prices <- string(payload):
		default:
		}
	}); err != nil {
		s.logger.Warn("price subscribe failed", zap.String("topic", s.cfg.PriceTopic), zap.Error(err))
		return res
	}
	if err := s.broker.Subscribe(s.cfg.BalanceTopic, func(payload []byte) {
		select {
		case balances <- string(payload):
		default:
		}
	}); err != nil {
		s.logger.Warn("balance subscribe failed", zap.String("topic", s.cfg.BalanceTopic), zap.Error(err))
		return res
	}

	window := time.NewTimer(s.cfg.MessageWindow)
	defer window.Stop()

	for !res.Complete() {
		select {
		case p := <-prices:
			res.PriceText = domain.TruncateValueText(p)
			res.PriceReceived = true
		case b := <-balances:
			res.BalanceText = domain.TruncateValueText(b)
			res.BalanceReceived = true
		case <-window.C:
			s.logger.Info("message window closed",
				zap.Bool("price_received", res.PriceReceived),
				zap.Bool("balance_received", res.BalanceReceived))
			return res
		case <-ctx.Done():
			return res
		}
	}

	return res
}
