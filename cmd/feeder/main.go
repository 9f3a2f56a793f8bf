// The feeder binary is the publishing side of the clock: it polls the spot
// price from the exchange, pairs it with the configured holdings, and
// publishes both to the broker with the retained flag set. Retained delivery
// is what lets the clock sleep for hours and still pick up the latest values
// seconds after it subscribes.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adshao/go-binance/v2"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"freedomclock/config"
)

const publishTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	symbol := flag.String("symbol", "BTCUSDT", "exchange symbol to poll")
	balanceStr := flag.String("balance", "", "holdings in BTC to publish, e.g. 0.25")
	interval := flag.Duration("interval", 5*time.Minute, "poll and publish interval")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	balance, err := decimal.NewFromString(*balanceStr)
	if err != nil || balance.IsNegative() {
		logger.Fatal("a non-negative -balance is required, e.g. -balance 0.25")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := connect(cfg, logger)
	defer client.Disconnect(250)

	exchange := binance.NewClient("", "")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			price, err := spotPrice(ctx, exchange, *symbol)
			if err != nil {
				logger.Warn("price poll failed", zap.Error(err))
			} else if err := publish(client, cfg.Topics.Price, price); err != nil {
				logger.Warn("price publish failed", zap.Error(err))
			} else {
				logger.Info("price published", zap.String("topic", cfg.Topics.Price), zap.String("price", price))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	g.Go(func() error {
		// Re-publish on the same cadence so the retained value survives
		// broker restarts without persistence.
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			if err := publish(client, cfg.Topics.Balance, balance.String()); err != nil {
				logger.Warn("balance publish failed", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("feeder stopped", zap.Error(err))
	}
}

func connect(cfg *config.Config, logger *zap.Logger) mqtt.Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker.Addr)
	opts.SetClientID(cfg.Broker.ClientID + "-feeder")
	if cfg.Broker.Username != "" {
		opts.SetUsername(cfg.Broker.Username)
		opts.SetPassword(cfg.Broker.Password)
	}
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) || token.Error() != nil {
		logger.Fatal("failed to connect to broker", zap.String("addr", cfg.Broker.Addr), zap.Error(token.Error()))
	}
	logger.Info("connected to broker", zap.String("addr", cfg.Broker.Addr))
	return client
}

func spotPrice(ctx context.Context, client *binance.Client, symbol string) (string, error) {
	prices, err := client.NewListPricesService().Symbol(symbol).Do(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "list prices for %s", symbol)
	}
	if len(prices) == 0 {
		return "", errors.Errorf("no price returned for %s", symbol)
	}
	return prices[0].Price, nil
}

// publish sends the payload at QoS 1 with the retained flag so the broker
// hands it to the clock the moment it subscribes.
func publish(client mqtt.Client, topic, payload string) error {
	token := client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.Errorf("publish %s timeout", topic)
	}
	return errors.Wrapf(token.Error(), "publish %s", topic)
}
