// The freedomclock binary drives one battery-powered e-paper clock: wake,
// fetch price and balance over MQTT, simulate how long the stash lasts,
// refresh the panel, persist, sleep. Run with -once under an external wake
// timer, or without it to loop forever with in-process sleeps.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"freedomclock/config"
	"freedomclock/internal/cycle"
	"freedomclock/internal/hardware"
	"freedomclock/internal/services/acquire"
	"freedomclock/internal/services/battery"
	"freedomclock/internal/services/render"
	"freedomclock/internal/setup"
	"freedomclock/internal/storage/retained"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	runSetup := flag.Bool("setup", false, "run the interactive setup wizard and exit")
	preview := flag.Bool("preview", false, "render to the terminal instead of the panel")
	once := flag.Bool("once", false, "run a single wake cycle and exit")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if *runSetup {
		if err := setup.RunWizard(*configPath); err != nil {
			logger.Fatal("setup failed", zap.Error(err))
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	renderer, err := render.NewRenderer()
	if err != nil {
		logger.Fatal("failed to build renderer", zap.Error(err))
	}

	var display render.Display
	if *preview {
		display = hardware.NewTerminalDisplay()
	} else {
		epd, err := hardware.NewEPD(hardware.EPDConfig{
			SPIPort: cfg.Display.SPIPort,
			DCPin:   cfg.Display.DCPin,
			RstPin:  cfg.Display.RstPin,
			BusyPin: cfg.Display.BusyPin,
		})
		if err != nil {
			logger.Fatal("failed to open e-paper panel", zap.Error(err))
		}
		defer epd.Close()
		display = epd
	}

	var analog battery.AnalogPath = hardware.NullAnalogPath{}
	if !*preview {
		adc, err := hardware.NewMCP3008(cfg.ADC.SPIPort, cfg.ADC.GatePin, cfg.ADC.Channel)
		if err != nil {
			logger.Warn("battery ADC unavailable, gauge will show --", zap.Error(err))
		} else {
			defer adc.Close()
			analog = adc
		}
	}
	estimator := battery.NewEstimator(analog, battery.Config{ADCMax: hardware.MCP3008Max}, logger)

	broker := acquire.NewPahoBroker(acquire.BrokerOptions{
		Addr:     cfg.Broker.Addr,
		ClientID: cfg.Broker.ClientID,
		Username: cfg.Broker.Username,
		Password: cfg.Broker.Password,
	})
	sequencer := acquire.NewSequencer(
		hardware.NewTCPProbe(cfg.Broker.Addr),
		broker,
		acquire.Config{PriceTopic: cfg.Topics.Price, BalanceTopic: cfg.Topics.Balance},
		logger,
	)

	store, err := retained.NewStore(cfg.StateFile)
	if err != nil {
		logger.Fatal("failed to open retained state store", zap.Error(err))
	}

	controller := cycle.NewController(
		render.NewScreen(renderer, display),
		estimator,
		sequencer,
		store,
		hardware.SyncedClock{},
		hardware.NewHostSleeper(logger),
		cycle.Config{
			MonthlyExpense:  cfg.MonthlyExpense,
			AnnualInflation: cfg.AnnualInflation,
			SleepInterval:   cfg.SleepInterval,
		},
		logger,
	)

	logger.Info("freedomclock starting",
		zap.String("broker", cfg.Broker.Addr),
		zap.Bool("preview", *preview),
		zap.Bool("once", *once))

	if *once {
		if _, err := controller.RunCycle(ctx); err != nil {
			logger.Warn("cycle finished with render error", zap.Error(err))
		}
		return
	}

	if err := controller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("run loop stopped", zap.Error(err))
	}
}
