// Package config loads the device configuration: broker endpoint, topics,
// spending model, hardware pins and the wake interval. Credentials live in
// the YAML file (deployed outside version control), tunables can also come
// from flags.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Broker identifies the MQTT endpoint.
type Broker struct {
	Addr     string `yaml:"addr"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Topics are the two subscriptions the device makes.
type Topics struct {
	Price   string `yaml:"price"`
	Balance string `yaml:"balance"`
}

// Display names the panel's SPI port and control pins.
type Display struct {
	SPIPort string `yaml:"spi_port"`
	DCPin   string `yaml:"dc_pin"`
	RstPin  string `yaml:"rst_pin"`
	BusyPin string `yaml:"busy_pin"`
}

// ADC names the battery converter's SPI port, divider gate and channel.
type ADC struct {
	SPIPort string `yaml:"spi_port"`
	GatePin string `yaml:"gate_pin"`
	Channel int    `yaml:"channel"`
}

// Config is the resolved runtime configuration.
type Config struct {
	Broker  Broker
	Topics  Topics
	Display Display
	ADC     ADC

	// MonthlyExpense is today's monthly spending in USD.
	MonthlyExpense float64
	// AnnualInflation is a fraction, e.g. 0.07 for 7%.
	AnnualInflation float64
	SleepInterval   time.Duration
	StateFile       string
}

// raw is the YAML shape. Money and fraction tunables are strings parsed
// through decimal so a typo fails loudly instead of silently becoming zero.
type raw struct {
	Broker          Broker  `yaml:"broker"`
	Topics          Topics  `yaml:"topics"`
	Display         Display `yaml:"display"`
	ADC             ADC     `yaml:"adc"`
	MonthlyExpense  string  `yaml:"monthly_expense"`
	AnnualInflation string  `yaml:"annual_inflation"`
	SleepMinutes    int     `yaml:"sleep_minutes"`
	StateFile       string  `yaml:"state_file"`
}

// Defaults applied to zero values.
const (
	DefaultClientID     = "freedomclock"
	DefaultPriceTopic   = "freedomclock/btc/usd"
	DefaultBalanceTopic = "freedomclock/btc/balance"
	DefaultSleepMinutes = 60
	DefaultStateFile    = "data/retained.json"

	// Default wiring on the reference carrier board.
	DefaultDisplaySPI  = "SPI0.0"
	DefaultDisplayDC   = "GPIO25"
	DefaultDisplayRst  = "GPIO17"
	DefaultDisplayBusy = "GPIO24"
	DefaultADCSPI      = "SPI0.1"
	DefaultADCGate     = "GPIO23"
)

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}

	var r raw
	if err := yaml.Unmarshal(payload, &r); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}

	cfg := &Config{
		Broker:    r.Broker,
		Topics:    r.Topics,
		Display:   r.Display,
		ADC:       r.ADC,
		StateFile: r.StateFile,
	}

	if r.MonthlyExpense == "" {
		return nil, errors.New("monthly_expense is required")
	}
	expense, err := decimal.NewFromString(r.MonthlyExpense)
	if err != nil {
		return nil, errors.Wrapf(err, "incorrect 'monthly_expense' param %q", r.MonthlyExpense)
	}
	cfg.MonthlyExpense, _ = expense.Float64()

	if r.AnnualInflation != "" {
		inflation, err := decimal.NewFromString(r.AnnualInflation)
		if err != nil {
			return nil, errors.Wrapf(err, "incorrect 'annual_inflation' param %q", r.AnnualInflation)
		}
		cfg.AnnualInflation, _ = inflation.Float64()
	}

	if r.SleepMinutes == 0 {
		r.SleepMinutes = DefaultSleepMinutes
	}
	cfg.SleepInterval = time.Duration(r.SleepMinutes) * time.Minute

	if cfg.Broker.ClientID == "" {
		cfg.Broker.ClientID = DefaultClientID
	}
	if cfg.Topics.Price == "" {
		cfg.Topics.Price = DefaultPriceTopic
	}
	if cfg.Topics.Balance == "" {
		cfg.Topics.Balance = DefaultBalanceTopic
	}
	if cfg.StateFile == "" {
		cfg.StateFile = DefaultStateFile
	}
	if cfg.Display.SPIPort == "" {
		cfg.Display = Display{
			SPIPort: DefaultDisplaySPI,
			DCPin:   DefaultDisplayDC,
			RstPin:  DefaultDisplayRst,
			BusyPin: DefaultDisplayBusy,
		}
	}
	if cfg.ADC.SPIPort == "" {
		cfg.ADC.SPIPort = DefaultADCSPI
	}
	if cfg.ADC.GatePin == "" {
		cfg.ADC.GatePin = DefaultADCGate
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the required fields and value ranges.
func (c *Config) Validate() error {
	if c.Broker.Addr == "" {
		return errors.New("broker.addr is required")
	}
	if c.MonthlyExpense <= 0 {
		return errors.New("monthly_expense must be positive")
	}
	if c.AnnualInflation < 0 {
		return errors.New("annual_inflation must not be negative")
	}
	if c.SleepInterval < time.Minute {
		return errors.New("sleep_minutes must be at least 1")
	}
	return nil
}
