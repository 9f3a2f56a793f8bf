package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
broker:
  addr: tcp://10.0.0.5:1883
  client_id: clock-livingroom
  username: clock
  password: hunter2
topics:
  price: home/btc/usd
  balance: home/btc/balance
monthly_expense: "2500"
annual_inflation: "0.07"
sleep_minutes: 30
state_file: /var/lib/freedomclock/retained.json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "tcp://10.0.0.5:1883", cfg.Broker.Addr)
	require.Equal(t, "clock-livingroom", cfg.Broker.ClientID)
	require.Equal(t, "home/btc/usd", cfg.Topics.Price)
	require.InDelta(t, 2500, cfg.MonthlyExpense, 1e-9)
	require.InDelta(t, 0.07, cfg.AnnualInflation, 1e-9)
	require.Equal(t, 30*time.Minute, cfg.SleepInterval)
	require.Equal(t, "/var/lib/freedomclock/retained.json", cfg.StateFile)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
broker:
  addr: tcp://10.0.0.5:1883
monthly_expense: "1000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, DefaultClientID, cfg.Broker.ClientID)
	require.Equal(t, DefaultPriceTopic, cfg.Topics.Price)
	require.Equal(t, DefaultBalanceTopic, cfg.Topics.Balance)
	require.Equal(t, time.Duration(DefaultSleepMinutes)*time.Minute, cfg.SleepInterval)
	require.Equal(t, DefaultStateFile, cfg.StateFile)
	require.Zero(t, cfg.AnnualInflation)
}

func TestLoad_Rejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing broker addr", "monthly_expense: \"1000\"\n"},
		{"missing expense", "broker:\n  addr: tcp://x:1883\n"},
		{"garbled expense", "broker:\n  addr: tcp://x:1883\nmonthly_expense: \"2,500\"\n"},
		{"negative expense", "broker:\n  addr: tcp://x:1883\nmonthly_expense: \"-10\"\n"},
		{"negative inflation", "broker:\n  addr: tcp://x:1883\nmonthly_expense: \"10\"\nannual_inflation: \"-0.02\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
