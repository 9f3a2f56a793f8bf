// Package setup is the first-run terminal wizard: it collects the broker
// endpoint, topics and spending model and writes them as config.yaml.
package setup

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"freedomclock/config"
)

var (
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(highlight).
			Padding(0, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)
)

// wizardFile mirrors the YAML layout of config.Load.
type wizardFile struct {
	Broker          config.Broker `yaml:"broker"`
	Topics          config.Topics `yaml:"topics"`
	MonthlyExpense  string        `yaml:"monthly_expense"`
	AnnualInflation string        `yaml:"annual_inflation"`
	SleepMinutes    int           `yaml:"sleep_minutes"`
	StateFile       string        `yaml:"state_file"`
}

// RunWizard walks the user through the configuration and writes it to path.
func RunWizard(path string) error {
	var (
		brokerAddr   = "tcp://192.168.1.10:1883"
		clientID     = config.DefaultClientID
		username     string
		password     string
		priceTopic   = config.DefaultPriceTopic
		balanceTopic = config.DefaultBalanceTopic
		expenseStr   = "2500"
		inflationStr = "0.07"
		sleepStr     = strconv.Itoa(config.DefaultSleepMinutes)
		confirm      bool
	)

	fmt.Println(headerStyle.Render("FREEDOM CLOCK SETUP"))

	fmt.Println(stepStyle.Render("STEP 1: BROKER"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Broker address").
				Description("MQTT endpoint, e.g. tcp://192.168.1.10:1883").
				Value(&brokerAddr).
				Validate(requireNonEmpty("broker address")),
			huh.NewInput().
				Title("Client ID").
				Value(&clientID).
				Validate(requireNonEmpty("client id")),
			huh.NewInput().
				Title("Username (optional)").
				Value(&username),
			huh.NewInput().
				Title("Password (optional)").
				EchoMode(huh.EchoModePassword).
				Value(&password),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 2: TOPICS"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Price topic").
				Description("Publishers should use retained delivery").
				Value(&priceTopic).
				Validate(requireNonEmpty("price topic")),
			huh.NewInput().
				Title("Balance topic").
				Value(&balanceTopic).
				Validate(requireNonEmpty("balance topic")),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Println(stepStyle.Render("STEP 3: SPENDING MODEL"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly expense (USD)").
				Value(&expenseStr).
				Validate(requirePositiveDecimal),
			huh.NewInput().
				Title("Annual inflation (fraction, e.g. 0.07)").
				Value(&inflationStr).
				Validate(requireNonNegativeDecimal),
			huh.NewInput().
				Title("Sleep minutes between wakes").
				Value(&sleepStr).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n < 1 {
						return fmt.Errorf("must be a whole number of minutes, at least 1")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Write configuration to %s?", path)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return errors.New("setup aborted")
	}

	sleepMinutes, _ := strconv.Atoi(sleepStr)
	out := wizardFile{
		Broker: config.Broker{
			Addr:     brokerAddr,
			ClientID: clientID,
			Username: username,
			Password: password,
		},
		Topics: config.Topics{
			Price:   priceTopic,
			Balance: balanceTopic,
		},
		MonthlyExpense:  expenseStr,
		AnnualInflation: inflationStr,
		SleepMinutes:    sleepMinutes,
		StateFile:       config.DefaultStateFile,
	}

	payload, err := yaml.Marshal(out)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return errors.Wrap(err, "write config")
	}

	fmt.Println(stepStyle.Render("Configuration written. Run the clock with -config " + path))
	return nil
}

func requireNonEmpty(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func requirePositiveDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func requireNonNegativeDecimal(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a decimal number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}
