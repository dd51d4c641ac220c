package app

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/odyssey-erp/invoicing/internal/inventory"
	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	Locale               string `envconfig:"INVOICE_LOCALE" default:"en"`
	RequireUnitOfMeasure bool   `envconfig:"INVOICE_REQUIRE_UNIT_OF_MEASURE" default:"false"`
	VATRates             []int  `envconfig:"INVOICE_VAT_RATES" default:"0,20"`
	DefaultVATRate       int    `envconfig:"INVOICE_DEFAULT_VAT_RATE" default:"20"`
	StockFailOpen        bool   `envconfig:"INVOICE_STOCK_FAIL_OPEN" default:"true"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.VATRates) == 0 {
		return errors.New("at least one VAT rate must be configured")
	}
	for _, rate := range c.VATRates {
		if rate < 0 || rate >= 100 {
			return fmt.Errorf("VAT rate %d out of range", rate)
		}
	}
	if !c.Rules().AllowsRate(invoicing.VATRate(c.DefaultVATRate)) {
		return fmt.Errorf("default VAT rate %d is not one of %v", c.DefaultVATRate, c.VATRates)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Rules converts the invoice settings into validator rules. A nil config
// yields the defaults.
func (c *Config) Rules() invoicing.Rules {
	if c == nil {
		return invoicing.DefaultRules()
	}
	rates := make([]invoicing.VATRate, 0, len(c.VATRates))
	for _, rate := range c.VATRates {
		rates = append(rates, invoicing.VATRate(rate))
	}
	return invoicing.Rules{
		RequireUnitOfMeasure: c.RequireUnitOfMeasure,
		VATRates:             rates,
		DefaultVATRate:       invoicing.VATRate(c.DefaultVATRate),
	}
}

// GuardConfig returns the stock guard settings.
func (c *Config) GuardConfig() inventory.GuardConfig {
	if c == nil {
		return inventory.GuardConfig{}
	}
	return inventory.GuardConfig{FailClosed: !c.StockFailOpen}
}
