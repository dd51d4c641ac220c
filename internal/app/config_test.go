package app

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/invoicing/internal/invoicing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "en", cfg.Locale)
	require.True(t, cfg.StockFailOpen)
	require.False(t, cfg.IsProduction())

	rules := cfg.Rules()
	require.Equal(t, invoicing.DefaultRules(), rules)
	require.False(t, cfg.GuardConfig().FailClosed)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("INVOICE_VAT_RATES", "0,10,20")
	t.Setenv("INVOICE_DEFAULT_VAT_RATE", "10")
	t.Setenv("INVOICE_REQUIRE_UNIT_OF_MEASURE", "true")
	t.Setenv("INVOICE_STOCK_FAIL_OPEN", "false")
	t.Setenv("INVOICE_LOCALE", "id")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.True(t, cfg.IsProduction())
	require.Equal(t, "id", cfg.Locale)

	rules := cfg.Rules()
	require.True(t, rules.RequireUnitOfMeasure)
	require.True(t, rules.AllowsRate(invoicing.VATRate(10)))
	require.Equal(t, invoicing.VATRate(10), rules.DefaultVATRate)
	require.True(t, cfg.GuardConfig().FailClosed)
}

func TestLoadConfigRejectsUnknownDefaultRate(t *testing.T) {
	t.Setenv("INVOICE_VAT_RATES", "0,20")
	t.Setenv("INVOICE_DEFAULT_VAT_RATE", "7")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("INVOICE_VAT_RATES", "0,120")
	t.Setenv("INVOICE_DEFAULT_VAT_RATE", "0")
	_, err = LoadConfig()
	require.Error(t, err)
}

func TestNilConfigFallsBackToDefaults(t *testing.T) {
	var cfg *Config
	require.Equal(t, invoicing.DefaultRules(), cfg.Rules())
	require.False(t, cfg.GuardConfig().FailClosed)
}

func TestNewLoggerJSON(t *testing.T) {
	t.Setenv(testModeEnv, "")
	RefreshTestMode()

	buf := new(bytes.Buffer)
	logger := NewLoggerTo(buf, &Config{LogFormat: "json", LogLevel: "warn", AppEnv: "production"})
	logger.Info("hidden")
	logger.Warn("shown", "draft", "OUT-1")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), `"msg":"shown"`)
	require.Contains(t, buf.String(), `"draft":"OUT-1"`)
}
