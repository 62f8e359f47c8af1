package engine

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/pkg/errors"
	"github.com/stretchr/testify/suite"
	"gopkg.in/yaml.v3"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) TestUnmarshalYAML() {
	data := `
symbol: AAPL
short_window: 20
long_window: 50
stop_loss_pct: 1.0
take_profit_pct: 50.0
initial_capital: 10000
start_time: 2023-01-01T00:00:00Z
end_time: 2023-12-31T00:00:00Z
`

	var cfg Config
	err := yaml.Unmarshal([]byte(data), &cfg)
	suite.Require().NoError(err)

	suite.Equal("AAPL", cfg.Symbol)
	suite.Equal(20, cfg.ShortWindow)
	suite.Equal(50, cfg.LongWindow)
	suite.InDelta(1.0, cfg.StopLossPct, 1e-9)
	suite.InDelta(50.0, cfg.TakeProfitPct, 1e-9)
	suite.InDelta(10000.0, cfg.InitialCapital, 1e-9)
	suite.True(cfg.StartTime.IsSome())
	suite.True(cfg.EndTime.IsSome())
	suite.Equal(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartTime.Unwrap())
}

func (suite *ConfigTestSuite) TestUnmarshalYAMLWithoutTimeRange() {
	data := `
symbol: AAPL
short_window: 20
long_window: 50
stop_loss_pct: 1.0
take_profit_pct: 50.0
initial_capital: 10000
`

	var cfg Config
	err := yaml.Unmarshal([]byte(data), &cfg)
	suite.Require().NoError(err)

	suite.True(cfg.StartTime.IsNone())
	suite.True(cfg.EndTime.IsNone())
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestMarshalRoundTrip() {
	cfg := DefaultConfig()
	cfg.Symbol = "MSFT"
	cfg.StartTime = optional.Some(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))

	data, err := yaml.Marshal(cfg)
	suite.Require().NoError(err)

	var decoded Config
	suite.Require().NoError(yaml.Unmarshal(data, &decoded))
	suite.Equal(cfg, decoded)
}

func (suite *ConfigTestSuite) TestValidateRejectsBadParameters() {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing symbol", func(c *Config) { c.Symbol = "" }},
		{"zero short window", func(c *Config) { c.ShortWindow = 0 }},
		{"negative long window", func(c *Config) { c.LongWindow = -3 }},
		{"negative stop loss", func(c *Config) { c.StopLossPct = -1 }},
		{"negative take profit", func(c *Config) { c.TakeProfitPct = -1 }},
		{"zero capital", func(c *Config) { c.InitialCapital = 0 }},
		{"start after end", func(c *Config) {
			c.StartTime = optional.Some(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC))
			c.EndTime = optional.Some(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
		}},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			cfg := DefaultConfig()
			cfg.Symbol = "AAPL"
			tc.mutate(&cfg)

			err := cfg.Validate()
			suite.Require().Error(err)
			suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func (suite *ConfigTestSuite) TestValidateAcceptsDefaults() {
	cfg := DefaultConfig()
	cfg.Symbol = "AAPL"
	suite.NoError(cfg.Validate())
}

func (suite *ConfigTestSuite) TestGenerateSchemaJSON() {
	cfg := DefaultConfig()

	schemaJSON, err := cfg.GenerateSchemaJSON()
	suite.Require().NoError(err)

	suite.Contains(schemaJSON, `"short_window"`)
	suite.Contains(schemaJSON, `"long_window"`)
	suite.Contains(schemaJSON, `"initial_capital"`)
	suite.Contains(schemaJSON, `"date-time"`)
}
