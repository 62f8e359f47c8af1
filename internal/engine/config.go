package engine

import (
	"encoding/json"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rigelquant/smacross/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters of one simulation run. The strategy itself is
// fixed (short/long SMA crossover with percentage stop-loss/take-profit);
// only its parameters vary.
type Config struct {
	Symbol         string                     `yaml:"symbol" json:"symbol" validate:"required" jsonschema:"title=Symbol,description=Instrument symbol to simulate"`
	ShortWindow    int                        `yaml:"short_window" json:"short_window" validate:"required,gt=0" jsonschema:"title=Short Window,description=Short SMA window in bars,minimum=1"`
	LongWindow     int                        `yaml:"long_window" json:"long_window" validate:"required,gt=0" jsonschema:"title=Long Window,description=Long SMA window in bars,minimum=1"`
	StopLossPct    float64                    `yaml:"stop_loss_pct" json:"stop_loss_pct" validate:"gte=0" jsonschema:"title=Stop Loss,description=Stop-loss percentage below entry price,minimum=0"`
	TakeProfitPct  float64                    `yaml:"take_profit_pct" json:"take_profit_pct" validate:"gte=0" jsonschema:"title=Take Profit,description=Take-profit percentage above entry price,minimum=0"`
	InitialCapital float64                    `yaml:"initial_capital" json:"initial_capital" validate:"required,gt=0" jsonschema:"title=Initial Capital,description=Starting cash in USD,minimum=0"`
	StartTime      optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time,description=Optional start of the simulation period"`
	EndTime        optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time,description=Optional end of the simulation period"`
}

// rawConfig is the plain-pointer view used for YAML round-tripping of the
// optional time fields.
type rawConfig struct {
	Symbol         string     `yaml:"symbol"`
	ShortWindow    int        `yaml:"short_window"`
	LongWindow     int        `yaml:"long_window"`
	StopLossPct    float64    `yaml:"stop_loss_pct"`
	TakeProfitPct  float64    `yaml:"take_profit_pct"`
	InitialCapital float64    `yaml:"initial_capital"`
	StartTime      *time.Time `yaml:"start_time"`
	EndTime        *time.Time `yaml:"end_time"`
}

// UnmarshalYAML implements custom unmarshaling for Config.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw rawConfig
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.Symbol = raw.Symbol
	c.ShortWindow = raw.ShortWindow
	c.LongWindow = raw.LongWindow
	c.StopLossPct = raw.StopLossPct
	c.TakeProfitPct = raw.TakeProfitPct
	c.InitialCapital = raw.InitialCapital
	c.StartTime = optional.FromNillable(raw.StartTime)
	c.EndTime = optional.FromNillable(raw.EndTime)

	return nil
}

// MarshalYAML implements custom marshaling for Config.
func (c Config) MarshalYAML() (interface{}, error) {
	raw := rawConfig{
		Symbol:         c.Symbol,
		ShortWindow:    c.ShortWindow,
		LongWindow:     c.LongWindow,
		StopLossPct:    c.StopLossPct,
		TakeProfitPct:  c.TakeProfitPct,
		InitialCapital: c.InitialCapital,
	}

	if c.StartTime.IsSome() {
		t := c.StartTime.Unwrap()
		raw.StartTime = &t
	}

	if c.EndTime.IsSome() {
		t := c.EndTime.Unwrap()
		raw.EndTime = &t
	}

	return raw, nil
}

// Validate rejects a config before the loop starts: non-positive windows,
// non-positive starting cash, or a start time after the end time.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid simulation config", err)
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.StartTime.Unwrap().After(c.EndTime.Unwrap()) {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "start time %s is after end time %s",
			c.StartTime.Unwrap().Format("2006-01-02"), c.EndTime.Unwrap().Format("2006-01-02"))
	}

	return nil
}

// DefaultConfig returns a config with the conventional crossover parameters.
func DefaultConfig() Config {
	return Config{
		Symbol:         "",
		ShortWindow:    20,
		LongWindow:     50,
		StopLossPct:    1.0,
		TakeProfitPct:  50.0,
		InitialCapital: 10000,
		StartTime:      optional.None[time.Time](),
		EndTime:        optional.None[time.Time](),
	}
}

// GenerateSchema generates a JSON schema for the simulation config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "simulation-config"
	schema.Description = "Configuration schema for the SMA crossover simulation"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}

// GenerateSchemaJSON generates a JSON schema string for the simulation config.
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema, err := c.GenerateSchema()
	if err != nil {
		return "", err
	}

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
