// Package config holds the runtime configuration of the extractor.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is populated from CLI flags and their environment fallbacks.
type Config struct {
	Addr string `validate:"required"`

	Concurrency int `validate:"gte=1,lte=64"`
	LinkLimit   int `validate:"gte=1,lte=500"`

	HTTPTimeout time.Duration `validate:"gt=0"`
	MaxRetries  int           `validate:"gte=0,lte=5"`
	RateLimit   float64       `validate:"gte=0"`
	RateBurst   int           `validate:"gte=0"`

	RenderBackend     string        `validate:"oneof=playwright chromedp none"`
	SettleInterval    time.Duration `validate:"gt=0"`
	NavigationTimeout time.Duration `validate:"gt=0"`
	Headless          bool

	LogLevel  string `validate:"omitempty,oneof=trace debug info warn warning error off disabled"`
	LogFormat string `validate:"omitempty,oneof=console json"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}

	if c.Concurrency == 0 {
		c.Concurrency = 4
	}

	if c.LinkLimit == 0 {
		c.LinkLimit = 15
	}

	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = 10 * time.Second
	}

	if c.RenderBackend == "" {
		c.RenderBackend = "playwright"
	}

	c.RenderBackend = strings.ToLower(c.RenderBackend)

	if c.SettleInterval == 0 {
		c.SettleInterval = 2 * time.Second
	}

	if c.NavigationTimeout == 0 {
		c.NavigationTimeout = 30 * time.Second
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field in a readable form.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]

		return fmt.Errorf("invalid %s: %v does not satisfy %s", strings.ToLower(fe.Field()), fe.Value(), fe.Tag())
	}

	return err
}
