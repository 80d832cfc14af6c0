// Package config reads the LOCKSTEP_* settings from the environment and from
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sarchlab/lockstep/pacing"
	"github.com/sarchlab/lockstep/sim/timing"
)

// Prefix is prepended to every variable name.
const Prefix = "LOCKSTEP_"

// DefaultEnvFile is loaded by Load when it exists and no file is named.
const DefaultEnvFile = ".env"

// Names of the variables, without the prefix.
const (
	KeyTimestep        = "TIMESTEP"
	KeyDesiredSpeed    = "DESIRED_SPEED"
	KeyTickRate        = "TICK_RATE"
	KeyCatchUp         = "CATCH_UP"
	KeyMaxCatchUpSteps = "MAX_CATCH_UP_STEPS"
	KeyMonitor         = "MONITOR"
	KeyMonitorPort     = "MONITOR_PORT"
	KeyRecord          = "RECORD"
	KeyKeyboard        = "KEYBOARD"
)

// Config holds the settings of a session.
type Config struct {
	Timestep        timing.VTimeInSec
	DesiredSpeed    float64
	TickRate        timing.Freq
	Policy          pacing.Policy
	MaxCatchUpSteps int

	Monitor     bool
	MonitorPort int

	// Record is the database path prefix. Empty disables recording.
	Record string

	Keyboard bool
}

// Default returns the settings used when nothing is set.
func Default() Config {
	return Config{
		Timestep:        timing.DefaultTimestep,
		DesiredSpeed:    1.0,
		TickRate:        30 * timing.Hz,
		Policy:          pacing.SingleStep,
		MaxCatchUpSteps: pacing.DefaultMaxCatchUpSteps,
		Keyboard:        true,
	}
}

// Load reads the given .env files into the environment, without overriding
// variables that are already set, and then parses the environment. With no
// files, DefaultEnvFile is read if present.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			files = []string{DefaultEnvFile}
		}
	}

	if len(files) > 0 {
		err := godotenv.Load(files...)
		if err != nil {
			return Config{}, fmt.Errorf("config: %w", err)
		}
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv parses the settings through lookup, which has the signature of
// os.LookupEnv.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	c.Timestep = timing.VTimeInSec(p.float(KeyTimestep, float64(c.Timestep)))
	c.DesiredSpeed = p.float(KeyDesiredSpeed, c.DesiredSpeed)
	c.TickRate = timing.Freq(p.float(KeyTickRate, float64(c.TickRate)))
	c.MaxCatchUpSteps = p.int(KeyMaxCatchUpSteps, c.MaxCatchUpSteps)
	c.Monitor = p.bool(KeyMonitor, c.Monitor)
	c.MonitorPort = p.int(KeyMonitorPort, c.MonitorPort)
	c.Record = p.string(KeyRecord, c.Record)
	c.Keyboard = p.bool(KeyKeyboard, c.Keyboard)

	if p.bool(KeyCatchUp, false) {
		c.Policy = pacing.CatchUp
	}

	if p.err != nil {
		return Config{}, p.err
	}

	err := c.Validate()
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks the ranges of the settings.
func (c Config) Validate() error {
	switch {
	case !(c.Timestep > 0) || math.IsInf(float64(c.Timestep), 0):
		return errors.New("config: timestep must be positive")
	case !(c.DesiredSpeed >= 0) || math.IsInf(c.DesiredSpeed, 0):
		return errors.New("config: desired speed must not be negative")
	case !(c.TickRate > 0) || math.IsInf(float64(c.TickRate), 0):
		return errors.New("config: tick rate must be positive")
	case c.MaxCatchUpSteps < 1:
		return errors.New("config: max catch-up steps must be at least 1")
	case c.MonitorPort < 0 || c.MonitorPort > 65535:
		return fmt.Errorf("config: invalid monitor port %d", c.MonitorPort)
	}

	return nil
}

// parser keeps the first error so that the fields can be read in a row.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) raw(key string) (string, bool) {
	v, ok := p.lookup(Prefix + key)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("config: %s%s=%q: %w", Prefix, key, value, err)
	}
}

func (p *parser) string(key, def string) string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}

	return v
}

func (p *parser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, v, err)
		return def
	}

	return f
}

func (p *parser) int(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}

	i, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}

	return i
}

func (p *parser) bool(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return def
	}

	return b
}
