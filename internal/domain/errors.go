package domain

import "errors"

// ConfigError represents a configuration invariant violation. These fail
// fast at startup and are never retried per-tick.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrPlayerNotFound is returned when a player id is not in the market table.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrMarketHalted is returned when trading is attempted on a halted instrument.
	ErrMarketHalted = errors.New("trading halted")

	// ErrInsufficientFunds is returned when a buy exceeds the account cash.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInsufficientShares is returned when a sell exceeds the held position.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrConfigNotFound is returned when the configuration file is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)
