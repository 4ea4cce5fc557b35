package srs

import (
	"errors"
	"fmt"

	"github.com/srgulbay/flashbox/internal/domain"
)

// ErrInvalidParams is returned when a box interval table is unusable.
var ErrInvalidParams = errors.New("invalid scheduler params")

// DefaultBoxIntervalDays is the review interval, in days, that follows a
// correct answer landing an item in box N (index N-1).
var DefaultBoxIntervalDays = [domain.MaxBoxNumber]int{1, 3, 7, 14, 30}

// Params defines all configurable parameters for the box scheduler
type Params struct {
	// BoxIntervalDays[i] is the interval for box i+1. Must be strictly increasing.
	BoxIntervalDays [domain.MaxBoxNumber]int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
// Zero entries keep the default interval for that box.
type ParamsConfig struct {
	BoxIntervalDays [domain.MaxBoxNumber]int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		BoxIntervalDays: DefaultBoxIntervalDays,
	}
}

// NewParams creates a new Params instance with custom configuration
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	for i, days := range config.BoxIntervalDays {
		if days != 0 {
			params.BoxIntervalDays[i] = days
		}
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	return params, nil
}

// Validate checks that every interval is positive and that the table grows
// strictly with the box number.
func (p *Params) Validate() error {
	prev := 0
	for i, days := range p.BoxIntervalDays {
		if days <= prev {
			return fmt.Errorf("%w: box %d interval %d must be greater than %d",
				ErrInvalidParams, i+1, days, prev)
		}
		prev = days
	}
	return nil
}

// IntervalDays returns the interval for the given box, clamping out of range
// boxes to the nearest valid one.
func (p *Params) IntervalDays(box int) int {
	if box < domain.MinBoxNumber {
		box = domain.MinBoxNumber
	}
	if box > domain.MaxBoxNumber {
		box = domain.MaxBoxNumber
	}
	return p.BoxIntervalDays[box-1]
}
