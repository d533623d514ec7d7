package condition

import (
	"fmt"
	"math"
)

// Interval is a closed interval on queue positions. Unbounded ends use the
// int64 extremes as sentinels.
type Interval struct {
	Low  int64
	High int64
}

// Overlaps reports whether two intervals share at least one position.
func (iv Interval) Overlaps(other Interval) bool {
	low := iv.Low
	if other.Low > low {
		low = other.Low
	}
	high := iv.High
	if other.High < high {
		high = other.High
	}
	return low <= high
}

// Resolve maps a rule onto its matching interval. Sentinel kinds return a
// nil interval and no error, as does a GREATER at the int64 ceiling, which
// matches no position.
//
// GREATER and LESS are exclusive at their stated bound: GREATER 5 matches
// positions 6 and up, LESS 20 matches positions up to 19. All other stated
// bounds are inclusive, so EQUAL 5 does not overlap GREATER 5 while
// RANGE 5-10 does.
func Resolve(r Rule) (*Interval, error) {
	switch r.Kind {
	case KindDefault, KindUnconditioned:
		return nil, nil

	case KindEqual:
		v, err := requireValue(r)
		if err != nil {
			return nil, err
		}
		return &Interval{Low: v, High: v}, nil

	case KindGreater:
		v, err := requireValue(r)
		if err != nil {
			return nil, err
		}
		if v == math.MaxInt64 {
			// No position lies above the int64 ceiling.
			return nil, nil
		}
		return &Interval{Low: v + 1, High: math.MaxInt64}, nil

	case KindLess:
		v, err := requireValue(r)
		if err != nil {
			return nil, err
		}
		return &Interval{Low: math.MinInt64, High: v - 1}, nil

	case KindRange:
		if r.MinValue == nil || r.MaxValue == nil {
			return nil, fmt.Errorf("%w: RANGE requires min_value and max_value", ErrIncompleteRule)
		}
		minV, maxV := *r.MinValue, *r.MaxValue
		if minV <= 0 || maxV <= 0 {
			return nil, fmt.Errorf("%w: RANGE bounds must be positive", ErrIncompleteRule)
		}
		if minV >= maxV {
			return nil, fmt.Errorf("%w: min_value %d must be less than max_value %d", ErrIncompleteRule, minV, maxV)
		}
		return &Interval{Low: minV, High: maxV}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOperator, r.Kind)
	}
}

func requireValue(r Rule) (int64, error) {
	if r.Value == nil {
		return 0, fmt.Errorf("%w: %s requires a value", ErrIncompleteRule, r.Kind)
	}
	if *r.Value <= 0 {
		return 0, fmt.Errorf("%w: value must be positive, got %d", ErrIncompleteRule, *r.Value)
	}
	return *r.Value, nil
}
