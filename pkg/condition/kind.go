package condition

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOperator = errors.New("invalid operator")
	ErrIncompleteRule  = errors.New("incomplete rule")
)

// Kind is the operator of a template selection rule.
type Kind string

const (
	KindEqual         Kind = "EQUAL"
	KindGreater       Kind = "GREATER"
	KindLess          Kind = "LESS"
	KindRange         Kind = "RANGE"
	KindDefault       Kind = "DEFAULT"
	KindUnconditioned Kind = "UNCONDITIONED"
)

// ParseKind classifies a raw operator token. Unrecognized tokens fail with
// ErrInvalidOperator.
func ParseKind(token string) (Kind, error) {
	switch Kind(token) {
	case KindEqual, KindGreater, KindLess, KindRange, KindDefault, KindUnconditioned:
		return Kind(token), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, token)
	}
}

// IsSentinel reports whether the kind carries no numeric range. Sentinel
// rules never participate in overlap detection.
func (k Kind) IsSentinel() bool {
	return k == KindDefault || k == KindUnconditioned
}
