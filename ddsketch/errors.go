// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2020 Datadog, Inc.

package ddsketch

import "fmt"

// InvalidArgumentError is returned by AddWithCount (and Add) when a weight
// is non-positive or a value is NaN or infinite. The constructors report an
// out-of-range relative accuracy with the mapping package's plain error,
// not with this type, and GetQuantileValue reports an out-of-range quantile
// by returning false rather than an error.
type InvalidArgumentError struct {
	Param  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("ddsketch: invalid argument %s: %s", e.Param, e.Reason)
}

func invalidArgument(param, reason string) error {
	return &InvalidArgumentError{Param: param, Reason: reason}
}

// IncompatibleParametersError is returned by DDSketch.Merge when the two
// sketches were built with index mappings that can't be reconciled
// (different mapping types, gammas or offsets).
type IncompatibleParametersError struct {
	Reason string
}

func (e *IncompatibleParametersError) Error() string {
	return fmt.Sprintf("ddsketch: incompatible parameters: %s", e.Reason)
}

func incompatibleParameters(reason string) error {
	return &IncompatibleParametersError{Reason: reason}
}
