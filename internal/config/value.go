package config

import "time"

// StringValue represents a string configuration value with its source.
type StringValue struct {
	Value  string
	Source ConfigSource
}

// BoolValue represents a bool configuration value with its source.
type BoolValue struct {
	Value  bool
	Source ConfigSource
}

// StringsValue represents a string list configuration value with its source.
type StringsValue struct {
	Value  []string
	Source ConfigSource
}

// DurationValue represents a duration configuration value with its source.
type DurationValue struct {
	Value  time.Duration
	Source ConfigSource
}

// NewStringValue creates a new StringValue with default source.
func NewStringValue(value string) StringValue {
	return StringValue{Value: value, Source: SourceDefault}
}

// NewBoolValue creates a new BoolValue with default source.
func NewBoolValue(value bool) BoolValue {
	return BoolValue{Value: value, Source: SourceDefault}
}

// NewStringsValue creates a new StringsValue with default source.
func NewStringsValue(value ...string) StringsValue {
	return StringsValue{Value: value, Source: SourceDefault}
}

// NewDurationValue creates a new DurationValue with default source.
func NewDurationValue(value time.Duration) DurationValue {
	return DurationValue{Value: value, Source: SourceDefault}
}
