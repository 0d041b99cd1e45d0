package flow

import "strings"

// Flags classifies the value a pointer may hold at a program point.
type Flags uint16

const (
	// Unknown subsumes every other class.
	Unknown Flags = 1 << iota
	Uninitialized
	Null
	StaticLifetime
	DynamicLocal
	DynamicHeap
	IntegerAddress
	Invalid
)

// Unknown stands for "any class at all", so every predicate except
// IsUnknown answers true on an unknown value.
func (f Flags) IsUnknown() bool        { return f&Unknown != 0 }
func (f Flags) IsUninitialized() bool  { return f&(Uninitialized|Unknown) != 0 }
func (f Flags) IsNull() bool           { return f&(Null|Unknown) != 0 }
func (f Flags) IsStaticLifetime() bool { return f&(StaticLifetime|Unknown) != 0 }
func (f Flags) IsDynamicLocal() bool   { return f&(DynamicLocal|Unknown) != 0 }
func (f Flags) IsDynamicHeap() bool    { return f&(DynamicHeap|Unknown) != 0 }
func (f Flags) IsIntegerAddress() bool { return f&(IntegerAddress|Unknown) != 0 }
func (f Flags) IsInvalid() bool        { return f&(Invalid|Unknown) != 0 }

var flagNames = []struct {
	flag Flags
	name string
}{
	{Unknown, "unknown"},
	{Uninitialized, "uninitialized"},
	{Null, "null"},
	{StaticLifetime, "static"},
	{DynamicLocal, "dynamic-local"},
	{DynamicHeap, "dynamic-heap"},
	{IntegerAddress, "integer-address"},
	{Invalid, "invalid"},
}

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "+")
}
