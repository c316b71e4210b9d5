// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package vartype

import (
	"fmt"
)

// NotSet is the string representation of a Variable that holds no value.
const NotSet = "not available"

type (
	// VarBool is a type alias for Variable[bool], representing a boolean value with initialization tracking.
	VarBool = Variable[bool]

	// VarString is a type alias for Variable[string], representing a string value with initialization tracking.
	VarString = Variable[string]
)

// Variable is a state cell that holds a value and tracks whether it was ever assigned.
type Variable[T any] struct {
	value T
	isset bool
}

// NewVariable creates and returns a new Variable instance initialized with the provided value.
func NewVariable[T any](value T) Variable[T] {
	return Variable[T]{
		isset: true,
		value: value,
	}
}

// Reset clears the value of the Variable and marks it as uninitialized.
func (v *Variable[T]) Reset() {
	var newVal T
	v.value = newVal
	v.isset = false
}

// Value retrieves the current value stored in the Variable.
func (v *Variable[T]) Value() T {
	return v.value
}

// Get returns the value and whether it was set.
func (v *Variable[T]) Get() (T, bool) {
	return v.value, v.isset
}

// Set assigns the provided value to the Variable and marks it as initialized.
func (v *Variable[T]) Set(val T) {
	v.value = val
	v.isset = true
}

// SetOnce assigns the value only if the Variable was never set. It reports whether the value
// was assigned.
func (v *Variable[T]) SetOnce(val T) bool {
	if v.isset {
		return false
	}
	v.Set(val)
	return true
}

// IsSet returns true if the Variable has been initialized with a value, otherwise false.
func (v *Variable[T]) IsSet() bool {
	return v.isset
}

// String returns a string representation of the Variable. If uninitialized, it returns NotSet.
func (v Variable[T]) String() string {
	if !v.isset {
		return NotSet
	}
	return fmt.Sprint(v.value)
}
