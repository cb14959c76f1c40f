package enum

import (
	"fmt"
	"reflect"
	"strings"
)

var registry = map[reflect.Type]any{}

type members[T comparable] struct {
	byName map[string]T
	order  []T
}

// New registers value as a member of its enum type. Members must be registered at
// package initialization, the registry is not safe for concurrent writes.
func New[T comparable](value T) T {
	t := reflect.TypeOf(value)
	m, ok := registry[t].(*members[T])
	if !ok {
		m = &members[T]{byName: make(map[string]T)}
		registry[t] = m
	}

	name := fmt.Sprint(value)
	if _, ok := m.byName[name]; !ok {
		m.order = append(m.order, value)
	}
	m.byName[name] = value

	return value
}

func lookup[T comparable]() (*members[T], bool) {
	var zero T
	m, ok := registry[reflect.TypeOf(zero)].(*members[T])
	return m, ok
}

// ToEnum parses s as a registered member of T.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	m, ok := lookup[T]()
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	v, ok := m.byName[s]
	if !ok {
		return zero, fmt.Errorf("not found value %s in enum %T, expected one of %s", s, zero, Join[T]())
	}

	return v, nil
}

// Values returns members of T in registration order.
func Values[T comparable]() []T {
	m, ok := lookup[T]()
	if !ok {
		return nil
	}

	return append([]T(nil), m.order...)
}

// Join lists members of T separated by commas, for error messages.
func Join[T comparable]() string {
	values := Values[T]()
	names := make([]string, 0, len(values))
	for _, v := range values {
		names = append(names, fmt.Sprint(v))
	}

	return strings.Join(names, ", ")
}
