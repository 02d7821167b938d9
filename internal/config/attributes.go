package config

import (
	"strconv"
	"strings"

	"github.com/san-kum/robocore/internal/robot"
)

// Attributes holds the textual key/value pairs of a variant element.
type Attributes map[string]string

func (a Attributes) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Attributes) String(name string) (string, error) {
	v, ok := a[name]
	if !ok {
		return "", robot.NewConfigError(name, "", nil)
	}
	return v, nil
}

func (a Attributes) StringOr(name, def string) string {
	if v, ok := a[name]; ok {
		return v
	}
	return def
}

func (a Attributes) Float(name string) (float64, error) {
	v, ok := a[name]
	if !ok {
		return 0, robot.NewConfigError(name, "", nil)
	}
	return parseFloat(name, v)
}

func (a Attributes) FloatOr(name string, def float64) (float64, error) {
	v, ok := a[name]
	if !ok {
		return def, nil
	}
	return parseFloat(name, v)
}

func (a Attributes) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok {
		return 0, robot.NewConfigError(name, "", nil)
	}
	return parseInt(name, v)
}

func (a Attributes) IntOr(name string, def int) (int, error) {
	v, ok := a[name]
	if !ok {
		return def, nil
	}
	return parseInt(name, v)
}

// Flag is true for "1" and "true"; anything else, including a missing
// attribute, is false.
func (a Attributes) Flag(name string) bool {
	switch strings.TrimSpace(strings.ToLower(a[name])) {
	case "1", "true":
		return true
	}
	return false
}

func parseFloat(name, v string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, robot.NewConfigError(name, v, err)
	}
	return f, nil
}

func parseInt(name, v string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, robot.NewConfigError(name, v, err)
	}
	return i, nil
}
