package query

import (
	"time"

	"github.com/deepbluedave/csv-visualiser-sub000/app/interfaces"
	"github.com/deepbluedave/csv-visualiser-sub000/app/settings"
)

// Context carries everything the evaluators need about the loaded data.
// It is built once per load and passed explicitly to every call.
type Context struct {
	Headers interfaces.HeaderSet
	Truthy  []string
	Logger  interfaces.Logger

	// Location is assumed for dates without a zone when sorting; nil means UTC
	Location *time.Location

	truthySet map[string]bool
}

// NewContext builds a context for table. cfg may be nil (default truth values).
func NewContext(table *interfaces.Table, cfg *settings.Config, logger interfaces.Logger) *Context {
	return NewContextFor(table.HeaderSet(), cfg.TruthyValues(), logger)
}

// NewContextFor builds a context from its parts
func NewContextFor(headers interfaces.HeaderSet, truthy []string, logger interfaces.Logger) *Context {
	if len(truthy) == 0 {
		truthy = settings.DefaultTrueValues
	}
	c := &Context{
		Headers:   headers,
		Truthy:    truthy,
		Logger:    interfaces.OrNop(logger),
		truthySet: make(map[string]bool, len(truthy)),
	}
	for _, v := range truthy {
		c.truthySet[normalizeTruth(v)] = true
	}
	return c
}

func (c *Context) logger() interfaces.Logger {
	if c == nil {
		return interfaces.NopLogger{}
	}
	return interfaces.OrNop(c.Logger)
}

// Log writes through the context's logger; a nil context discards
func (c *Context) Log(level, message string) {
	c.logger().Log(level, message)
}

// IsTruthy reports whether value is one of the context's truth values
func (c *Context) IsTruthy(value string) bool {
	v := normalizeTruth(value)
	if v == "" {
		return false
	}
	if c == nil {
		return IsTruthy(value, nil)
	}
	if c.truthySet == nil {
		return IsTruthy(value, c.Truthy)
	}
	return c.truthySet[v]
}
