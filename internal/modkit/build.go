package modkit

import (
	"fmt"
	"net/http"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies Option funcs to an internal buildCfg and returns a plain struct
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// MustPorts returns the ports injected with WithPorts as T, panicking when they are missing
func MustPorts[T any](b Built) T {
	p, ok := b.Ports.(T)
	if !ok {
		panic(fmt.Sprintf("module %q requires %T ports, got %T", b.Name, p, b.Ports))
	}
	return p
}
