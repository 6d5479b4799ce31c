package gateway

import (
	"errors"
	"fmt"
)

// ErrUnsupportedGateway indicates a configuration error: a gateway name
// outside the closed, enumerable set.
var ErrUnsupportedGateway = errors.New("unsupported payment gateway")

// Selector maps a configured gateway name to its implementation. The set
// is closed and fixed at construction.
type Selector struct {
	gateways map[string]PaymentGateway
}

func NewSelector(gateways ...PaymentGateway) *Selector {
	m := make(map[string]PaymentGateway, len(gateways))
	for _, g := range gateways {
		m[g.Name()] = g
	}
	return &Selector{gateways: m}
}

func (s *Selector) Select(name string) (PaymentGateway, error) {
	g, ok := s.gateways[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGateway, name)
	}
	return g, nil
}

func (s *Selector) Names() []string {
	names := make([]string, 0, len(s.gateways))
	for name := range s.gateways {
		names = append(names, name)
	}
	return names
}
