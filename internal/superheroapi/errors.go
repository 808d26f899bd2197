package superheroapi

import "errors"

var (
	// ErrUpstreamNotFound means the catalog answered but has no such hero.
	ErrUpstreamNotFound = errors.New("hero not found in catalog")
	// ErrUpstreamTransport covers network failures, non-2xx statuses,
	// undecodable bodies and an open circuit.
	ErrUpstreamTransport = errors.New("catalog transport error")
	ErrInvalidRecord     = errors.New("invalid catalog record")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrUpstreamNotFound)
}
