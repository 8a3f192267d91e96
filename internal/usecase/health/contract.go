package health

import "context"

// Checker reports availability of one dependency.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f CheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// Ping adapts a database pinger to Checker.
func Ping(p DBPinger) Checker {
	return CheckFunc(p.Ping)
}
