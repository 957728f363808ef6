package observe

import "fmt"

// Instruments bundles the telemetry an interceptor needs. The zero value is
// not usable; build one with InstrumentsFromObserver or NopInstruments.
type Instruments struct {
	Tracer  Tracer
	Metrics Metrics
	Logger  Logger
}

// InstrumentsFromObserver derives Instruments from obs.
func InstrumentsFromObserver(obs Observer) (Instruments, error) {
	if obs == nil {
		return Instruments{}, ErrNilObserver
	}
	m, err := NewMetrics(obs.Meter())
	if err != nil {
		return Instruments{}, fmt.Errorf("observe: create metrics: %w", err)
	}
	return Instruments{
		Tracer:  NewTracer(obs.Tracer()),
		Metrics: m,
		Logger:  obs.Logger(),
	}, nil
}

// NopInstruments returns Instruments that record nothing.
func NopInstruments() Instruments {
	return Instruments{
		Tracer:  nopTracer{},
		Metrics: nopMetrics{},
		Logger:  NopLogger(),
	}
}

// Complete returns i with nil members replaced by no-ops.
func (i Instruments) Complete() Instruments {
	if i.Tracer == nil {
		i.Tracer = nopTracer{}
	}
	if i.Metrics == nil {
		i.Metrics = nopMetrics{}
	}
	if i.Logger == nil {
		i.Logger = NopLogger()
	}
	return i
}
