// Package metrics defines the Prometheus instruments for the auth flows.
// A standalone package so HTTP and service layers can both record without
// import cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_registrations_total",
		Help: "Registration attempts by result (ok|conflict|error)",
	}, []string{"result"})

	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_logins_total",
		Help: "Login attempts by result (ok|unauthorized|error) and kind (password|federated)",
	}, []string{"result", "kind"})

	Refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_token_refreshes_total",
		Help: "Refresh rotations by result (ok|unauthorized)",
	}, []string{"result"})

	Logouts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "authcore_logouts_total",
		Help: "Logout calls (always succeed)",
	})

	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "authcore_user_cache_lookups_total",
		Help: "User lookup cache outcomes (hit|miss)",
	}, []string{"outcome"})
)

// Register adds the auth metrics to reg (default registry when nil).
// Re-registration is tolerated so tests can call it repeatedly.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{Registrations, Logins, Refreshes, Logouts, CacheLookups} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
