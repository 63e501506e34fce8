// Package metrics holds the Prometheus instruments exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "estoque"

// Sign-in results.
const (
	SignInAuthorized   = "authorized"
	SignInUnauthorized = "unauthorized"
	SignInError        = "error"
)

var (
	SignInAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sign_in_attempts_total",
		Help:      "Sign-in attempts by result.",
	}, []string{"result"})

	UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Users successfully registered.",
	})

	ProductMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Successful product writes by operation.",
	}, []string{"operation"})
)
