package internal

import "expvar"

var (
	requestsTotal       = expvar.NewMap("gitcord_requests_total")
	ignoredTotal        = expvar.NewMap("gitcord_ignored_total")
	authFailuresTotal   = expvar.NewInt("gitcord_auth_failures_total")
	deliveryErrorsTotal = expvar.NewMap("gitcord_delivery_errors_total")
)

func IncRequest(kind string) {
	requestsTotal.Add(kind, 1)
}

func IncIgnored(kind string) {
	ignoredTotal.Add(kind, 1)
}

func IncAuthFailure() {
	authFailuresTotal.Add(1)
}

func IncDeliveryError(kind string) {
	deliveryErrorsTotal.Add(kind, 1)
}
