package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginSuccessTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_login_success_total",
		Help: "The total number of successful logins",
	})
	loginFailureTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_login_failure_total",
		Help: "The total number of failed logins",
	})
	accountLockoutsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dashboard_account_lockouts_total",
		Help: "The total number of login attempts rejected because the account was locked out",
	})
)
