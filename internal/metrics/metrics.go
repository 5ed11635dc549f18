package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConflictChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "oficina_schedule_conflict_checks_total",
		Help: "Conflict checks executed, labelled by result.",
	}, []string{"result"})

	TotalRecalculations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficina_order_total_recalculations_total",
		Help: "Service order total recalculations executed.",
	})

	AppointmentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "oficina_appointments_created_total",
		Help: "Appointments successfully created.",
	})
)
