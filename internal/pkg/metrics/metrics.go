// Package metrics defines and registers the custom Prometheus metrics of the
// task manager API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default registry at package init via promauto.
// HTTP request metrics come from echoprometheus and are not declared here.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts accounts created through registration.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of registered user accounts.",
	},
)

// VerificationEmailsTotal counts verification mail deliveries.
// Label:
//   - result: "sent" or "failed"
var VerificationEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "verification_emails_total",
		Help:      "Total number of verification emails, by delivery result.",
	},
	[]string{"result"},
)

// RateLimitRejectedTotal counts requests refused by the auth rate limiter.
// Label:
//   - route: the echo route path (e.g. "/auth/login")
var RateLimitRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejected_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
	[]string{"route"},
)

// ── Task metrics ──────────────────────────────────────────────────────────────

// TasksCreatedTotal counts newly created tasks.
// Label:
//   - priority: "low", "medium", or "high"
var TasksCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created, by priority.",
	},
	[]string{"priority"},
)

// TaskStatusChangesTotal counts patches that set a task status.
// Label:
//   - status: the status written (e.g. "completed")
var TaskStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_status_changes_total",
		Help:      "Total number of task status updates, by new status.",
	},
	[]string{"status"},
)

// ── Cache metrics ─────────────────────────────────────────────────────────────

// CategoryCacheTotal counts category list cache lookups.
// Label:
//   - result: "hit", "miss", or "error" (Redis unavailable, served from Mongo)
var CategoryCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "category_cache_total",
		Help:      "Total number of category cache lookups, labelled by result.",
	},
	[]string{"result"},
)
