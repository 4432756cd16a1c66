package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_registrations_total",
			Help: "Total number of registration attempts",
		},
		[]string{"status"}, // status: success/duplicate/incomplete/error
	)

	answersRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_answers_total",
			Help: "Total number of answers recorded",
		},
		[]string{"mode", "correct"},
	)

	sessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_sessions_started_total",
			Help: "Total number of quiz runs started",
		},
		[]string{"mode"},
	)

	sessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_sessions_completed_total",
			Help: "Total number of quiz runs played to the end",
		},
		[]string{"mode"},
	)
)
