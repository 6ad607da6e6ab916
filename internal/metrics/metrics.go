package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoomsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seabattle_rooms_created_total",
		Help: "Number of rooms created since start.",
	})

	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "seabattle_active_rooms",
		Help: "Number of rooms currently live in the registry.",
	})

	Moves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "seabattle_moves_total",
		Help: "Number of accepted moves by outcome.",
	}, []string{"outcome"})

	ChatMessages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seabattle_chat_messages_total",
		Help: "Number of chat messages appended to room logs.",
	})

	MatchesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "seabattle_matches_finished_total",
		Help: "Number of matches that reached game over.",
	})
)

const (
	OutcomeHit  = "hit"
	OutcomeMiss = "miss"
)
