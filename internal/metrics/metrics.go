package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BookingsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitstream_bookings_total",
		Help: "Number of successful session bookings.",
	})
	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitstream_refunds_total",
		Help: "Number of booking refunds issued by session cancellations.",
	})
	StreamsStartedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitstream_streams_started_total",
		Help: "Number of live streams started.",
	})
	PurchasesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fitstream_purchases_total",
		Help: "Number of completed token package purchases.",
	})
)
