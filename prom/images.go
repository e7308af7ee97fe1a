package prom

import "github.com/prometheus/client_golang/prometheus"

var imageFetches = register(prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "todocal_image_fetches_total",
		Help: "Profile image downloads by outcome.",
	},
	[]string{"result"},
)).(*prometheus.CounterVec)

// Image fetch outcomes.
const (
	ImageFetchOK      = "ok"
	ImageFetchFailed  = "failed"
	ImageFetchSkipped = "skipped"
)

// ObserveImageFetch counts a profile image download with the given outcome.
func ObserveImageFetch(result string) {
	imageFetches.WithLabelValues(result).Inc()
}
