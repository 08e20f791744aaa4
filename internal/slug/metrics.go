package slug

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var slugCollisions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_slug_insert_collisions_total",
	Help: "Slug writes rejected by the unique constraint after a free probe.",
}, []string{"namespace"})
