package fleet

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/sailnavsim/advancedboats/internal/fleet"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
