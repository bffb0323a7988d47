package ports

import (
	"transientfit/domain/transient"
)

// LightCurveReader ingests catalog light-curve data into a transient.
type LightCurveReader interface {
	ReadLightCurve(path string, mode transient.DataMode) (*transient.Transient, error)
}
