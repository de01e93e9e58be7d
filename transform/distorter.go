// Package transform provides geometric camera models: lens distortion models
// with their numerical inversion, and pinhole/fisheye projection built on top
// of them.
package transform

import (
	"math"

	"github.com/pkg/errors"
)

// DistortionType is the name of the distortion model.
type DistortionType string

const (
	// NoneDistortionType applies no distortion; coordinates pass through unchanged.
	NoneDistortionType = DistortionType("none")
	// BrownConradyDistortionType is for simple lenses of narrow field easily modeled as a pinhole camera.
	BrownConradyDistortionType = DistortionType("brown_conrady")
	// KannalaBrandtDistortionType is for wide-angle and fisheye lense distortion.
	KannalaBrandtDistortionType = DistortionType("kannala_brandt")
)

var (
	// ErrSingularJacobian is when the estimated Jacobian of the distortion model is numerically
	// degenerate at the current iterate, so the model is not locally invertible there.
	ErrSingularJacobian = errors.New("singular jacobian, distortion model is not locally invertible")
	// ErrNonConvergent is when distortion inversion exhausted its iteration budget without meeting
	// tolerance. The target point is likely outside the model's valid domain.
	ErrNonConvergent = errors.New("distortion inversion did not converge")
)

// Distorter defines a lens distortion model over normalized image coordinates.
// Transform applies the forward model and Undistort numerically inverts it.
type Distorter interface {
	ModelType() DistortionType
	CheckValid() error
	Parameters() []float64
	Transform(x, y float64) (float64, float64)
	Undistort(x, y float64) (float64, float64, error)
}

// InvalidDistortionError is used when the distortion_parameters are invalid.
func InvalidDistortionError(msg string) error {
	return errors.Wrapf(errors.New("invalid distortion_parameters"), msg)
}

// NewDistorter returns a Distorter given a valid DistortionType and its parameters.
func NewDistorter(distortionType DistortionType, parameters []float64) (Distorter, error) {
	switch distortionType {
	case NoneDistortionType:
		return &NoDistortion{}, nil
	case BrownConradyDistortionType:
		return NewBrownConrady(parameters)
	case KannalaBrandtDistortionType:
		return NewKannalaBrandt(parameters)
	default:
		return nil, errors.Errorf("do not know how to parse %q distortion model", distortionType)
	}
}

// NoDistortion applies no distortion to the input coordinates.
type NoDistortion struct{}

// ModelType returns the type of distortion model.
func (n *NoDistortion) ModelType() DistortionType { return NoneDistortionType }

// CheckValid returns nil; an identity model has no parameters to validate.
func (n *NoDistortion) CheckValid() error { return nil }

// Parameters returns the parameters of the distortion model as a list of floats.
func (n *NoDistortion) Parameters() []float64 { return []float64{} }

// Transform is the identity.
func (n *NoDistortion) Transform(x, y float64) (float64, float64) { return x, y }

// Undistort is the identity and always succeeds.
func (n *NoDistortion) Undistort(x, y float64) (float64, float64, error) { return x, y, nil }

// undistortion solver constants. The asymmetric residual tolerances reflect the
// differing sensitivities of the two axes and are part of the model contract.
const (
	undistortMaxIterations = 10
	undistortTolX          = 1e-8
	undistortTolY          = 1e-10
	undistortJacobianStep  = 1e-6
	undistortMinDet        = 1e-18
)

// invertTransform recovers the undistorted coordinates that the given model maps to
// (xDist, yDist), by Newton-Raphson with a forward finite-difference Jacobian and a
// Cramer's-rule 2x2 solve. The iterate starts at the distorted point itself.
func invertTransform(d Distorter, xDist, yDist float64) (float64, float64, error) {
	x, y := xDist, yDist

	for i := 0; i < undistortMaxIterations; i++ {
		fx, fy := d.Transform(x, y)
		rx := xDist - fx
		ry := yDist - fy

		if math.Abs(rx) < undistortTolX && math.Abs(ry) < undistortTolY {
			return x, y, nil
		}

		fxX, fyX := d.Transform(x+undistortJacobianStep, y)
		fxY, fyY := d.Transform(x, y+undistortJacobianStep)

		j11 := (fxX - fx) / undistortJacobianStep
		j21 := (fyX - fy) / undistortJacobianStep
		j12 := (fxY - fx) / undistortJacobianStep
		j22 := (fyY - fy) / undistortJacobianStep

		det := j11*j22 - j12*j21
		if math.Abs(det) < undistortMinDet {
			return 0, 0, ErrSingularJacobian
		}

		x += (j22*rx - j12*ry) / det
		y += (-j21*rx + j11*ry) / det
	}

	return 0, 0, ErrNonConvergent
}
