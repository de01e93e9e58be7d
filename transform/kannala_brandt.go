package transform

import (
	"math"

	"github.com/pkg/errors"
)

// kannalaBrandtMinRadius is the radius below which the equidistant model is treated as
// the identity, avoiding a division by a near-zero radius at the image center.
const kannalaBrandtMinRadius = 1e-8

// KannalaBrandt is the equidistant (fisheye) distortion model: the distorted radius is a
// degree-9 odd polynomial in the incidence angle θ = atan(r).
type KannalaBrandt struct {
	K1 float64 `json:"k1"`
	K2 float64 `json:"k2"`
	K3 float64 `json:"k3"`
	K4 float64 `json:"k4"`
}

// NewKannalaBrandt takes in a slice of floats that will be passed into the struct in order.
func NewKannalaBrandt(inp []float64) (*KannalaBrandt, error) {
	if len(inp) > 4 {
		return nil, errors.Errorf("list of parameters too long, expected max 4, got %d", len(inp))
	}
	if len(inp) == 0 {
		return &KannalaBrandt{}, nil
	}
	for i := len(inp); i < 4; i++ { // fill missing values with 0.0
		inp = append(inp, 0.0)
	}
	return &KannalaBrandt{inp[0], inp[1], inp[2], inp[3]}, nil
}

// CheckValid checks if the fields for KannalaBrandt have valid inputs.
func (kb *KannalaBrandt) CheckValid() error {
	if kb == nil {
		return InvalidDistortionError("KannalaBrandt shaped distortion_parameters not provided")
	}
	return nil
}

// ModelType returns the type of distortion model.
func (kb *KannalaBrandt) ModelType() DistortionType {
	return KannalaBrandtDistortionType
}

// Parameters returns the parameters of the distortion model as a list of floats.
func (kb *KannalaBrandt) Parameters() []float64 {
	if kb == nil {
		return []float64{}
	}
	return []float64{kb.K1, kb.K2, kb.K3, kb.K4}
}

// Transform distorts the input normalized coordinates according to the equidistant model.
func (kb *KannalaBrandt) Transform(x, y float64) (float64, float64) {
	if kb == nil {
		return x, y
	}
	r := math.Sqrt(x*x + y*y)
	if r < kannalaBrandtMinRadius {
		return x, y
	}

	theta := math.Atan(r)
	theta2 := theta * theta
	theta4 := theta2 * theta2
	theta6 := theta4 * theta2
	theta8 := theta4 * theta4

	thetaD := theta * (1.0 + kb.K1*theta2 + kb.K2*theta4 + kb.K3*theta6 + kb.K4*theta8)
	scale := thetaD / r

	return x * scale, y * scale
}

// Undistort recovers the undistorted coordinates that Transform maps to the given
// point. It can fail with ErrSingularJacobian or ErrNonConvergent.
func (kb *KannalaBrandt) Undistort(x, y float64) (float64, float64, error) {
	return invertTransform(kb, x, y)
}
