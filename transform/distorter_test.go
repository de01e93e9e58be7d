package transform

import (
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestNewDistorter(t *testing.T) {
	for _, tc := range []struct {
		name       string
		modelType  DistortionType
		parameters []float64
	}{
		{"none", NoneDistortionType, nil},
		{"brown conrady", BrownConradyDistortionType, []float64{-0.1, 0.01, 0.0, 0.001, -0.001}},
		{"kannala brandt", KannalaBrandtDistortionType, []float64{0.01, 0.001, 0.0, 0.0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d, err := NewDistorter(tc.modelType, tc.parameters)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, d.ModelType(), test.ShouldEqual, tc.modelType)
			test.That(t, d.CheckValid(), test.ShouldBeNil)
			if tc.parameters != nil {
				test.That(t, d.Parameters(), test.ShouldResemble, tc.parameters)
			}
		})
	}

	t.Run("unknown model", func(t *testing.T) {
		_, err := NewDistorter(DistortionType("bogus"), nil)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "bogus")
	})

	t.Run("too many parameters", func(t *testing.T) {
		_, err := NewBrownConrady([]float64{1, 2, 3, 4, 5, 6})
		test.That(t, err, test.ShouldNotBeNil)
		_, err = NewKannalaBrandt([]float64{1, 2, 3, 4, 5})
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("short parameters pad with zero", func(t *testing.T) {
		bc, err := NewBrownConrady([]float64{-0.1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, bc.Parameters(), test.ShouldResemble, []float64{-0.1, 0, 0, 0, 0})
	})
}

func TestNoDistortionRoundTrip(t *testing.T) {
	d := &NoDistortion{}
	x, y := 0.123, -0.456
	xd, yd := d.Transform(x, y)
	test.That(t, xd, test.ShouldEqual, x)
	test.That(t, yd, test.ShouldEqual, y)
	xu, yu, err := d.Undistort(xd, yd)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, xu, test.ShouldAlmostEqual, x, 1e-12)
	test.That(t, yu, test.ShouldAlmostEqual, y, 1e-12)
}

func TestBrownConradyRoundTrip(t *testing.T) {
	bc := &BrownConrady{
		RadialK1:     -0.1,
		RadialK2:     0.01,
		RadialK3:     0.0,
		TangentialP1: 0.001,
		TangentialP2: -0.001,
	}
	for _, pt := range []struct{ x, y float64 }{
		{0.2, -0.15},
		{0.0, 0.0},
		{-0.3, 0.25},
		{0.05, 0.4},
	} {
		xd, yd := bc.Transform(pt.x, pt.y)
		xu, yu, err := bc.Undistort(xd, yd)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, xu, test.ShouldAlmostEqual, pt.x, 1e-6)
		test.That(t, yu, test.ShouldAlmostEqual, pt.y, 1e-6)
	}
}

func TestKannalaBrandtRoundTrip(t *testing.T) {
	kb := &KannalaBrandt{K1: 0.01, K2: 0.001, K3: 0.0, K4: 0.0}
	for _, pt := range []struct{ x, y float64 }{
		{0.3, 0.1},
		{-0.2, 0.35},
		{0.45, -0.45},
	} {
		xd, yd := kb.Transform(pt.x, pt.y)
		xu, yu, err := kb.Undistort(xd, yd)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, xu, test.ShouldAlmostEqual, pt.x, 1e-6)
		test.That(t, yu, test.ShouldAlmostEqual, pt.y, 1e-6)
	}
}

func TestKannalaBrandtCenterGuard(t *testing.T) {
	// inside the minimum-radius guard the model is the identity
	kb := &KannalaBrandt{K1: 0.5, K2: 0.5, K3: 0.5, K4: 0.5}
	xd, yd := kb.Transform(1e-9, -1e-9)
	test.That(t, xd, test.ShouldEqual, 1e-9)
	test.That(t, yd, test.ShouldEqual, -1e-9)
}

func TestUndistortNonConvergent(t *testing.T) {
	// extreme coefficients applied to a moderate target must be reported, not
	// silently mis-solved
	bc := &BrownConrady{
		RadialK1:     1e6,
		RadialK2:     1e6,
		RadialK3:     1e6,
		TangentialP1: 1.0,
		TangentialP2: -1.0,
	}
	_, _, err := bc.Undistort(10.0, 10.0)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNonConvergent), test.ShouldBeTrue)
}
