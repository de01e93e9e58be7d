package calib

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/solospatial/photogrammetry/geodesy"
	"github.com/solospatial/photogrammetry/sensor"
	"github.com/solospatial/photogrammetry/transform"
)

func writeJSONFile(t *testing.T, name string, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	test.That(t, err, test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), name)
	test.That(t, os.WriteFile(path, data, 0o600), test.ShouldBeNil)
	return path
}

func TestReadCameraFromJSONFile(t *testing.T) {
	intrinsics := transform.PinholeCameraIntrinsics{
		Width: 1920, Height: 1080, Fx: 1000, Fy: 1000, Ppx: 960, Ppy: 540,
	}

	t.Run("pinhole with brown conrady", func(t *testing.T) {
		path := writeJSONFile(t, "cam.json", CameraConfig{
			Model:      PinholeModel,
			Intrinsics: intrinsics,
			Distortion: &DistortionConfig{
				Type:       transform.BrownConradyDistortionType,
				Parameters: []float64{-0.1, 0.01, 0.0, 0.001, -0.001},
			},
		})
		cam, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldBeNil)
		w, h := cam.ImageSize()
		test.That(t, w, test.ShouldEqual, 1920)
		test.That(t, h, test.ShouldEqual, 1080)

		px, ok := cam.Project(r3.Vector{X: 0.1, Y: 0.1, Z: 1.0})
		test.That(t, ok, test.ShouldBeTrue)
		ray, err := cam.Unproject(px)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, ray.Z, test.ShouldBeGreaterThan, 0.0)
	})

	t.Run("ideal pinhole", func(t *testing.T) {
		path := writeJSONFile(t, "cam.json", CameraConfig{Model: PinholeModel, Intrinsics: intrinsics})
		cam, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldBeNil)
		px, ok := cam.Project(r3.Vector{X: 0.5, Y: 0.3, Z: 1.0})
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, px.X, test.ShouldAlmostEqual, 1460.0, 1e-6)
		test.That(t, px.Y, test.ShouldAlmostEqual, 840.0, 1e-6)
	})

	t.Run("fisheye", func(t *testing.T) {
		path := writeJSONFile(t, "cam.json", CameraConfig{
			Model:      FisheyeModel,
			Intrinsics: intrinsics,
			Distortion: &DistortionConfig{
				Type:       transform.KannalaBrandtDistortionType,
				Parameters: []float64{0.01, 0.001, 0.0, 0.0},
			},
		})
		cam, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldBeNil)
		_, ok := cam.Project(r3.Vector{X: 0.3, Y: 0.1, Z: 1.0})
		test.That(t, ok, test.ShouldBeTrue)
	})

	t.Run("fisheye rejects wrong distortion", func(t *testing.T) {
		path := writeJSONFile(t, "cam.json", CameraConfig{
			Model:      FisheyeModel,
			Intrinsics: intrinsics,
			Distortion: &DistortionConfig{Type: transform.BrownConradyDistortionType},
		})
		_, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("unknown model", func(t *testing.T) {
		path := writeJSONFile(t, "cam.json", CameraConfig{Model: "orthographic", Intrinsics: intrinsics})
		_, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadCameraFromJSONFile(filepath.Join(t.TempDir(), "nope.json"))
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		test.That(t, os.WriteFile(path, []byte("{not json"), 0o600), test.ShouldBeNil)
		_, err := ReadCameraFromJSONFile(path)
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestReadRPCFromJSONFile(t *testing.T) {
	coeffs := sensor.RPCCoefficients{
		LatOff: 39.0, LatScale: 1.0,
		LonOff: -77.0, LonScale: 1.0,
		HeightOff: 100.0, HeightScale: 500.0,
		LineOff: 5000.0, LineScale: 5000.0,
		SampOff: 5000.0, SampScale: 5000.0,
	}
	coeffs.LineNumCoeff[1] = 1.0
	coeffs.LineDenCoeff[0] = 1.0
	coeffs.SampNumCoeff[2] = 1.0
	coeffs.SampDenCoeff[0] = 1.0

	path := writeJSONFile(t, "rpc.json", coeffs)
	model, err := ReadRPCFromJSONFile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Coefficients(), test.ShouldResemble, coeffs)

	line, samp, err := model.LLAToImage(geodesy.LLACoord{Lat: 39.1, Lon: -76.9, Alt: 100.0})
	test.That(t, err, test.ShouldBeNil)
	got, err := model.ImageToLLA(line, samp, 100.0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.Lat, test.ShouldAlmostEqual, 39.1, 1e-3)
	test.That(t, got.Lon, test.ShouldAlmostEqual, -76.9, 1e-3)
}
