// Package calib loads camera and RPC sensor parameter blocks from JSON files.
//
// The JSON schemas here are this project's own serialization of its parameter types.
// Extracting the numbers out of image or sensor metadata formats belongs to external
// tooling, which is expected to emit these files.
package calib

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/solospatial/photogrammetry/sensor"
	"github.com/solospatial/photogrammetry/transform"
)

// Camera model names accepted in a CameraConfig.
const (
	PinholeModel = "pinhole"
	FisheyeModel = "fisheye"
)

// DistortionConfig names a distortion model and carries its coefficients in order.
type DistortionConfig struct {
	Type       transform.DistortionType `json:"type"`
	Parameters []float64                `json:"parameters"`
}

// CameraConfig is the JSON schema for a calibrated camera.
type CameraConfig struct {
	Model      string                            `json:"model"`
	Intrinsics transform.PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion *DistortionConfig                 `json:"distortion,omitempty"`
}

// CameraFromConfig builds a CameraModel out of a parsed config.
func CameraFromConfig(conf *CameraConfig) (transform.CameraModel, error) {
	switch conf.Model {
	case PinholeModel:
		distortion := transform.Distorter(&transform.NoDistortion{})
		if conf.Distortion != nil {
			var err error
			distortion, err = transform.NewDistorter(conf.Distortion.Type, conf.Distortion.Parameters)
			if err != nil {
				return nil, err
			}
		}
		return transform.NewPinholeCamera(conf.Intrinsics, distortion)
	case FisheyeModel:
		params := []float64{}
		if conf.Distortion != nil {
			if conf.Distortion.Type != transform.KannalaBrandtDistortionType {
				return nil, errors.Errorf("fisheye camera requires %q distortion, got %q",
					transform.KannalaBrandtDistortionType, conf.Distortion.Type)
			}
			params = conf.Distortion.Parameters
		}
		distortion, err := transform.NewKannalaBrandt(params)
		if err != nil {
			return nil, err
		}
		return transform.NewFisheyeCamera(conf.Intrinsics, distortion)
	default:
		return nil, errors.Errorf("do not know how to build %q camera model", conf.Model)
	}
}

// ReadCameraFromJSONFile takes in a file path to a JSON and turns it into a CameraModel.
func ReadCameraFromJSONFile(jsonPath string) (transform.CameraModel, error) {
	conf := &CameraConfig{}
	if err := readJSONFile(jsonPath, conf); err != nil {
		return nil, err
	}
	return CameraFromConfig(conf)
}

// ReadRPCFromJSONFile takes in a file path to a JSON and turns it into an RPCModel.
func ReadRPCFromJSONFile(jsonPath string) (*sensor.RPCModel, error) {
	coeffs := &sensor.RPCCoefficients{}
	if err := readJSONFile(jsonPath, coeffs); err != nil {
		return nil, err
	}
	return sensor.NewRPCModel(*coeffs), nil
}

func readJSONFile(jsonPath string, dst interface{}) error {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return errors.Wrap(err, "error reading JSON data")
	}
	if err := json.Unmarshal(byteValue, dst); err != nil {
		return errors.Wrap(err, "error parsing JSON string")
	}
	return nil
}
