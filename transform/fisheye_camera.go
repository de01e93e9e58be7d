package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// FisheyeCamera is a wide field-of-view camera using the equidistant (Kannala-Brandt)
// distortion model. Immutable once constructed.
type FisheyeCamera struct {
	PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion              *KannalaBrandt `json:"distortion"`
}

// NewFisheyeCamera returns a fisheye camera from intrinsics and equidistant
// distortion coefficients.
func NewFisheyeCamera(intrinsics PinholeCameraIntrinsics, distortion *KannalaBrandt) (*FisheyeCamera, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	if err := distortion.CheckValid(); err != nil {
		return nil, err
	}
	return &FisheyeCamera{intrinsics, distortion}, nil
}

// Project maps a camera-frame point to pixel coordinates, returning false for points
// behind the camera.
func (cam *FisheyeCamera) Project(ptCamera r3.Vector) (r2.Point, bool) {
	return projectThroughDistortion(&cam.PinholeCameraIntrinsics, cam.Distortion, ptCamera)
}

// Unproject maps pixel coordinates to a unit ray in the camera frame.
func (cam *FisheyeCamera) Unproject(px r2.Point) (r3.Vector, error) {
	return unprojectThroughDistortion(&cam.PinholeCameraIntrinsics, cam.Distortion, px)
}

// ImageSize returns the width and height the camera is calibrated for.
func (cam *FisheyeCamera) ImageSize() (int, int) {
	return cam.Width, cam.Height
}
