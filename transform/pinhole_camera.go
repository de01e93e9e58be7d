package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// PinholeCamera is a perspective camera with an optional lens distortion model applied
// in normalized image coordinates. Immutable once constructed.
type PinholeCamera struct {
	PinholeCameraIntrinsics `json:"intrinsic_parameters"`
	Distortion              Distorter `json:"distortion"`
}

// NewPinholeCamera returns a pinhole camera from intrinsics and a distortion model.
func NewPinholeCamera(intrinsics PinholeCameraIntrinsics, distortion Distorter) (*PinholeCamera, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, err
	}
	if distortion == nil {
		distortion = &NoDistortion{}
	}
	if err := distortion.CheckValid(); err != nil {
		return nil, err
	}
	return &PinholeCamera{intrinsics, distortion}, nil
}

// NewIdealPinholeCamera returns a pinhole camera with no distortion.
func NewIdealPinholeCamera(intrinsics PinholeCameraIntrinsics) (*PinholeCamera, error) {
	return NewPinholeCamera(intrinsics, &NoDistortion{})
}

// NewBrownConradyPinholeCamera returns a pinhole camera with Brown-Conrady distortion.
func NewBrownConradyPinholeCamera(intrinsics PinholeCameraIntrinsics, distortion *BrownConrady) (*PinholeCamera, error) {
	return NewPinholeCamera(intrinsics, distortion)
}

// Project maps a camera-frame point to pixel coordinates, returning false for points
// behind the camera.
func (cam *PinholeCamera) Project(ptCamera r3.Vector) (r2.Point, bool) {
	return projectThroughDistortion(&cam.PinholeCameraIntrinsics, cam.Distortion, ptCamera)
}

// Unproject maps pixel coordinates to a unit ray in the camera frame.
func (cam *PinholeCamera) Unproject(px r2.Point) (r3.Vector, error) {
	return unprojectThroughDistortion(&cam.PinholeCameraIntrinsics, cam.Distortion, px)
}

// ImageSize returns the width and height the camera is calibrated for.
func (cam *PinholeCamera) ImageSize() (int, int) {
	return cam.Width, cam.Height
}

// DistortionMap is a function that transforms the undistorted input points (u,v) to the
// distorted points (x,y) according to the camera's distortion model.
func (cam *PinholeCamera) DistortionMap() func(u, v float64) (float64, float64) {
	return func(u, v float64) (float64, float64) {
		x := (u - cam.Ppx) / cam.Fx
		y := (v - cam.Ppy) / cam.Fy
		x, y = cam.Distortion.Transform(x, y)
		x = x*cam.Fx + cam.Ppx
		y = y*cam.Fy + cam.Ppy
		return x, y
	}
}

// projectThroughDistortion normalizes the camera-frame point, distorts it, and applies
// the intrinsic matrix. Shared by the pinhole and fisheye cameras.
func projectThroughDistortion(params *PinholeCameraIntrinsics, dist Distorter, ptCamera r3.Vector) (r2.Point, bool) {
	if ptCamera.Z <= 0 {
		return r2.Point{}, false
	}
	xNorm := ptCamera.X / ptCamera.Z
	yNorm := ptCamera.Y / ptCamera.Z

	xDist, yDist := dist.Transform(xNorm, yNorm)

	return r2.Point{
		X: params.Fx*xDist + params.Ppx,
		Y: params.Fy*yDist + params.Ppy,
	}, true
}

// unprojectThroughDistortion inverts the intrinsic matrix, undistorts, and returns the
// unit ray through the resulting normalized coordinates. The ray's z is always positive.
func unprojectThroughDistortion(params *PinholeCameraIntrinsics, dist Distorter, px r2.Point) (r3.Vector, error) {
	xDist := (px.X - params.Ppx) / params.Fx
	yDist := (px.Y - params.Ppy) / params.Fy

	xNorm, yNorm, err := dist.Undistort(xDist, yDist)
	if err != nil {
		return r3.Vector{}, err
	}

	return r3.Vector{X: xNorm, Y: yNorm, Z: 1.0}.Normalize(), nil
}
