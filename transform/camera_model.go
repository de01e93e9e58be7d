package transform

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// CameraModel projects 3D points in the camera frame to image coordinates and back.
type CameraModel interface {
	// Project maps a camera-frame point to pixel coordinates. The second return is
	// false when the point is behind the camera (z <= 0), which is a defined geometric
	// outcome rather than an error.
	Project(ptCamera r3.Vector) (r2.Point, bool)
	// Unproject maps pixel coordinates to the unit ray in the camera frame that images
	// there. The returned ray always has positive z. Fails when distortion inversion
	// fails.
	Unproject(px r2.Point) (r3.Vector, error)
	// ImageSize returns the width and height the camera is calibrated for.
	ImageSize() (int, int)
}
