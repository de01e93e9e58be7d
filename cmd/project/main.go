// Package main is a command that projects points through a calibrated camera or an RPC
// sensor model loaded from a JSON file.
//
// Camera mode expects camera-frame points as x,y,z argument triples:
//
//	project -camera cam.json 0.5,0.3,1.0
//
// RPC mode expects image line,sample pairs and a ground height in meters:
//
//	project -rpc rpc.json -height 100 5000,5000
package main

import (
	"flag"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/solospatial/photogrammetry/calib"
	"github.com/solospatial/photogrammetry/logging"
)

var logger = logging.NewLogger("project")

func main() {
	cameraPath := flag.String("camera", "", "path to camera calibration JSON")
	rpcPath := flag.String("rpc", "", "path to RPC coefficients JSON")
	height := flag.Float64("height", 0, "ground height in meters for RPC inverse projection")

	flag.Parse()

	switch {
	case *cameraPath != "" && *rpcPath != "":
		logger.Fatal("pass only one of -camera or -rpc")
	case *cameraPath != "":
		runCamera(*cameraPath, flag.Args())
	case *rpcPath != "":
		runRPC(*rpcPath, *height, flag.Args())
	default:
		logger.Fatal("need -camera or -rpc")
	}
}

func runCamera(path string, args []string) {
	cam, err := calib.ReadCameraFromJSONFile(path)
	if err != nil {
		logger.Fatal(err)
	}
	w, h := cam.ImageSize()
	logger.Infof("camera image size %dx%d", w, h)

	for _, arg := range args {
		fields, err := parseFloats(arg, 3)
		if err != nil {
			logger.Fatal(err)
		}
		pt := r3.Vector{X: fields[0], Y: fields[1], Z: fields[2]}
		px, ok := cam.Project(pt)
		if !ok {
			logger.Infof("%v -> behind camera", pt)
			continue
		}
		ray, err := cam.Unproject(px)
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infof("%v -> pixel (%f, %f), ray %v", pt, px.X, px.Y, ray)
	}
}

func runRPC(path string, height float64, args []string) {
	model, err := calib.ReadRPCFromJSONFile(path)
	if err != nil {
		logger.Fatal(err)
	}

	for _, arg := range args {
		fields, err := parseFloats(arg, 2)
		if err != nil {
			logger.Fatal(err)
		}
		lla, err := model.ImageToLLA(fields[0], fields[1], height)
		if err != nil {
			logger.Fatal(err)
		}
		ground, err := model.ImageToGround(fields[0], fields[1], height)
		if err != nil {
			logger.Fatal(err)
		}
		logger.Infof("image (%f, %f) at %fm -> lat %f lon %f, ecef %v",
			fields[0], fields[1], height, lla.Lat, lla.Lon, ground)
	}
}

func parseFloats(arg string, n int) ([]float64, error) {
	parts := strings.Split(arg, ",")
	if len(parts) != n {
		return nil, errors.Errorf("expected %d comma-separated values, got %q", n, arg)
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
