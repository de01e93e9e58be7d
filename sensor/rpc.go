// Package sensor provides satellite sensor models mapping ground coordinates to image
// coordinates. The one model here is the Rational Polynomial Coefficient (RPC) model,
// which expresses image line/sample as ratios of cubic polynomials in normalized
// geodetic coordinates.
package sensor

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/solospatial/photogrammetry/geodesy"
)

// ErrInvalidRPC is when a rational polynomial's denominator vanishes, which signals
// malformed or degenerate coefficients.
var ErrInvalidRPC = errors.New("invalid rpc coefficients, denominator vanishes")

// NoConvergenceError is when inverse projection failed to converge. Iterations carries
// the iteration at which the solver gave up: below the budget it means the Jacobian
// went singular there, at the budget it means tolerance was never met.
type NoConvergenceError struct {
	Iterations int
}

func (e *NoConvergenceError) Error() string {
	return fmt.Sprintf("projection did not converge after %d iterations", e.Iterations)
}

// inverse projection solver constants.
const (
	rpcMaxIterations  = 20
	rpcTolerance      = 1e-6
	rpcJacobianStep   = 1e-7
	rpcMinDet         = 1e-10
	rpcMinDenominator = 1e-10
)

// RPCCoefficients is the full RPC parameter block: four 20-term polynomial coefficient
// arrays plus the normalization offsets and scales. It is supplied by an external
// metadata reader and treated as immutable.
type RPCCoefficients struct {
	LineNumCoeff [20]float64 `json:"line_num_coeff"`
	LineDenCoeff [20]float64 `json:"line_den_coeff"`
	SampNumCoeff [20]float64 `json:"samp_num_coeff"`
	SampDenCoeff [20]float64 `json:"samp_den_coeff"`

	LatOff      float64 `json:"lat_off"`
	LatScale    float64 `json:"lat_scale"`
	LonOff      float64 `json:"lon_off"`
	LonScale    float64 `json:"lon_scale"`
	HeightOff   float64 `json:"height_off"`
	HeightScale float64 `json:"height_scale"`
	LineOff     float64 `json:"line_off"`
	LineScale   float64 `json:"line_scale"`
	SampOff     float64 `json:"samp_off"`
	SampScale   float64 `json:"samp_scale"`
}

// RPCModel projects between ground coordinates and image line/sample using one RPC
// coefficient block. Stateless beyond the coefficients and safe for concurrent use.
type RPCModel struct {
	coeffs RPCCoefficients
}

// NewRPCModel returns an RPC model wrapping the given coefficients.
func NewRPCModel(coeffs RPCCoefficients) *RPCModel {
	return &RPCModel{coeffs: coeffs}
}

// Coefficients returns the model's coefficient block.
func (m *RPCModel) Coefficients() RPCCoefficients {
	return m.coeffs
}

// LLAToImage projects a geodetic coordinate to image (line, sample). It fails with
// ErrInvalidRPC when either rational denominator vanishes at the normalized point.
func (m *RPCModel) LLAToImage(lla geodesy.LLACoord) (float64, float64, error) {
	p := (lla.Lon - m.coeffs.LonOff) / m.coeffs.LonScale
	l := (lla.Lat - m.coeffs.LatOff) / m.coeffs.LatScale
	h := (lla.Alt - m.coeffs.HeightOff) / m.coeffs.HeightScale

	lineNum := evalCubic(&m.coeffs.LineNumCoeff, p, l, h)
	lineDen := evalCubic(&m.coeffs.LineDenCoeff, p, l, h)
	sampNum := evalCubic(&m.coeffs.SampNumCoeff, p, l, h)
	sampDen := evalCubic(&m.coeffs.SampDenCoeff, p, l, h)

	if math.Abs(lineDen) < rpcMinDenominator || math.Abs(sampDen) < rpcMinDenominator {
		return 0, 0, ErrInvalidRPC
	}

	line := lineNum/lineDen*m.coeffs.LineScale + m.coeffs.LineOff
	samp := sampNum/sampDen*m.coeffs.SampScale + m.coeffs.SampOff

	return line, samp, nil
}

// GroundToImage projects an ECEF ground point to image (line, sample).
func (m *RPCModel) GroundToImage(ground r3.Vector) (float64, float64, error) {
	lla, err := geodesy.ECEFToLLA(ground)
	if err != nil {
		return 0, 0, err
	}
	return m.LLAToImage(lla)
}

// ImageToLLA recovers the geodetic coordinate at a given height that projects to the
// given image (line, sample), by Newton-Raphson over (lat, lon) with a forward
// finite-difference Jacobian and a Cramer's-rule 2x2 solve. The solve is seeded at the
// model's own normalization offsets. It fails with NoConvergenceError.
func (m *RPCModel) ImageToLLA(line, sample, height float64) (geodesy.LLACoord, error) {
	lat := m.coeffs.LatOff
	lon := m.coeffs.LonOff

	for iter := 0; iter < rpcMaxIterations; iter++ {
		lla := geodesy.LLACoord{Lat: lat, Lon: lon, Alt: height}
		projLine, projSamp, err := m.LLAToImage(lla)
		if err != nil {
			return geodesy.LLACoord{}, err
		}

		lineErr := line - projLine
		sampErr := sample - projSamp

		if math.Abs(lineErr) < rpcTolerance && math.Abs(sampErr) < rpcTolerance {
			return lla, nil
		}

		lineLat, sampLat, err := m.LLAToImage(geodesy.LLACoord{Lat: lat + rpcJacobianStep, Lon: lon, Alt: height})
		if err != nil {
			return geodesy.LLACoord{}, err
		}
		dLineDLat := (lineLat - projLine) / rpcJacobianStep
		dSampDLat := (sampLat - projSamp) / rpcJacobianStep

		lineLon, sampLon, err := m.LLAToImage(geodesy.LLACoord{Lat: lat, Lon: lon + rpcJacobianStep, Alt: height})
		if err != nil {
			return geodesy.LLACoord{}, err
		}
		dLineDLon := (lineLon - projLine) / rpcJacobianStep
		dSampDLon := (sampLon - projSamp) / rpcJacobianStep

		det := dLineDLat*dSampDLon - dLineDLon*dSampDLat
		if math.Abs(det) < rpcMinDet {
			return geodesy.LLACoord{}, &NoConvergenceError{Iterations: iter}
		}

		lat += (dSampDLon*lineErr - dLineDLon*sampErr) / det
		lon += (dLineDLat*sampErr - dSampDLat*lineErr) / det
	}

	return geodesy.LLACoord{}, &NoConvergenceError{Iterations: rpcMaxIterations}
}

// ImageToGround recovers the ECEF ground point at a given height that projects to the
// given image (line, sample).
func (m *RPCModel) ImageToGround(line, sample, height float64) (r3.Vector, error) {
	lla, err := m.ImageToLLA(line, sample, height)
	if err != nil {
		return r3.Vector{}, err
	}
	return geodesy.LLAToECEF(lla)
}

// evalCubic evaluates a 20-term RPC polynomial over normalized (p, l, h). The monomial
// order is fixed; coefficient index i is only meaningful relative to this basis, so the
// ordering is a wire-format-like contract shared with whatever produced the block.
func evalCubic(coeffs *[20]float64, p, l, h float64) float64 {
	return coeffs[0] +
		coeffs[1]*l +
		coeffs[2]*p +
		coeffs[3]*h +
		coeffs[4]*l*p +
		coeffs[5]*l*h +
		coeffs[6]*p*h +
		coeffs[7]*l*l +
		coeffs[8]*p*p +
		coeffs[9]*h*h +
		coeffs[10]*p*l*h +
		coeffs[11]*l*l*l +
		coeffs[12]*l*p*p +
		coeffs[13]*l*h*h +
		coeffs[14]*l*l*p +
		coeffs[15]*p*p*p +
		coeffs[16]*p*h*h +
		coeffs[17]*l*l*h +
		coeffs[18]*p*p*h +
		coeffs[19]*h*h*h
}
