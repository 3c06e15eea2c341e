// Package transform holds the camera parameters needed to relate depth
// sensor pixels, 3D points, and stereo disparity.
package transform

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"
)

// ErrNoParameters is when a camera does not have parameters available.
var ErrNoParameters = errors.New("depth camera parameters are not available")

// newInvalidParametersError is used when a field of the parameters fails validation.
func newInvalidParametersError(msg string) error {
	return errors.Wrap(ErrNoParameters, msg)
}

// DepthCameraParams holds the parameters of the stereo depth unit doing the
// capture: the pinhole intrinsics of the depth stream plus the optical
// baseline between the two imagers. The baseline and focal length convert a
// range in meters into a disparity in subpixels.
type DepthCameraParams struct {
	Width      int     `json:"width_px"`
	Height     int     `json:"height_px"`
	Fx         float64 `json:"fx"`
	Fy         float64 `json:"fy"`
	Ppx        float64 `json:"ppx"`
	Ppy        float64 `json:"ppy"`
	BaselineMM float64 `json:"baseline_mm"`
}

// CheckValid checks if the fields for DepthCameraParams have valid inputs.
func (params *DepthCameraParams) CheckValid() error {
	if params == nil {
		return newInvalidParametersError("parameters do not exist")
	}
	if params.Width <= 0 || params.Height <= 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid size (%#v, %#v)", params.Width, params.Height))
	}
	if params.Fx <= 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid focal length Fx = %#v", params.Fx))
	}
	if params.Fy <= 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid focal length Fy = %#v", params.Fy))
	}
	if params.Ppx < 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid principal X point Ppx = %#v", params.Ppx))
	}
	if params.Ppy < 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid principal Y point Ppy = %#v", params.Ppy))
	}
	if params.BaselineMM <= 0 {
		return newInvalidParametersError(fmt.Sprintf("invalid stereo baseline = %#v", params.BaselineMM))
	}
	return nil
}

// NewDepthCameraParamsFromJSONFile takes in a file path to a JSON and turns it into DepthCameraParams.
func NewDepthCameraParamsFromJSONFile(jsonPath string) (*DepthCameraParams, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	params := &DepthCameraParams{}
	if err := json.Unmarshal(byteValue, params); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	if err := params.CheckValid(); err != nil {
		return nil, err
	}
	return params, nil
}

// Disparity converts a range in meters into a stereo disparity in subpixels,
// disparity = baseline_mm * fx / (range_m * 1000).
// The range must be positive.
func (params *DepthCameraParams) Disparity(rangeMeters float64) float64 {
	return params.BaselineMM * params.Fx * 0.001 / rangeMeters
}

// PixelToPoint transforms a pixel with depth to a 3D point.
// The parameters should be the ones of the sensor used to obtain the image
// that contains the pixel.
func (params *DepthCameraParams) PixelToPoint(x, y, z float64) (float64, float64, float64) {
	xOverZ := (x - params.Ppx) / params.Fx
	yOverZ := (y - params.Ppy) / params.Fy
	return xOverZ * z, yOverZ * z, z
}

// PointToPixel projects a 3D point to a pixel in an image plane.
// The parameters should be the ones of the sensor we want to project to.
func (params *DepthCameraParams) PointToPixel(x, y, z float64) (float64, float64) {
	if z != 0. {
		xPx := math.Round((x/z)*params.Fx + params.Ppx)
		yPx := math.Round((y/z)*params.Fy + params.Ppy)
		return xPx, yPx
	}
	// if depth is zero at this pixel, return negative coordinates so that cropping to sensor bounds will filter it out
	return -1.0, -1.0
}

// CameraMatrix creates a new camera matrix and returns it.
// Camera matrix:
// [[fx 0 ppx],
//
//	[0 fy ppy],
//	[0 0  1]]
func (params *DepthCameraParams) CameraMatrix() *mat.Dense {
	if params == nil {
		return nil
	}
	cameraMatrix := mat.NewDense(3, 3, nil)
	cameraMatrix.Set(0, 0, params.Fx)
	cameraMatrix.Set(1, 1, params.Fy)
	cameraMatrix.Set(0, 2, params.Ppx)
	cameraMatrix.Set(1, 2, params.Ppy)
	cameraMatrix.Set(2, 2, 1)
	return cameraMatrix
}
