// Package main provides a one-shot depth quality check over a captured
// point cloud: it fits a plane to the region of interest and prints the six
// quality metrics with their classification.
package main

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	depthquality "go.viam.com/depthquality"
	pc "go.viam.com/depthquality/pointcloud"
	"go.viam.com/depthquality/segmentation"
	"go.viam.com/depthquality/transform"
)

var logger = golog.NewDevelopmentLogger("depthquality")

func main() {
	app := &cli.App{
		Name:  "depthquality",
		Usage: "evaluate the geometric quality of a captured depth frame against a flat target",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pointcloud",
				Aliases:  []string{"p"},
				Usage:    "PCD file of the captured frame (x y z fields, meters)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "calibration",
				Aliases:  []string{"c"},
				Usage:    "JSON file with the depth camera parameters",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "roi",
				Usage: "pixel rectangle as min_x,min_y,max_x,max_y (default: full sensor)",
			},
			&cli.IntFlag{
				Name:  "iterations",
				Value: 200,
				Usage: "RANSAC iterations for the plane fit",
			},
			&cli.Float64Flag{
				Name:  "threshold",
				Value: 0.01,
				Usage: "plane inlier distance threshold in meters",
			},
		},
		Action: runCheck,
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}

func parseROI(s string) (image.Rectangle, error) {
	tokens := strings.Split(s, ",")
	if len(tokens) != 4 {
		return image.Rectangle{}, errors.Errorf("roi must be min_x,min_y,max_x,max_y, got %q", s)
	}
	vals := make([]int, 4)
	for i, token := range tokens {
		v, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return image.Rectangle{}, errors.Wrapf(err, "invalid roi bound %q", token)
		}
		vals[i] = v
	}
	return image.Rect(vals[0], vals[1], vals[2], vals[3]), nil
}

func runCheck(ctx *cli.Context) error {
	params, err := transform.NewDepthCameraParamsFromJSONFile(ctx.String("calibration"))
	if err != nil {
		return err
	}
	points, err := pc.NewFromPCDFile(ctx.String("pointcloud"))
	if err != nil {
		return err
	}

	roi := image.Rect(0, 0, params.Width, params.Height)
	if s := ctx.String("roi"); s != "" {
		roi, err = parseROI(s)
		if err != nil {
			return err
		}
	}

	// confine the cloud to the ROI in pixel space; invalid zero-depth points
	// project outside any rectangle and drop out here
	roiPoints := make(pc.Vectors, 0, len(points))
	for _, pt := range points {
		x, y := params.PointToPixel(pt.X, pt.Y, pt.Z)
		if image.Pt(int(x), int(y)).In(roi) {
			roiPoints = append(roiPoints, pt)
		}
	}

	plane, inliers, err := segmentation.SegmentPlane(roiPoints, ctx.Int("iterations"), ctx.Float64("threshold"))
	if err != nil {
		return errors.Wrap(err, "cannot fit a plane to the region of interest")
	}
	plane = segmentation.FitPlaneToInliers(plane, inliers)
	logger.Infow("plane fitted",
		"equation", plane.Equation(),
		"inliers", len(inliers),
		"roi_points", len(roiPoints),
	)

	session, err := depthquality.NewSession(depthquality.DefaultConfig(), params, logger)
	if err != nil {
		return err
	}
	if err := session.OnFrame(roiPoints, plane, roi); err != nil {
		return errors.Wrap(err, "cannot evaluate frame")
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value", "Unit", "Quality"})
	for _, track := range session.Tracks() {
		v, _ := track.CurrentValue()
		spec := track.Spec()
		t.AppendRow(table.Row{spec.Name, fmt.Sprintf("%.3f", v), spec.Unit, track.CurrentBand().String()})
	}
	fmt.Println(t.Render())
	return nil
}
