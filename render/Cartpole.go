// Package render draws PNG frames of classic control environments so
// that learned behaviour can be inspected after training.
package render

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/environment/classiccontrol/cartpole"
	ts "github.com/nus-mornin-lab/Advanced-Biostatistics-Hands-On/timestep"
)

// Frame dimensions in pixels
const (
	frameWidth  = 600
	frameHeight = 400

	cartWidth  = 50.0
	cartHeight = 30.0
	trackY     = 300.0
)

// Cartpole draws one PNG frame per tracked timestep of a Cartpole
// environment. Frames are numbered in the order they are tracked and
// written into a single directory.
//
// Cartpole is a tracker.Tracker so that an experiment can render the
// episodes it runs.
type Cartpole struct {
	dir   string
	frame int
	err   error
}

// NewCartpole returns a new Cartpole renderer that writes frames into
// the argument directory, which must exist
func NewCartpole(dir string) *Cartpole {
	return &Cartpole{dir: dir}
}

// Track draws the state of the argument timestep to the next frame.
// The first error to occur while drawing is reported by Save.
func (c *Cartpole) Track(t ts.TimeStep) {
	position := t.Observation.AtVec(0)
	angle := t.Observation.AtVec(2)

	// Pixels per unit of track position
	scale := float64(frameWidth) / (2 * cartpole.PositionBounds)
	cartX := float64(frameWidth)/2 + position*scale
	poleLength := 2 * cartpole.HalfPoleLength * scale

	dc := gg.NewContext(frameWidth, frameHeight)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Track
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(2.0)
	dc.DrawLine(0, trackY, frameWidth, trackY)
	dc.Stroke()

	// Cart
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawRectangle(cartX-cartWidth/2, trackY-cartHeight, cartWidth,
		cartHeight)
	dc.Fill()

	// Pole, measured from the positive y-axis
	axleY := trackY - cartHeight
	tipX := cartX + poleLength*math.Sin(angle)
	tipY := axleY - poleLength*math.Cos(angle)
	dc.SetRGB(0.8, 0.6, 0.3)
	dc.SetLineWidth(6.0)
	dc.DrawLine(cartX, axleY, tipX, tipY)
	dc.Stroke()

	// Axle
	dc.SetRGB(0.5, 0.5, 0.8)
	dc.DrawCircle(cartX, axleY, 5.0)
	dc.Fill()

	filename := filepath.Join(c.dir, fmt.Sprintf("frame-%04d.png", c.frame))
	if err := dc.SavePNG(filename); err != nil && c.err == nil {
		c.err = fmt.Errorf("track: could not save frame %v: %v", c.frame,
			err)
	}
	c.frame++
}

// Save reports the first error that occurred while drawing frames.
// Frames are written as they are tracked, so there is nothing left to
// save.
func (c *Cartpole) Save() error {
	return c.err
}
