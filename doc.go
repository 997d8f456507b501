// Package dngpipe decodes MotionCam's MCRAW container format into a
// sequence of per-frame Cinema DNGs: parsing the container and its
// embedded metadata, applying crop/scale/shading/exposure settings to
// each frame's raw Bayer data, optionally remapping frames onto a
// constant output framerate, and assembling a standalone DNG per
// output frame.
//
// The package is a thin façade over internal/mcraw (container parsing),
// internal/render (the per-frame raw pipeline), internal/cfr (framerate
// planning) and internal/dng (DNG assembly); internal/pipeline wires
// them together into a Job a caller drives frame by frame.
package dngpipe
