// Package plot is the calibration engine of coordplot. It contains:
//
//   - Point and Slot: canvas pixels, real-world values and the four named
//     reference slots (x1, x2, y1, y2)
//   - ReferencePoints and ActualCoordinates: the two halves of a calibration
//   - Transform: the per-axis affine map derived from them
//   - Stage: the discrete steps of click interpretation and their transitions
//
// Everything here is a pure function of its inputs. Session bookkeeping lives
// in package session.
package plot
