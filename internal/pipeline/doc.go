// Package pipeline wires variant generation, recognition trials and fusion
// into per-image processing and batch runs.
//
// A Processor owns no state of its own beyond the fusion context it merges
// into. RunBatch fans images and harvested records out over a bounded pool
// of workers and always returns a Summary: failures are accumulated per
// item and never abort the run.
package pipeline
