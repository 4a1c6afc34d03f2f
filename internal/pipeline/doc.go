// Package pipeline runs a pull as a sequence of steps.
//
// A pull fetches the bytes, decodes them into a frame and records the run
// in the history database. Each stage is a Step that receives the current
// model.PullReport and fills in its part. The first failing step stops the
// pipeline; steps registered with Finally run afterwards regardless, so a
// failed pull is still recorded.
package pipeline
