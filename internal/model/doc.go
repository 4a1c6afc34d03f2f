// Package model defines the data structures shared across datapull.
//
// This package contains the following main types:
//   - Frame: an in-memory table with named columns and ordered rows
//   - PullReport: the record of one download-and-decode run
//
// Models live in their own package so that the loader, the pipeline, the
// history database and the report writers can share them without import
// cycles. Both types serialize to JSON for report output and storage.
package model
