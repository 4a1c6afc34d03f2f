// Package dataset defines the datasets datapull knows how to acquire.
//
// A Remote dataset is a single file downloaded over HTTP and decoded with
// the load package. A Network dataset is a directory of whitespace-delimited
// edge lists and activity logs under DATA_ROOT, read a few rows at a time.
package dataset
