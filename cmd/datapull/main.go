// Package main provides the entry point for the datapull CLI.
//
// datapull downloads tabular datasets over HTTP, decodes them (CSV, JSON,
// Parquet, Excel, optionally inside a single-file zip or tar.gz archive)
// and prints a short preview. It also builds heads reports for the local
// Higgs Twitter network dataset.
//
// Usage:
//
//	datapull pull <url-or-path>
//	datapull higgs
//
// See --help for all available options.
package main

// main is the entry point for datapull.
func main() {
	Execute()
}
