// Package load decodes downloaded bytes into a model.Frame.
//
// Decoding happens in two levels. ReadFrame first checks for a single-file
// archive (tar.gz or zip) using the filename hint and the content type; an
// archive is opened in memory and its only regular file is decoded with the
// member name as the new hint. Plain content is then dispatched on the hint's
// extension: Parquet, Excel (.xlsx and .xls), JSON, and CSV as the fallback.
//
// Both levels are ordered tables evaluated top to bottom, so adding a format
// is a matter of adding an entry.
package load
