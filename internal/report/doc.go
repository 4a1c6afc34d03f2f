// Package report renders pull results and dataset heads reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text tables for terminal display and report files
//   - MarkdownWriter: Markdown documents for sharing
//   - JSONWriter: structured JSON output for tool integration
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter. SaveHeads ties a writer to
// a timestamped file under the reports directory.
package report
