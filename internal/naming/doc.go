// Package naming derives output file names from input files and holds the
// input file-name filter.
package naming
