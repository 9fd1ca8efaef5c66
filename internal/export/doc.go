// Package export writes recorded runs to disk: CSV and JSON traces, an SVG
// of the bob paths and PNG plots rendered with gonum/plot.
package export
