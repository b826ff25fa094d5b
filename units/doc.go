// Package units discovers the measurement unit system configured on a CNC
// control by loading its stored configuration file over nclink.
//
// Detection is advisory: every failure (unreachable control, malformed
// response, unexpected record) resolves to Metric. [Detector.Detect] returns a
// [Result] that records which stage defaulted and why, and
// [Detector.DetectUnitSystem] logs that reason and returns only the System.
package units
