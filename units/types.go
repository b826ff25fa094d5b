package units

import "strings"

// ControlVersion identifies the control generation, which decides the stored
// file that holds the unit setting.
type ControlVersion int

const (
	VersionUnknown ControlVersion = iota
	VersionA00
	VersionB00
	VersionC00
	VersionD00
)

// ControlVersions lists every ControlVersion value.
var ControlVersions = []ControlVersion{VersionUnknown, VersionA00, VersionB00, VersionC00, VersionD00}

func (v ControlVersion) String() string {
	switch v {
	case VersionA00:
		return "A00"
	case VersionB00:
		return "B00"
	case VersionC00:
		return "C00"
	case VersionD00:
		return "D00"
	default:
		return "Unknown"
	}
}

// ParseControlVersion converts a name such as "c00" into a ControlVersion.
// Unrecognised names map to VersionUnknown.
func ParseControlVersion(s string) ControlVersion {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A00":
		return VersionA00
	case "B00":
		return VersionB00
	case "C00":
		return VersionC00
	case "D00":
		return VersionD00
	default:
		return VersionUnknown
	}
}

// System is the measurement convention configured on the control.
type System int

const (
	Metric System = iota
	Inch
)

// Default is the System reported whenever detection is inconclusive.
const Default = Metric

func (s System) String() string {
	if s == Inch {
		return "Inch"
	}

	return "Metric"
}

// Stage names a step of the detection pipeline.
type Stage int

const (
	StageSelectFile Stage = iota
	StageQuery
	StageUnwrapEnvelope
	StageExtractFirstLine
	StageMatchRecordTag
	StageParseValue
	StageMapValue
)

func (s Stage) String() string {
	switch s {
	case StageSelectFile:
		return "select-file"
	case StageQuery:
		return "query"
	case StageUnwrapEnvelope:
		return "unwrap-envelope"
	case StageExtractFirstLine:
		return "extract-first-line"
	case StageMatchRecordTag:
		return "match-record-tag"
	case StageParseValue:
		return "parse-value"
	case StageMapValue:
		return "map-value"
	default:
		return "unknown"
	}
}

// Result is the outcome of a detection.
//
// When Defaulted is true, System is Default and Stage/Reason describe the step
// that could not continue. Err carries the underlying error, if any.
type Result struct {
	System    System
	Defaulted bool
	Stage     Stage
	Reason    string
	Err       error
	// File is the stored file that was queried.
	File string
}

func decided(s System, stage Stage) Result {
	return Result{System: s, Stage: stage}
}

func defaulted(stage Stage, reason string, err error) Result {
	return Result{System: Default, Defaulted: true, Stage: stage, Reason: reason, Err: err}
}
