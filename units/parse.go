package units

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/go-nclink/nclink"
)

// Stored configuration file names.
const (
	FileMSRRSC = "MSRRSC"
	FileMSRRSD = "MSRRSD"
)

// RecordTag is the tag of the record holding the unit flag.
const RecordTag = "C01"

// SelectFile maps a control version to the stored file to load. It is total:
// every version yields a file. note is non-empty when the choice is a guess.
func SelectFile(v ControlVersion) (file string, note string) {
	switch v {
	case VersionC00:
		return FileMSRRSC, ""
	case VersionD00:
		return FileMSRRSD, ""
	case VersionUnknown:
		return FileMSRRSC, "control version unknown, guessing " + FileMSRRSC
	default:
		return FileMSRRSC, fmt.Sprintf("control version %s unsupported, trying %s", v, FileMSRRSC)
	}
}

// ParseResponse unwraps a raw response and parses its payload.
func ParseResponse(raw string) Result {
	payload, ok := nclink.Unwrap(raw)
	if !ok {
		return defaulted(StageUnwrapEnvelope, "response envelope missing or empty", nil)
	}

	return ParsePayload(payload)
}

// ParsePayload interprets the first record of a decoded payload.
//
// The record must look like "C01,<n>" (tag matched case-insensitively);
// n=0 is Metric, n=1 is Inch. Anything else yields Default.
func ParsePayload(payload string) Result {
	if strings.TrimSpace(payload) == "" {
		return defaulted(StageExtractFirstLine, "empty payload", nil)
	}

	line, _, _ := strings.Cut(payload, "\r\n")
	line = strings.TrimSpace(line)

	if len(line) < len(RecordTag) || !strings.EqualFold(line[:len(RecordTag)], RecordTag) {
		return defaulted(StageMatchRecordTag, fmt.Sprintf("first record %q is not %s", line, RecordTag), nil)
	}

	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return defaulted(StageParseValue, fmt.Sprintf("record %q has no value field", line), nil)
	}

	value, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return defaulted(StageParseValue, fmt.Sprintf("value %q is not an integer", fields[1]), err)
	}

	switch value {
	case 0:
		return decided(Metric, StageMapValue)
	case 1:
		return decided(Inch, StageMapValue)
	default:
		return defaulted(StageMapValue, fmt.Sprintf("unexpected value %d", value), nil)
	}
}
