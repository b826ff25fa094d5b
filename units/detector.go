package units

import (
	"context"
	"errors"
	"fmt"

	"github.com/arloliu/go-nclink/logger"
	"github.com/arloliu/go-nclink/nclink"
)

// ErrSenderNil indicates that a Detector was created without a transport.
var ErrSenderNil = errors.New("units: sender is nil")

// Detector queries a control for its configured unit system.
//
// A Detector keeps no state between calls and is safe for concurrent use.
type Detector struct {
	sender nclink.Sender
	logger logger.Logger
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithLogger sets the logger that receives detection diagnostics.
func WithLogger(l logger.Logger) DetectorOption {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDetector creates a Detector that issues its queries through sender.
func NewDetector(sender nclink.Sender, opts ...DetectorOption) (*Detector, error) {
	if sender == nil {
		return nil, ErrSenderNil
	}

	d := &Detector{
		sender: sender,
		logger: logger.GetLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Detect runs the detection pipeline for the given control version:
// select file, load it, unwrap the envelope and parse the first record.
//
// Detect never fails; transport errors and panics raised while processing
// the response are reported as a defaulted Result.
func (d *Detector) Detect(ctx context.Context, v ControlVersion) (res Result) {
	file, note := SelectFile(v)
	if note != "" {
		d.logger.Warn("units: file selection is a fallback", "version", v, "file", file, "note", note)
	}

	defer func() {
		if r := recover(); r != nil {
			res = defaulted(StageQuery, "panic during detection", fmt.Errorf("units: recovered: %v", r))
			res.File = file
		}
	}()

	raw, err := d.sender.Send(ctx, nclink.LoadCommand(file))
	if err != nil {
		res = defaulted(StageQuery, "load command failed", err)
		res.File = file

		return res
	}

	res = ParseResponse(raw)
	res.File = file

	return res
}

// DetectUnitSystem returns the control's unit system, logging the reason
// whenever the result is the default.
func (d *Detector) DetectUnitSystem(ctx context.Context, v ControlVersion) System {
	res := d.Detect(ctx, v)
	d.Report(v, res)

	return res.System
}

// Report logs a detection result.
func (d *Detector) Report(v ControlVersion, res Result) {
	switch {
	case res.Err != nil && res.Stage == StageQuery:
		d.logger.Error("units: detection failed, defaulting",
			"version", v, "file", res.File, "system", res.System,
			"stage", res.Stage, "reason", res.Reason, "error", res.Err)
	case res.Defaulted:
		kv := []any{
			"version", v, "file", res.File, "system", res.System,
			"stage", res.Stage, "reason", res.Reason,
		}
		if res.Err != nil {
			kv = append(kv, "error", res.Err)
		}
		d.logger.Warn("units: detection inconclusive, defaulting", kv...)
	default:
		d.logger.Debug("units: detected", "version", v, "file", res.File, "system", res.System)
	}
}
