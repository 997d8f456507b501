package pipeline

import "errors"

// ErrCancelled is returned once a job's cancellation flag has been set;
// it propagates on the next suspension point, per the cooperative
// cancellation model frames render under.
var ErrCancelled = errors.New("pipeline: job cancelled")

// ErrJobAborted marks a job that crossed the cumulative-failure threshold
// and stopped rendering remaining frames.
var ErrJobAborted = errors.New("pipeline: cumulative frame failures exceeded threshold")

// failureAbortFraction is the cumulative-failure fraction above which a
// job aborts rather than continuing to the next frame.
const failureAbortFraction = 0.8
