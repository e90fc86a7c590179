package build

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// Stage names reported to metrics and attached to log records.
const (
	StageCheckout = "checkout"
	StageSite     = "site"
	StagePublish  = "publish"
	StageRecord   = "record"
)

// Status represents the outcome of a build execution.
type Status string

const (
	// StatusSuccess indicates the build completed successfully.
	StatusSuccess Status = "success"

	// StatusFailed indicates the build encountered an error.
	StatusFailed Status = "failed"

	// StatusCanceled indicates the build was canceled.
	StatusCanceled Status = "canceled"
)

// IsSuccess returns true if the build completed successfully.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

func (s Status) outcome() metrics.Outcome {
	switch s {
	case StatusSuccess:
		return metrics.OutcomeSuccess
	case StatusCanceled:
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeFailed
	}
}

func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return StatusCanceled
	default:
		return StatusFailed
	}
}

// Result contains the outcome of a build execution.
type Result struct {
	BuildID string
	Status  Status

	// Source is the site root that was built.
	Source string

	// Commit is the checked out revision when the source came from git.
	Commit string

	// Report is the site pipeline's report; nil when the build failed before
	// the pipeline ran.
	Report *site.Report

	// Changed lists page sources whose fingerprint differs from the last
	// successful build in history. Nil without a history store.
	Changed []string

	// PublishedTo is the copy target when output.copy_to is set.
	PublishedTo string

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

func (r *Result) pages() int {
	if r.Report == nil {
		return 0
	}
	return len(r.Report.Pages)
}

func (r *Result) assets() int {
	if r.Report == nil {
		return 0
	}
	return len(r.Report.Assets)
}

func (r *Result) failed() int {
	if r.Report == nil {
		return 0
	}
	return r.Report.Failed
}
