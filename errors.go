package main

import "fmt"

// ErrorKind classifies a pipeline failure, in band order: structural
// problems with the input surface first, then problems discovered
// deeper in the pipeline.
type ErrorKind int

const (
	KindInputTooSmall ErrorKind = iota
	KindBadMagic
	KindOutOfBoundsRVA
	KindSanityCapExceeded
	KindTruncatedInstruction
	KindNoCodeSection
	KindUsage
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindInputTooSmall:
		return "input too small"
	case KindBadMagic:
		return "bad magic"
	case KindOutOfBoundsRVA:
		return "out-of-bounds RVA"
	case KindSanityCapExceeded:
		return "sanity cap exceeded"
	case KindTruncatedInstruction:
		return "truncated instruction"
	case KindNoCodeSection:
		return "no code section"
	case KindUsage:
		return "usage error"
	default:
		return "internal error"
	}
}

// PipelineError names the stage that failed alongside the kind and a
// human-readable reason. Each stage returns either a successful
// result or a single error token; this is that token.
type PipelineError struct {
	Stage   string
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *PipelineError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error { return e.cause }

// wrapStageError attaches a stage name and kind to an underlying error
// returned by one of the internal packages, so the CLI's single
// diagnostic line always names where the pipeline stopped.
func wrapStageError(stage string, kind ErrorKind, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Message: err.Error(), cause: err}
}

func usageError(message string) *PipelineError {
	return &PipelineError{Stage: "cli", Kind: KindUsage, Message: message}
}
