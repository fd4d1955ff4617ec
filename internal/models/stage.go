package models

import (
	"fmt"
	"strings"
)

// StageKind is the discrete step a document's processing has reached.
type StageKind int

const (
	StageUnknown StageKind = iota
	StageUploading
	StageExtracting
	StageProcessing
	StageExtracted
	StageCompleted
	StageFailed
	StageStopped
)

var stageNames = [...]string{
	StageUnknown:    "Unknown",
	StageUploading:  "Uploading",
	StageExtracting: "Extracting",
	StageProcessing: "Processing",
	StageExtracted:  "Extracted",
	StageCompleted:  "Completed",
	StageFailed:     "Failed",
	StageStopped:    "Stopped",
}

func (k StageKind) String() string {
	if k < 0 || int(k) >= len(stageNames) {
		return fmt.Sprintf("StageKind(%d)", int(k))
	}
	return stageNames[k]
}

// Stage is a document's processing state. Reason is only meaningful for
// StageFailed.
type Stage struct {
	Kind   StageKind
	Reason string
}

// Constructors for the stages that carry no reason.
func Unknown() Stage    { return Stage{Kind: StageUnknown} }
func Uploading() Stage  { return Stage{Kind: StageUploading} }
func Extracting() Stage { return Stage{Kind: StageExtracting} }
func Processing() Stage { return Stage{Kind: StageProcessing} }
func Extracted() Stage  { return Stage{Kind: StageExtracted} }
func Completed() Stage  { return Stage{Kind: StageCompleted} }
func Stopped() Stage    { return Stage{Kind: StageStopped} }

// Failed returns a failure stage carrying a human-readable reason.
func Failed(reason string) Stage {
	return Stage{Kind: StageFailed, Reason: reason}
}

// String renders the wire form sent to status clients: the kind name, or
// "Failed: <reason>" for failures with a reason.
func (s Stage) String() string {
	if s.Kind == StageFailed && s.Reason != "" {
		return stageNames[StageFailed] + ": " + s.Reason
	}
	return s.Kind.String()
}

// Terminal reports whether no further stage follows within a run.
func (s Stage) Terminal() bool {
	switch s.Kind {
	case StageCompleted, StageFailed, StageStopped:
		return true
	}
	return false
}

// ParseStage is the inverse of Stage.String.
func ParseStage(s string) (Stage, error) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, stageNames[StageFailed]); ok {
		if rest == "" {
			return Failed(""), nil
		}
		if reason, ok := strings.CutPrefix(rest, ":"); ok {
			return Failed(strings.TrimSpace(reason)), nil
		}
	}
	for i, name := range stageNames {
		if name == s {
			return Stage{Kind: StageKind(i)}, nil
		}
	}
	return Unknown(), fmt.Errorf("unknown stage %q", s)
}
