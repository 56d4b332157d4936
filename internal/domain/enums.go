package domain

// ReentryMode governs what happens when a subject already inside a plan
// triggers entry again. The converter passes it through untouched.
type ReentryMode string

const (
	ReentryAllow   ReentryMode = "allow"
	ReentryIgnore  ReentryMode = "ignore"
	ReentryRestart ReentryMode = "restart"
)

// PlanProcessingPosition tags when a universal activity fires relative to
// normal path processing.
type PlanProcessingPosition string

const (
	PositionBeforeEntry        PlanProcessingPosition = "before_entry"
	PositionAfterEveryActivity PlanProcessingPosition = "after_every_activity"
	PositionOnExit             PlanProcessingPosition = "on_exit"
)

// ValidReentryModes is the canonical set of accepted reentry mode strings.
var ValidReentryModes = map[string]bool{
	"allow": true, "ignore": true, "restart": true,
}

// ValidProcessingPositions is the canonical set of accepted processing
// position strings.
var ValidProcessingPositions = map[string]bool{
	"before_entry": true, "after_every_activity": true, "on_exit": true,
}
