package project

// PortalStage is the client-facing lifecycle stage of a project's delivery
// process. It is distinct from the payment status: payment gates some
// transitions but never drives them.
type PortalStage string

const (
	StageScheduled  PortalStage = "SCHEDULED"
	StageInDelivery PortalStage = "IN_DELIVERY"
	StageInReview   PortalStage = "IN_REVIEW"
	StageApproved   PortalStage = "APPROVED"
	StageReleased   PortalStage = "RELEASED"
	StageComplete   PortalStage = "COMPLETE"
)

// stageTransitions defines the allowed forward transitions of the portal
// stage machine. NEEDS_REVISION feedback keeps the stage at IN_REVIEW (the
// revision loop spawns a new deliverable version instead of regressing).
var stageTransitions = map[PortalStage][]PortalStage{
	StageScheduled:  {StageInDelivery},
	StageInDelivery: {StageInReview},
	StageInReview:   {StageApproved, StageReleased},
	StageApproved:   {StageReleased},
	StageReleased:   {StageComplete},
	StageComplete:   {},
}

// IsValid reports whether the stage is one of the known portal stages
func (s PortalStage) IsValid() bool {
	switch s {
	case StageScheduled, StageInDelivery, StageInReview, StageApproved, StageReleased, StageComplete:
		return true
	}
	return false
}

// CanTransitionTo reports whether a transition from s to target is allowed
func (s PortalStage) CanTransitionTo(target PortalStage) bool {
	for _, next := range stageTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage has no outgoing transitions
func (s PortalStage) IsTerminal() bool {
	return len(stageTransitions[s]) == 0
}
