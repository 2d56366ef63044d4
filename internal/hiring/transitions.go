package hiring

import (
	"errors"

	"github.com/creativehub/nexus/internal/models"
)

// Action is a step a participant takes on a hire request
type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// Role is a participant's side of a hire request
type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

var (
	// ErrInvalidTransition means the action is not allowed from the current status
	ErrInvalidTransition = errors.New("invalid hire request transition")
	// ErrForbidden means the participant's role may never take the action
	ErrForbidden = errors.New("not allowed to perform this action")
	// ErrUnknownAction is returned for actions outside the workflow
	ErrUnknownAction = errors.New("unknown hire request action")
)

type transition struct {
	from models.HireStatus
	to   models.HireStatus
}

// rules lists, per action, who may take it and from which statuses
var rules = map[Action]struct {
	roles       map[Role]bool
	transitions []transition
}{
	ActionAccept: {
		roles:       map[Role]bool{RoleFreelancer: true},
		transitions: []transition{{models.HireStatusPending, models.HireStatusAccepted}},
	},
	ActionDecline: {
		roles:       map[Role]bool{RoleFreelancer: true},
		transitions: []transition{{models.HireStatusPending, models.HireStatusDeclined}},
	},
	ActionComplete: {
		roles:       map[Role]bool{RoleClient: true, RoleFreelancer: true},
		transitions: []transition{{models.HireStatusAccepted, models.HireStatusCompleted}},
	},
	ActionCancel: {
		roles: map[Role]bool{RoleClient: true},
		transitions: []transition{
			{models.HireStatusPending, models.HireStatusCancelled},
			{models.HireStatusAccepted, models.HireStatusCancelled},
		},
	},
}

// ParseAction validates an action name from a URL
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if _, ok := rules[a]; !ok {
		return "", ErrUnknownAction
	}
	return a, nil
}

// TargetStatus is the status an action leads to
func TargetStatus(action Action) models.HireStatus {
	r := rules[action]
	if len(r.transitions) == 0 {
		return ""
	}
	return r.transitions[0].to
}

// NextStatus applies action by a participant in role to a request in current status
func NextStatus(current models.HireStatus, action Action, role Role) (models.HireStatus, error) {
	r, ok := rules[action]
	if !ok {
		return "", ErrUnknownAction
	}
	if !r.roles[role] {
		return "", ErrForbidden
	}
	for _, t := range r.transitions {
		if t.from == current {
			return t.to, nil
		}
	}
	return "", ErrInvalidTransition
}
