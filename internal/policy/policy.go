// Package policy is the single authorization gate for time log access.
// Every create, read, update and approval goes through Decide with the same
// predicate, so a record can never be reached through one operation that
// another operation would deny.
package policy

import "github.com/fieldflow/timelog_service/internal/domain"

type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionApprove
)

// MembershipResolver answers whether a worker is an active member of a team
// led by the given leader.
type MembershipResolver interface {
	LeadsActiveMember(leaderID, workerID uint) (bool, error)
}

type Policy struct {
	teams MembershipResolver
}

func New(teams MembershipResolver) *Policy {
	return &Policy{teams: teams}
}

// Decide evaluates whether the actor may perform the action on the record.
// owner is the worker the record belongs to (record.UserID); callers load it
// once and pass it in so the decision stays a plain function over data.
//
// Rules:
//   - the owner may create, read and update their own records
//   - an admin in the owner's organisation may read and approve
//   - a leader of a team in which the owner is an active member may read
//     and approve, but only within their own organisation
//   - everyone else is denied
func (p *Policy) Decide(action Action, actor, owner *domain.User, record *domain.TimeLog) (bool, error) {
	if actor == nil || owner == nil || record == nil {
		return false, nil
	}
	if owner.ID != record.UserID {
		return false, nil
	}

	if actor.ID == record.UserID {
		switch action {
		case ActionCreate, ActionRead, ActionUpdate:
			return true, nil
		}
	}

	// every non-owner path requires a shared organisation
	if actor.OrganisationID != owner.OrganisationID {
		return false, nil
	}

	if action != ActionRead && action != ActionApprove {
		return false, nil
	}

	if actor.IsAdmin() {
		return true, nil
	}

	return p.teams.LeadsActiveMember(actor.ID, record.UserID)
}
