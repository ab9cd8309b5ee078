package policy

import (
	"testing"

	"github.com/fieldflow/timelog_service/internal/domain"
)

type fakeTeams struct {
	leads map[[2]uint]bool
}

func (f *fakeTeams) LeadsActiveMember(leaderID, workerID uint) (bool, error) {
	return f.leads[[2]uint{leaderID, workerID}], nil
}

func newFixture() (*Policy, *domain.User, *domain.User, *domain.TimeLog) {
	worker := &domain.User{ID: 1, Role: domain.RoleWorker, OrganisationID: 10}
	record := &domain.TimeLog{ID: 100, UserID: worker.ID}

	teams := &fakeTeams{leads: map[[2]uint]bool{
		{3, 1}: true, // user 3 leads a team with worker 1 active
	}}
	return New(teams), worker, worker, record
}

func TestDecide_Owner(t *testing.T) {
	gate, worker, owner, record := newFixture()

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate} {
		ok, err := gate.Decide(action, worker, owner, record)
		if err != nil {
			t.Fatalf("Decide(%v) error = %v", action, err)
		}
		if !ok {
			t.Errorf("Decide(%v) = false, want owner allowed", action)
		}
	}

	// a plain worker cannot approve their own log
	ok, err := gate.Decide(ActionApprove, worker, owner, record)
	if err != nil {
		t.Fatalf("Decide(approve) error = %v", err)
	}
	if ok {
		t.Error("Decide(approve) = true, want owner denied")
	}
}

func TestDecide_AdminSameOrganisation(t *testing.T) {
	gate, _, owner, record := newFixture()
	admin := &domain.User{ID: 2, Role: domain.RoleAdmin, OrganisationID: 10}

	for _, tc := range []struct {
		action Action
		want   bool
	}{
		{ActionRead, true},
		{ActionApprove, true},
		{ActionUpdate, false},
		{ActionCreate, false},
	} {
		ok, err := gate.Decide(tc.action, admin, owner, record)
		if err != nil {
			t.Fatalf("Decide(%v) error = %v", tc.action, err)
		}
		if ok != tc.want {
			t.Errorf("Decide(%v) = %v, want %v", tc.action, ok, tc.want)
		}
	}
}

func TestDecide_AdminOtherOrganisation(t *testing.T) {
	gate, _, owner, record := newFixture()
	admin := &domain.User{ID: 2, Role: domain.RoleAdmin, OrganisationID: 99}

	ok, err := gate.Decide(ActionRead, admin, owner, record)
	if err != nil {
		t.Fatalf("Decide(read) error = %v", err)
	}
	if ok {
		t.Error("Decide(read) = true, want cross-organisation admin denied")
	}
}

func TestDecide_TeamLeader(t *testing.T) {
	gate, _, owner, record := newFixture()
	leader := &domain.User{ID: 3, Role: domain.RoleWorker, OrganisationID: 10}

	for _, action := range []Action{ActionRead, ActionApprove} {
		ok, err := gate.Decide(action, leader, owner, record)
		if err != nil {
			t.Fatalf("Decide(%v) error = %v", action, err)
		}
		if !ok {
			t.Errorf("Decide(%v) = false, want leader allowed", action)
		}
	}

	ok, err := gate.Decide(ActionUpdate, leader, owner, record)
	if err != nil {
		t.Fatalf("Decide(update) error = %v", err)
	}
	if ok {
		t.Error("Decide(update) = true, want leader limited to read/approve")
	}
}

func TestDecide_LeaderWithoutActiveMembership(t *testing.T) {
	gate, _, owner, record := newFixture()
	// user 4 leads no team containing worker 1
	stranger := &domain.User{ID: 4, Role: domain.RoleWorker, OrganisationID: 10}

	ok, err := gate.Decide(ActionApprove, stranger, owner, record)
	if err != nil {
		t.Fatalf("Decide(approve) error = %v", err)
	}
	if ok {
		t.Error("Decide(approve) = true, want non-leader denied")
	}
}

func TestDecide_LeaderOtherOrganisation(t *testing.T) {
	gate, _, owner, record := newFixture()
	// leads the team but sits in another organisation
	leader := &domain.User{ID: 3, Role: domain.RoleWorker, OrganisationID: 99}

	ok, err := gate.Decide(ActionApprove, leader, owner, record)
	if err != nil {
		t.Fatalf("Decide(approve) error = %v", err)
	}
	if ok {
		t.Error("Decide(approve) = true, want cross-organisation leader denied")
	}
}

func TestDecide_SalesDenied(t *testing.T) {
	gate, _, owner, record := newFixture()
	sales := &domain.User{ID: 5, Role: domain.RoleSales, OrganisationID: 10}

	for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionApprove} {
		ok, err := gate.Decide(action, sales, owner, record)
		if err != nil {
			t.Fatalf("Decide(%v) error = %v", action, err)
		}
		if ok {
			t.Errorf("Decide(%v) = true, want unrelated sales user denied", action)
		}
	}
}

func TestDecide_OwnerMismatchDenied(t *testing.T) {
	gate, worker, _, record := newFixture()
	// owner row that does not match the record's user is a caller bug; deny
	wrongOwner := &domain.User{ID: 42, Role: domain.RoleWorker, OrganisationID: 10}

	ok, err := gate.Decide(ActionRead, worker, wrongOwner, record)
	if err != nil {
		t.Fatalf("Decide(read) error = %v", err)
	}
	if ok {
		t.Error("Decide(read) = true, want mismatched owner denied")
	}
}
