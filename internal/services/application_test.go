package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/collabhub/backend/internal/models"
)

type applicationFixture struct {
	projects     *ProjectService
	applications *ApplicationService
	creator      *models.User
	project      *models.Project
}

func newApplicationFixture(t *testing.T) *applicationFixture {
	t.Helper()

	db := newTestDB(t)
	v := newTestValidator()
	projects := NewProjectService(db, v, nil)
	applications := NewApplicationService(db, v)

	creator := seedUser(t, db, "creator")
	project := seedProject(t, projects, creator.ID, "Team Finder")

	return &applicationFixture{
		projects:     projects,
		applications: applications,
		creator:      creator,
		project:      project,
	}
}

func TestApply(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "let me in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if application.Status != models.ApplicationStatusPending {
		t.Errorf("new application status = %q, expected pending", application.Status)
	}
	if application.User == nil || application.User.ID != applicant.ID {
		t.Error("applicant join not resolved")
	}
}

func TestApply_GuardChain(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	if _, err := f.applications.Apply(999, applicant.ID, "hi"); appErrCode(t, err) != 404 {
		t.Errorf("missing project: expected code 404, got %d", appErrCode(t, err))
	}

	_, err := f.applications.Apply(f.project.ID, f.creator.ID, "me myself")
	if appErrCode(t, err) != 409 || !strings.Contains(err.Error(), "own project") {
		t.Errorf("creator self-application: got %v", err)
	}

	if _, err := f.applications.Apply(f.project.ID, applicant.ID, "   "); appErrCode(t, err) != 400 {
		t.Errorf("blank message: expected code 400, got %d", appErrCode(t, err))
	}
}

func TestApply_ClosedProject(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	setProjectStatus(t, f.applications.db, f.project.ID, models.ProjectStatusClosed)

	_, err := f.applications.Apply(f.project.ID, applicant.ID, "too late")
	if appErrCode(t, err) != 409 || !strings.Contains(err.Error(), "not open") {
		t.Errorf("closed project application: got %v", err)
	}
}

func TestApply_DuplicateEvenAfterRejection(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "first try")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.applications.Apply(f.project.ID, applicant.ID, "again"); appErrCode(t, err) != 409 {
		t.Errorf("pending duplicate: expected code 409, got %d", appErrCode(t, err))
	}

	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusRejected, f.creator.ID); err != nil {
		t.Fatal(err)
	}

	// one application ever, regardless of outcome
	if _, err := f.applications.Apply(f.project.ID, applicant.ID, "third try"); appErrCode(t, err) != 409 {
		t.Errorf("post-rejection reapply: expected code 409, got %d", appErrCode(t, err))
	}
}

func TestApply_FullTeam(t *testing.T) {
	f := newApplicationFixture(t)

	// two-person team: creator plus one slot
	in := testProjectInput("Tiny Team")
	in.TeamSize = 2
	project, err := f.projects.Create(in, f.creator.ID)
	if err != nil {
		t.Fatal(err)
	}

	joiner := seedUser(t, f.applications.db, "joiner")
	late := seedUser(t, f.applications.db, "late")

	a, err := f.applications.Apply(project.ID, joiner.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.applications.SetStatus(a.ID, models.ApplicationStatusAccepted, f.creator.ID); err != nil {
		t.Fatal(err)
	}

	got, err := f.projects.GetByID(project.ID)
	if err != nil {
		t.Fatal(err)
	}
	ids := got.MemberIDs()
	if len(ids) != 2 || ids[0] != f.creator.ID || ids[1] != joiner.ID {
		t.Fatalf("members = %v", ids)
	}

	_, err = f.applications.Apply(project.ID, late.ID, "room for one more?")
	if appErrCode(t, err) != 409 || !strings.Contains(err.Error(), "full") {
		t.Errorf("application to a full team: got %v", err)
	}
}

func TestSetStatus_AcceptAddsMember(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}

	accepted, err := f.applications.SetStatus(application.ID, models.ApplicationStatusAccepted, f.creator.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != models.ApplicationStatusAccepted {
		t.Errorf("status = %q", accepted.Status)
	}

	project, err := f.projects.GetByID(f.project.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !project.HasMember(applicant.ID) {
		t.Error("accepted applicant missing from team")
	}
	// join order: creator first, then the accepted applicant
	ids := project.MemberIDs()
	if len(ids) != 2 || ids[0] != f.creator.ID || ids[1] != applicant.ID {
		t.Errorf("member order = %v", ids)
	}
}

func TestSetStatus_Authorization(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")
	stranger := seedUser(t, f.applications.db, "stranger")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}

	// only the creator decides accepted/rejected
	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusAccepted, applicant.ID); appErrCode(t, err) != 403 {
		t.Errorf("applicant accepting own application: expected code 403, got %d", appErrCode(t, err))
	}

	// only the applicant cancels
	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusCancelled, f.creator.ID); appErrCode(t, err) != 403 {
		t.Errorf("creator cancelling: expected code 403, got %d", appErrCode(t, err))
	}
	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusCancelled, stranger.ID); appErrCode(t, err) != 403 {
		t.Errorf("stranger cancelling: expected code 403, got %d", appErrCode(t, err))
	}

	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusCancelled, applicant.ID); err != nil {
		t.Errorf("applicant cancelling failed: %v", err)
	}
}

func TestSetStatus_TerminalIsFinal(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.applications.SetStatus(application.ID, models.ApplicationStatusRejected, f.creator.ID); err != nil {
		t.Fatal(err)
	}

	for _, target := range []string{
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
		models.ApplicationStatusCancelled,
	} {
		actor := f.creator.ID
		if target == models.ApplicationStatusCancelled {
			actor = applicant.ID
		}
		if _, err := f.applications.SetStatus(application.ID, target, actor); appErrCode(t, err) != 409 {
			t.Errorf("transition from terminal to %s: expected code 409, got %d", target, appErrCode(t, err))
		}
	}
}

func TestSetStatus_InvalidTarget(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	application, err := f.applications.Apply(f.project.ID, applicant.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}

	// pending is not a target; neither is anything else outside the enum
	for _, target := range []string{models.ApplicationStatusPending, "approved", ""} {
		if _, err := f.applications.SetStatus(application.ID, target, f.creator.ID); appErrCode(t, err) != 400 {
			t.Errorf("target %q: expected code 400, got %d", target, appErrCode(t, err))
		}
	}
}

func TestSetStatus_AcceptRespectsCapacity(t *testing.T) {
	f := newApplicationFixture(t)

	// team_size 3: creator plus two slots
	first := seedUser(t, f.applications.db, "first")
	second := seedUser(t, f.applications.db, "second")
	third := seedUser(t, f.applications.db, "third")

	var apps []*models.Application
	for _, u := range []*models.User{first, second, third} {
		a, err := f.applications.Apply(f.project.ID, u.ID, "pick me")
		if err != nil {
			t.Fatal(err)
		}
		apps = append(apps, a)
	}

	for i := 0; i < 2; i++ {
		if _, err := f.applications.SetStatus(apps[i].ID, models.ApplicationStatusAccepted, f.creator.ID); err != nil {
			t.Fatalf("accept %d failed: %v", i, err)
		}
	}

	_, err := f.applications.SetStatus(apps[2].ID, models.ApplicationStatusAccepted, f.creator.ID)
	if appErrCode(t, err) != 409 || !strings.Contains(err.Error(), "full") {
		t.Errorf("accept beyond capacity: got %v", err)
	}

	// the application stayed pending, so reject still works
	if _, err := f.applications.SetStatus(apps[2].ID, models.ApplicationStatusRejected, f.creator.ID); err != nil {
		t.Errorf("reject after failed accept: %v", err)
	}
}

func TestSetStatus_ConcurrentAcceptsOneSlot(t *testing.T) {
	f := newApplicationFixture(t)

	// fill all but one slot
	filler := seedUser(t, f.applications.db, "filler")
	a, err := f.applications.Apply(f.project.ID, filler.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.applications.SetStatus(a.ID, models.ApplicationStatusAccepted, f.creator.ID); err != nil {
		t.Fatal(err)
	}

	left := seedUser(t, f.applications.db, "left")
	right := seedUser(t, f.applications.db, "right")
	leftApp, err := f.applications.Apply(f.project.ID, left.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}
	rightApp, err := f.applications.Apply(f.project.ID, right.ID, "pick me")
	if err != nil {
		t.Fatal(err)
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.applications.SetStatus(leftApp.ID, models.ApplicationStatusAccepted, f.creator.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.applications.SetStatus(rightApp.ID, models.ApplicationStatusAccepted, f.creator.ID)
	}()
	wg.Wait()

	accepted := 0
	for _, err := range errs {
		if err == nil {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("exactly one concurrent accept should win, got %d (errs: %v)", accepted, errs)
	}

	var members int64
	f.applications.db.Model(&models.ProjectMember{}).
		Where("project_id = ?", f.project.ID).Count(&members)
	if members != 3 {
		t.Errorf("team size = %d, expected exactly 3", members)
	}
}

func TestSetStatus_ConcurrentAcceptAndCancelOneWins(t *testing.T) {
	f := newApplicationFixture(t)

	// A creator accept racing the applicant's cancel: the loser's stale
	// pending check must not overwrite the winner's terminal status.
	for i := 0; i < 10; i++ {
		project := seedProject(t, f.projects, f.creator.ID, fmt.Sprintf("Race %d", i))
		applicant := seedUser(t, f.applications.db, fmt.Sprintf("racer%d", i))
		a, err := f.applications.Apply(project.ID, applicant.ID, "pick me")
		if err != nil {
			t.Fatal(err)
		}

		errs := make([]error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = f.applications.SetStatus(a.ID, models.ApplicationStatusAccepted, f.creator.ID)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = f.applications.SetStatus(a.ID, models.ApplicationStatusCancelled, applicant.ID)
		}()
		wg.Wait()

		won := 0
		for _, err := range errs {
			if err == nil {
				won++
			}
		}
		if won != 1 {
			t.Fatalf("iteration %d: exactly one transition should win, got %d (errs: %v)", i, won, errs)
		}

		var got models.Application
		if err := f.applications.db.First(&got, a.ID).Error; err != nil {
			t.Fatal(err)
		}
		var member int64
		f.applications.db.Model(&models.ProjectMember{}).
			Where("project_id = ? AND user_id = ?", project.ID, applicant.ID).Count(&member)

		switch got.Status {
		case models.ApplicationStatusAccepted:
			if member != 1 {
				t.Fatalf("iteration %d: accepted applicant missing from team", i)
			}
		case models.ApplicationStatusCancelled:
			if member != 0 {
				t.Fatalf("iteration %d: cancelled application but applicant joined the team", i)
			}
		default:
			t.Fatalf("iteration %d: application left in %q", i, got.Status)
		}
	}
}

func TestListByUser_Ordering(t *testing.T) {
	f := newApplicationFixture(t)
	applicant := seedUser(t, f.applications.db, "applicant")

	otherProjects := []string{"Second", "Third", "Fourth"}
	ids := []uint{f.project.ID}
	for _, title := range otherProjects {
		p := seedProject(t, f.projects, f.creator.ID, title)
		ids = append(ids, p.ID)
	}

	var apps []*models.Application
	for _, pid := range ids {
		a, err := f.applications.Apply(pid, applicant.ID, "pick me")
		if err != nil {
			t.Fatal(err)
		}
		apps = append(apps, a)
	}

	if _, err := f.applications.SetStatus(apps[1].ID, models.ApplicationStatusRejected, f.creator.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.applications.SetStatus(apps[2].ID, models.ApplicationStatusAccepted, f.creator.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.applications.SetStatus(apps[3].ID, models.ApplicationStatusCancelled, applicant.ID); err != nil {
		t.Fatal(err)
	}

	list, err := f.applications.ListByUser(applicant.ID)
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, 0, len(list))
	for _, a := range list {
		got = append(got, a.Status)
	}
	want := []string{
		models.ApplicationStatusAccepted,
		models.ApplicationStatusPending,
		models.ApplicationStatusRejected,
		models.ApplicationStatusCancelled,
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
