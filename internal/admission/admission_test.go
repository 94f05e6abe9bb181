package admission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cookiejar/creator/internal/models"
)

const otherPage = "/dashboard/games"

func creator(status models.CreatorStatus) Session {
	return Session{
		Status: StatusAuthenticated,
		Claims: Claims{UserID: "u1", IsCreator: true, CreatorStatus: status},
	}
}

func TestDecideTable(t *testing.T) {
	loading := Session{Status: StatusLoading}
	anonymous := Session{Status: StatusUnauthenticated}
	nonCreator := Session{Status: StatusAuthenticated, Claims: Claims{UserID: "u1"}}

	tests := []struct {
		name         string
		session      Session
		allowPending bool
		enrollment   Decision
		pending      Decision
		other        Decision
	}{
		{
			name:       "loading",
			session:    loading,
			enrollment: ShowBlockingScreen(ScreenSpinner),
			pending:    ShowBlockingScreen(ScreenSpinner),
			other:      ShowBlockingScreen(ScreenSpinner),
		},
		{
			name:       "unauthenticated",
			session:    anonymous,
			enrollment: RedirectTo(SignInPath),
			pending:    RedirectTo(SignInPath),
			other:      RedirectTo(SignInPath),
		},
		{
			name:       "authenticated non-creator",
			session:    nonCreator,
			enrollment: ShowBlockingScreen(ScreenAccessDenied),
			pending:    ShowBlockingScreen(ScreenAccessDenied),
			other:      ShowBlockingScreen(ScreenAccessDenied),
		},
		{
			name:       "creator user",
			session:    creator(models.CreatorStatusUser),
			enrollment: RenderPage(),
			pending:    RedirectTo(EnrollmentPath),
			other:      RedirectTo(EnrollmentPath),
		},
		{
			name:       "creator pending",
			session:    creator(models.CreatorStatusPending),
			enrollment: RedirectTo(PendingApprovalPath),
			pending:    RenderPage(),
			other:      RedirectTo(PendingApprovalPath),
		},
		{
			name:         "creator pending allowPending",
			session:      creator(models.CreatorStatusPending),
			allowPending: true,
			enrollment:   RenderPage(),
			pending:      RenderPage(),
			other:        RenderPage(),
		},
		{
			name:       "creator approved",
			session:    creator(models.CreatorStatusApproved),
			enrollment: RenderPage(),
			pending:    RedirectTo(OverviewPath),
			other:      RenderPage(),
		},
		{
			name:       "creator rejected",
			session:    creator(models.CreatorStatusRejected),
			enrollment: RedirectTo(RejectedPath),
			pending:    RedirectTo(RejectedPath),
			other:      RedirectTo(RejectedPath),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decide := func(path string) Decision {
				return Decide(Input{Session: tt.session, Path: path, AllowPending: tt.allowPending})
			}
			assert.Equal(t, tt.enrollment, decide(EnrollmentPath), "enrollment page")
			assert.Equal(t, tt.pending, decide(PendingApprovalPath), "pending-approval page")
			assert.Equal(t, tt.other, decide(otherPage), "other page")
			assert.Equal(t, tt.other, decide(OverviewPath), "overview page")
		})
	}
}

func TestDecideExamples(t *testing.T) {
	nonCreator := Session{Status: StatusAuthenticated, Claims: Claims{UserID: "u1"}}
	for _, path := range []string{EnrollmentPath, PendingApprovalPath, RejectedPath, otherPage} {
		assert.Equal(t, ShowBlockingScreen(ScreenAccessDenied), Decide(Input{Session: nonCreator, Path: path}))
	}

	assert.Equal(t, RenderPage(), Decide(Input{Session: creator(models.CreatorStatusUser), Path: EnrollmentPath}))
	assert.Equal(t, RedirectTo(PendingApprovalPath), Decide(Input{Session: creator(models.CreatorStatusPending), Path: "/dashboard/games"}))
	assert.Equal(t, RedirectTo(RejectedPath), Decide(Input{Session: creator(models.CreatorStatusRejected), Path: PendingApprovalPath}))
	assert.Equal(t, RenderPage(), Decide(Input{Session: creator(models.CreatorStatusApproved), Path: "/dashboard/games"}))
}

func TestDecideNonCreatorWinsOverStaleStatus(t *testing.T) {
	for _, status := range []models.CreatorStatus{
		models.CreatorStatusUser,
		models.CreatorStatusPending,
		models.CreatorStatusApproved,
		models.CreatorStatusRejected,
	} {
		s := Session{Status: StatusAuthenticated, Claims: Claims{UserID: "u1", IsCreator: false, CreatorStatus: status}}
		assert.Equal(t, ShowBlockingScreen(ScreenAccessDenied), Decide(Input{Session: s, Path: otherPage, AllowPending: true}), string(status))
	}
}

func TestDecideRejectedPageRendersForRejected(t *testing.T) {
	assert.Equal(t, RenderPage(), Decide(Input{Session: creator(models.CreatorStatusRejected), Path: RejectedPath}))
	assert.Equal(t, RenderPage(), Decide(Input{Session: creator(models.CreatorStatusApproved), Path: RejectedPath}))
	assert.Equal(t, RedirectTo(EnrollmentPath), Decide(Input{Session: creator(models.CreatorStatusUser), Path: RejectedPath}))
}

func TestDecideUnknownStatusDenies(t *testing.T) {
	s := creator(models.CreatorStatus("banned"))
	assert.Equal(t, ShowBlockingScreen(ScreenAccessDenied), Decide(Input{Session: s, Path: otherPage}))
}

func TestDecideIsDeterministic(t *testing.T) {
	in := Input{Session: creator(models.CreatorStatusPending), Path: otherPage}
	assert.Equal(t, Decide(in), Decide(in))
}

func TestRedirectTargetsAreTerminal(t *testing.T) {
	// Following a redirect must land on a page that renders (or leaves the
	// dashboard for sign-in) rather than bouncing again.
	for _, status := range []models.CreatorStatus{
		models.CreatorStatusUser,
		models.CreatorStatusPending,
		models.CreatorStatusApproved,
		models.CreatorStatusRejected,
	} {
		s := creator(status)
		for _, p := range Pages() {
			d := DecidePage(s, p.Path)
			if d.Kind != Redirect {
				continue
			}
			next := DecidePage(s, d.Path)
			assert.Equal(t, Render, next.Kind, "%s: %s -> %s", status, p.Path, d.Path)
		}
	}
}

func TestDecidePageUsesRegistryFlags(t *testing.T) {
	pending := creator(models.CreatorStatusPending)

	assert.Equal(t, RenderPage(), DecidePage(pending, "/dashboard/settings"))
	assert.Equal(t, RenderPage(), DecidePage(pending, "/dashboard/settings/"))
	assert.Equal(t, RedirectTo(PendingApprovalPath), DecidePage(pending, "/dashboard/upload"))
	assert.Equal(t, RedirectTo(PendingApprovalPath), DecidePage(pending, "/dashboard/unknown"))
}

func TestLookupPage(t *testing.T) {
	p, ok := LookupPage("/dashboard/settings")
	assert.True(t, ok)
	assert.True(t, p.AllowPending)
	assert.Equal(t, "settings", p.Name)

	_, ok = LookupPage("/dashboard/nope")
	assert.False(t, ok)
}
