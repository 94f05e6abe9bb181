// Package admission decides what a dashboard request gets to see, given the
// resolved session and the requested page. It performs no I/O.
package admission

import (
	"cookiejar/creator/internal/models"
)

const (
	SignInPath          = "/auth/signin"
	OverviewPath        = "/dashboard/overview"
	EnrollmentPath      = "/dashboard/creator-enrollment"
	PendingApprovalPath = "/dashboard/pending-approval"
	RejectedPath        = "/dashboard/rejected"
)

type SessionStatus int

const (
	StatusUnauthenticated SessionStatus = iota
	StatusLoading
	StatusAuthenticated
)

func (s SessionStatus) String() string {
	switch s {
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusLoading:
		return "loading"
	case StatusAuthenticated:
		return "authenticated"
	}
	return "unknown"
}

// Claims is the cached view of a profile carried by the session.
type Claims struct {
	UserID        string
	IsCreator     bool
	CreatorStatus models.CreatorStatus
}

// Session is a resolved session. The zero value is unauthenticated.
type Session struct {
	Status SessionStatus
	Claims Claims
}

type Kind int

const (
	Render Kind = iota
	Redirect
	Block
)

func (k Kind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case Block:
		return "block"
	}
	return "unknown"
}

type Screen string

const (
	ScreenSpinner      Screen = "spinner"
	ScreenAccessDenied Screen = "access-denied"
)

type Decision struct {
	Kind   Kind
	Path   string
	Screen Screen
}

func RenderPage() Decision { return Decision{Kind: Render} }

func RedirectTo(path string) Decision { return Decision{Kind: Redirect, Path: path} }

func ShowBlockingScreen(s Screen) Decision { return Decision{Kind: Block, Screen: s} }

type Input struct {
	Session      Session
	Path         string
	AllowPending bool
}

// Decide evaluates the admission table. The check order is fixed:
// non-creator, user, pending, rejected, then approved as the fallthrough.
func Decide(in Input) Decision {
	switch in.Session.Status {
	case StatusLoading:
		return ShowBlockingScreen(ScreenSpinner)
	case StatusAuthenticated:
	default:
		return RedirectTo(SignInPath)
	}

	claims := in.Session.Claims
	if !claims.IsCreator {
		return ShowBlockingScreen(ScreenAccessDenied)
	}

	switch claims.CreatorStatus {
	case models.CreatorStatusUser:
		if in.Path == EnrollmentPath {
			return RenderPage()
		}
		return RedirectTo(EnrollmentPath)

	case models.CreatorStatusPending:
		if in.AllowPending || in.Path == PendingApprovalPath {
			return RenderPage()
		}
		return RedirectTo(PendingApprovalPath)

	case models.CreatorStatusRejected:
		if in.Path == RejectedPath {
			return RenderPage()
		}
		return RedirectTo(RejectedPath)

	case models.CreatorStatusApproved:
		if in.Path == PendingApprovalPath {
			return RedirectTo(OverviewPath)
		}
		return RenderPage()

	default:
		// A status outside the enum can only come from a forged or corrupt
		// claim set.
		return ShowBlockingScreen(ScreenAccessDenied)
	}
}
