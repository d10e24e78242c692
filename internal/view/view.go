// Package view holds the screen state of one app shell and the policy that
// reconciles it with the authentication state.
package view

import "fmt"

type View string

const (
	Landing        View = "landing"
	Login          View = "login"
	Signup         View = "signup"
	ForgotPassword View = "forgot-password"
	ResetPassword  View = "reset-password"
	Dashboard      View = "dashboard"
	ShopSettings   View = "shop-settings"
	Support        View = "support"
	Feedback       View = "feedback"
	UploadFiles    View = "upload-files"
	ROAudit        View = "ro-audit"
	RODetail       View = "ro-detail"
	AskAI          View = "ask-ai"
	About          View = "about"
	Contact        View = "contact"
	PrivacyPolicy  View = "privacy-policy"
	TermsOfService View = "terms-of-service"
	Security       View = "security"
)

type Class int

const (
	ClassUnknown Class = iota - 1
	ClassPublic
	ClassAuth
	ClassProtected
)

func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassAuth:
		return "auth"
	case ClassProtected:
		return "protected"
	default:
		return "unknown"
	}
}

var classes = map[View]Class{
	Landing:        ClassPublic,
	About:          ClassPublic,
	Contact:        ClassPublic,
	PrivacyPolicy:  ClassPublic,
	TermsOfService: ClassPublic,
	Security:       ClassPublic,

	Login:          ClassAuth,
	Signup:         ClassAuth,
	ForgotPassword: ClassAuth,
	ResetPassword:  ClassAuth,

	Dashboard:    ClassProtected,
	ShopSettings: ClassProtected,
	Support:      ClassProtected,
	Feedback:     ClassProtected,
	UploadFiles:  ClassProtected,
	ROAudit:      ClassProtected,
	RODetail:     ClassProtected,
	AskAI:        ClassProtected,
}

// All returns every known view in declaration order.
func All() []View {
	return []View{
		Landing, Login, Signup, ForgotPassword, ResetPassword,
		Dashboard, ShopSettings, Support, Feedback, UploadFiles, ROAudit, RODetail, AskAI,
		About, Contact, PrivacyPolicy, TermsOfService, Security,
	}
}

func Parse(s string) (View, error) {
	v := View(s)
	if _, ok := classes[v]; !ok {
		return "", fmt.Errorf("unknown view %q", s)
	}
	return v, nil
}

func (v View) Valid() bool {
	_, ok := classes[v]
	return ok
}

// Class reports ClassUnknown for a view Parse would reject.
func (v View) Class() Class {
	c, ok := classes[v]
	if !ok {
		return ClassUnknown
	}
	return c
}

func (v View) IsProtected() bool {
	return v.Class() == ClassProtected
}

func (v View) String() string {
	return string(v)
}
