package shell

import (
	"context"
	"strings"
	"time"

	"simpliparts-be/internal/pkg/formrules"
	"simpliparts-be/internal/pkg/logger"
	"simpliparts-be/internal/view"
)

// FieldErrors maps a form field name to the message shown beside it.
// The "form" key carries a message for the whole form.
type FieldErrors map[string]string

const FormField = "form"

// ResetRedirectDelay is how long the forgot-password success message stays up.
const ResetRedirectDelay = 3 * time.Second

type LoginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (f LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if p := formrules.EmailProblem(f.Email); p != "" {
		errs["email"] = p
	}
	if f.Password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

type SignUpForm struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	ShopName  string `json:"shop_name"`
	Password  string `json:"password"`
}

func (f SignUpForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.FirstName) == "" {
		errs["first_name"] = "First name is required"
	}
	if strings.TrimSpace(f.LastName) == "" {
		errs["last_name"] = "Last name is required"
	}
	if p := formrules.EmailProblem(f.Email); p != "" {
		errs["email"] = p
	}
	if strings.TrimSpace(f.ShopName) == "" {
		errs["shop_name"] = "Shop name is required"
	}
	if p := formrules.PasswordProblem(f.Password); p != "" {
		errs["password"] = p
	}
	return errs
}

type ResetPasswordForm struct {
	Email           string `json:"email"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (f ResetPasswordForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if p := formrules.EmailProblem(f.Email); p != "" {
		errs["email"] = p
	}
	if p := formrules.ResetCodeProblem(f.Code); p != "" {
		errs["code"] = p
	}
	if p := formrules.PasswordProblem(f.NewPassword); p != "" {
		errs["new_password"] = p
	}
	if f.ConfirmPassword != f.NewPassword {
		errs["confirm_password"] = "Passwords do not match"
	}
	return errs
}

type FeedbackForm struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

var feedbackTypes = map[string]struct{}{
	"bug": {}, "feature": {}, "analytics": {}, "question": {}, "other": {},
}

func (f FeedbackForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if _, ok := feedbackTypes[f.Type]; !ok {
		errs["type"] = "Choose a feedback type"
	}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Title is required"
	}
	if strings.TrimSpace(f.Description) == "" {
		errs["description"] = "Description is required"
	}
	return errs
}

// PasswordRecovery is the part of the backend the recovery screens talk to.
type PasswordRecovery interface {
	RequestResetCode(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

// Forms runs the auth screens: inline validation first, then the
// collaborator call. Navigation after sign-in or sign-up happens through the
// session gate's auth subscription, not here.
type Forms struct {
	gate     *SessionGate
	auth     AuthCollaborator
	recovery PasswordRecovery
	logger   logger.ILogger
}

func NewForms(gate *SessionGate, auth AuthCollaborator, recovery PasswordRecovery, log logger.ILogger) *Forms {
	return &Forms{gate: gate, auth: auth, recovery: recovery, logger: log}
}

func (f *Forms) SignIn(ctx context.Context, form LoginForm) FieldErrors {
	if errs := form.Validate(); len(errs) > 0 {
		return errs
	}
	if _, err := f.auth.SignInWithPassword(ctx, strings.TrimSpace(form.Email), form.Password); err != nil {
		f.logger.Info("FORMS", "Sign in rejected", map[string]interface{}{"error": err.Error()})
		return FieldErrors{FormField: "Invalid email or password"}
	}
	return nil
}

func (f *Forms) SignUp(ctx context.Context, form SignUpForm) FieldErrors {
	if errs := form.Validate(); len(errs) > 0 {
		return errs
	}
	profile := SignUpProfile{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		ShopName:  strings.TrimSpace(form.ShopName),
	}
	if _, err := f.auth.SignUp(ctx, strings.TrimSpace(form.Email), form.Password, profile); err != nil {
		f.logger.Info("FORMS", "Sign up rejected", map[string]interface{}{"error": err.Error()})
		return FieldErrors{FormField: err.Error()}
	}
	return nil
}

// ForgotPassword requests a reset code and, on success, schedules the move to
// the reset-password screen. The returned cancel is a no-op on failure.
func (f *Forms) ForgotPassword(ctx context.Context, email string) (FieldErrors, func()) {
	if p := formrules.EmailProblem(email); p != "" {
		return FieldErrors{"email": p}, func() {}
	}
	if err := f.recovery.RequestResetCode(ctx, strings.TrimSpace(email)); err != nil {
		f.logger.Warn("FORMS", "Reset code request failed", map[string]interface{}{"error": err.Error()})
		return FieldErrors{FormField: "Could not send the reset code. Please try again."}, func() {}
	}
	return nil, f.gate.ScheduleRedirect(view.ResetPassword, ResetRedirectDelay)
}

func (f *Forms) ResetPassword(ctx context.Context, form ResetPasswordForm) FieldErrors {
	if errs := form.Validate(); len(errs) > 0 {
		return errs
	}
	if err := f.recovery.ResetPassword(ctx, strings.TrimSpace(form.Email), form.Code, form.NewPassword); err != nil {
		return FieldErrors{FormField: err.Error()}
	}
	f.gate.Router().Navigate(view.Login)
	return nil
}

func (f *Forms) SignOut(ctx context.Context) {
	if err := f.auth.SignOut(ctx); err != nil {
		f.logger.Warn("FORMS", "Sign out failed", map[string]interface{}{"error": err.Error()})
	}
}
