package auth

import "github.com/anylearn/anylearn/internal/session"

// Reject reasons are machine readable; handlers map them onto HTTP codes
// and user-facing copy. Password rule names from the policy package are
// passed through untouched.
const (
	ReasonEmailInvalid     = "email_invalid"
	ReasonPasswordMismatch = "password_mismatch"
	ReasonRoleInvalid      = "role_invalid"

	// one reason for both username and email collisions so a caller
	// cannot probe which field is taken
	ReasonAccountTaken = "account_taken"

	// one reason for both unknown username and wrong password so a
	// caller cannot probe account existence
	ReasonInvalidCredentials = "invalid_credentials"
)

type RegisterStatus int

const (
	RegisterCreated RegisterStatus = iota
	RegisterRejected
	RegisterStoreError
)

// RegisterOutcome is a tagged result. Exactly one of AccountID, Reason
// or Err is meaningful depending on Status.
type RegisterOutcome struct {
	Status    RegisterStatus
	AccountID string
	Reason    string
	Message   string
	Err       error
}

func registerCreated(accountID string) RegisterOutcome {
	return RegisterOutcome{Status: RegisterCreated, AccountID: accountID}
}

func registerRejected(reason, message string) RegisterOutcome {
	return RegisterOutcome{Status: RegisterRejected, Reason: reason, Message: message}
}

func registerStoreError(err error) RegisterOutcome {
	return RegisterOutcome{Status: RegisterStoreError, Err: err}
}

type LoginStatus int

const (
	LoginAuthenticated LoginStatus = iota
	LoginRejected
	LoginStoreError
)

type LoginOutcome struct {
	Status  LoginStatus
	Session session.Session
	Reason  string
	Message string
	Err     error
}

func loginAuthenticated(sess session.Session) LoginOutcome {
	return LoginOutcome{Status: LoginAuthenticated, Session: sess}
}

func loginRejected() LoginOutcome {
	return LoginOutcome{
		Status:  LoginRejected,
		Reason:  ReasonInvalidCredentials,
		Message: "username or password is incorrect",
	}
}

func loginStoreError(err error) LoginOutcome {
	return LoginOutcome{Status: LoginStoreError, Err: err}
}
