package account

// ErrorKind はワークフローのエラー分類です。
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindConflict   ErrorKind = "conflict"
	KindAuth       ErrorKind = "auth"
	KindServer     ErrorKind = "server"
)

// 利用者に表示するメッセージ
const (
	msgSignupFieldsRequired = "All fields are required."
	msgSigninFieldsRequired = "Email and password required."
	msgPasswordTooLong      = "Password must be at most 72 bytes."
	msgEmailTaken           = "Email already registered."
	msgInvalidCredentials   = "Invalid credentials."
	msgSignupServerError    = "Server error during signup."
	msgSigninServerError    = "Server error during signin."
	msgSignoutServerError   = "Server error during signout."
)

// Error はワークフローが返すエラーです。Message はそのまま利用者に表示できます。
// Err は内部原因で、ログ出力のみに使用します。
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func serverError(msg string, err error) *Error {
	return &Error{Kind: KindServer, Message: msg, Err: err}
}
