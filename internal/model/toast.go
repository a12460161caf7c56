package model

// ToastLevel controls how a toast is styled.
type ToastLevel string

const (
	ToastSuccess ToastLevel = "success"
	ToastError   ToastLevel = "error"
	ToastInfo    ToastLevel = "info"
)

// Toast is a transient notification reporting the outcome of an action.
// The short JSON names keep the flash cookie small.
type Toast struct {
	Level   ToastLevel `json:"l"`
	Message string     `json:"m"`
}

func Success(message string) Toast { return Toast{Level: ToastSuccess, Message: message} }
func Failure(message string) Toast { return Toast{Level: ToastError, Message: message} }
func Info(message string) Toast    { return Toast{Level: ToastInfo, Message: message} }
