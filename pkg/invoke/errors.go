package invoke

import (
	"fmt"
	"reflect"

	"github.com/aws/aws-lambda-go/lambda/messages"
)

// Error é a falha contida na fronteira de invocação (resolução, erro do
// handler ou panic).
type Error struct {
	Function string
	Type     string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("função %s falhou (%s): %s", e.Function, e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Payload devolve o corpo de erro no formato do runtime Lambda.
func (e *Error) Payload() messages.InvokeResponse_Error {
	return messages.InvokeResponse_Error{
		Message: e.Message,
		Type:    e.Type,
	}
}

func newError(function string, err error) *Error {
	return &Error{
		Function: function,
		Type:     errorType(err),
		Message:  err.Error(),
		Err:      err,
	}
}

// errorType segue a convenção do runtime: nome do tipo concreto, sem ponteiro.
func errorType(err error) string {
	t := reflect.TypeOf(err)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
