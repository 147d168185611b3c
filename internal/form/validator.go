package form

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/nikolayk812/storefront-client/internal/port"
)

type State int

const (
	Untouched State = iota
	Valid
	Invalid
)

func (s State) String() string {
	switch s {
	case Valid:
		return "valid"
	case Invalid:
		return "invalid"
	default:
		return "untouched"
	}
}

type FieldState struct {
	State   State
	Message string
}

// FieldError is a failed check on one form field. It drives UI state only.
type FieldError struct {
	Field  string
	Reason string
}

const (
	MessageInvalidEmail    = "Email inválido"
	MessageInvalidPassword = "A senha deve ter pelo menos 6 caracteres"
	MessageInvalidName     = "O nome deve ter pelo menos 2 caracteres"
)

type LoginForm struct {
	Email    string `form:"email" validate:"email_shape"`
	Password string `form:"senha" validate:"password_length"`
}

type RegisterForm struct {
	Name     string `form:"nome" validate:"name_length"`
	Email    string `form:"email" validate:"email_shape"`
	Password string `form:"senha" validate:"password_length"`
}

var reasons = map[string]string{
	"email_shape":     MessageInvalidEmail,
	"password_length": MessageInvalidPassword,
	"name_length":     MessageInvalidName,
}

// Validator tracks the ValidationState of each field it has rendered.
type Validator struct {
	hooks    port.FieldHooks
	validate *validator.Validate

	mu     sync.Mutex
	states map[string]FieldState
}

func New(hooks port.FieldHooks) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	// registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("email_shape", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("password_length", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String())
	})
	_ = v.RegisterValidation("name_length", func(fl validator.FieldLevel) bool {
		return ValidateName(fl.Field().String())
	})

	return &Validator{
		hooks:    hooks,
		validate: v,
		states:   make(map[string]FieldState),
	}
}

// Check validates a LoginForm or RegisterForm. Fields are named by their
// form tag, which is also the id of the input element.
func (v *Validator) Check(form any) []FieldError {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Reason: err.Error()}}
	}

	result := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		reason, ok := reasons[fe.Tag()]
		if !ok {
			reason = fe.Error()
		}
		result = append(result, FieldError{Field: fe.Field(), Reason: reason})
	}
	return result
}

// Apply marks every field of fields as valid unless errs names it.
func (v *Validator) Apply(fields []string, errs []FieldError) {
	failed := make(map[string]string, len(errs))
	for _, fe := range errs {
		if _, seen := failed[fe.Field]; !seen {
			failed[fe.Field] = fe.Reason
		}
	}

	for _, field := range fields {
		if reason, ok := failed[field]; ok {
			v.ShowError(field, reason)
		} else {
			v.ShowSuccess(field)
		}
	}
}

func (v *Validator) ShowError(fieldID, message string) {
	v.setState(fieldID, FieldState{State: Invalid, Message: message})

	if v.hooks != nil {
		v.hooks.SetFieldStyle(fieldID, true, false)
		v.hooks.SetFieldMessage(ErrorContainerID(fieldID), message, true)
	}
}

func (v *Validator) ShowSuccess(fieldID string) {
	v.setState(fieldID, FieldState{State: Valid})

	if v.hooks != nil {
		v.hooks.SetFieldStyle(fieldID, false, true)
		v.hooks.SetFieldMessage(ErrorContainerID(fieldID), "", false)
	}
}

func (v *Validator) ClearValidation(fieldID string) {
	v.mu.Lock()
	delete(v.states, fieldID)
	v.mu.Unlock()

	if v.hooks != nil {
		v.hooks.SetFieldStyle(fieldID, false, false)
		v.hooks.SetFieldMessage(ErrorContainerID(fieldID), "", false)
	}
}

func (v *Validator) State(fieldID string) FieldState {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.states[fieldID]
}

func (v *Validator) setState(fieldID string, state FieldState) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.states[fieldID] = state
}

func ErrorContainerID(fieldID string) string {
	return fieldID + "-error"
}
