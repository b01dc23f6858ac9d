package httpserver

import (
	"errors"
	"sync"

	"tasks-api/internal/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const tagTaskStatus = "taskstatus"

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// registerValidators installs custom binding rules on gin's validator engine.
func registerValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			validatorsErr = errors.New("unexpected binding validator engine")
			return
		}
		validatorsErr = v.RegisterValidation(tagTaskStatus, func(fl validator.FieldLevel) bool {
			return domain.TaskStatus(fl.Field().String()).Valid()
		})
	})
	return validatorsErr
}

// bindingErrorMessage turns a bind failure into a client-facing message.
func bindingErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			if fe.Tag() == tagTaskStatus {
				return "status must be one of pending, in_progress, completed"
			}
		}
	}
	return "invalid request body"
}
