package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate общий экземпляр валидатора для DTO всех сервисов.
var Validate = validator.New()

// Struct проверяет DTO и возвращает ошибку с перечнем полей, не прошедших проверку.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s:%s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
}
