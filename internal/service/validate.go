package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"project-management-api/internal/core/errs"
	"project-management-api/internal/domain"
)

var emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// validate 初始化后只读，validator 本身并发安全
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 错误信息里用 json 字段名
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return emailRE.MatchString(fl.Field().String())
	})
	// 枚举取值以 domain 为准
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
		return domain.TaskStatus(fl.Field().String()).Valid()
	})
	return v
}

// validateStruct 只返回第一条违规
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		return errs.Validation(message(ves[0]))
	}
	return errs.Validation(err.Error())
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", f)
	case "notblank":
		return fmt.Sprintf("Field '%s' cannot be empty", f)
	case "emailaddr":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Field '%s' must be at least %s characters", f, fe.Param())
	case "max":
		return fmt.Sprintf("Field '%s' must be at most %s characters", f, fe.Param())
	case "role":
		return fmt.Sprintf("Field '%s' must be one of: manager, employee", f)
	case "taskstatus":
		return fmt.Sprintf("Field '%s' must be one of: pending, in_progress, completed", f)
	case "gt":
		return fmt.Sprintf("Field '%s' must be a positive integer", f)
	default:
		return fmt.Sprintf("Field '%s' is invalid", f)
	}
}

// normalizeEmail 去空格 + 小写
func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func trimmed(s string) string { return strings.TrimSpace(s) }

// optionalText 可选文本：去空格后为空即视为清空
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
