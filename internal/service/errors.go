package service

import (
	"context"
	"errors"

	"project-management-api/internal/core/errs"
	"project-management-api/internal/domain"
	"project-management-api/pkg/utils"
)

var (
	ErrUserNotFound    = errs.NotFound("User not found")
	ErrProjectNotFound = errs.NotFound("Project not found")
	ErrTaskNotFound    = errs.NotFound("Task not found")
	ErrEmailTaken      = errs.Conflict("Email already exists")
	ErrPasswordTooLong = errs.Validationf("Field 'password' must be at most %d bytes", utils.MaxPasswordBytes)
)

func hashPassword(pw string) (string, error) {
	h, err := utils.HashPassword(pw)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", errs.Internal("hash password", err)
	}
	return h, nil
}

// storeErr 唯一键冲突 → 409；请求已超时/取消 → 504；其余都是 500
// 驱动对取消的报错五花八门，所以同时看 ctx 本身
func storeErr(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicateKey):
		return ErrEmailTaken
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), ctx.Err() != nil:
		return errs.Timeout(op, err)
	}
	return errs.Internal(op, err)
}
