package service

import (
	"project-management-api/internal/core/errs"
	"project-management-api/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	// IncludeLimit include_* 关联数据单次最多带出的条数
	IncludeLimit = 100
)

// Paging 由 handler 从 query 绑定，nil 表示未传
type Paging struct {
	Limit  *int `form:"limit"`
	Offset *int `form:"offset"`
}

func (p Paging) normalize() (domain.Page, error) {
	out := domain.Page{Limit: DefaultLimit}
	if p.Limit != nil {
		switch {
		case *p.Limit < 1:
			return out, errs.Validation("Parameter 'limit' must be a positive integer")
		case *p.Limit > MaxLimit:
			out.Limit = MaxLimit
		default:
			out.Limit = *p.Limit
		}
	}
	if p.Offset != nil {
		if *p.Offset < 0 {
			return out, errs.Validation("Parameter 'offset' must be a non-negative integer")
		}
		out.Offset = *p.Offset
	}
	return out, nil
}

type Page[T any] struct {
	Items  []T
	Total  int64
	Limit  int
	Offset int
}
