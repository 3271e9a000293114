package service

import (
	"strconv"

	"tasktracker/internal/apperror"
	"tasktracker/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type PageRequest struct {
	Page     int
	PageSize int
}

func (p PageRequest) Limit() int  { return p.PageSize }
func (p PageRequest) Offset() int { return (p.Page - 1) * p.PageSize }

// ParsePageRequest reads raw query values. Empty values take the defaults;
// anything else must be an integer in range.
func ParsePageRequest(page, pageSize string) (PageRequest, error) {
	req := PageRequest{Page: 1, PageSize: DefaultPageSize}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return req, apperror.Validation("page must be a positive integer")
		}
		req.Page = n
	}
	if pageSize != "" {
		n, err := strconv.Atoi(pageSize)
		if err != nil || n < 1 || n > MaxPageSize {
			return req, apperror.Validation("page_size must be between 1 and %d", MaxPageSize)
		}
		req.PageSize = n
	}
	return req, nil
}

// ParseOrder defaults to DESC when raw is empty.
func ParseOrder(raw string) (repository.Order, error) {
	if raw == "" {
		return repository.Desc, nil
	}
	o, err := repository.ParseOrder(raw)
	if err != nil {
		return "", apperror.Validation("order must be ASC or DESC")
	}
	return o, nil
}

// ParseSessionSort defaults to create_time when raw is empty.
func ParseSessionSort(raw string) (repository.SessionSort, error) {
	if raw == "" {
		return repository.SortByCreateTime, nil
	}
	k, err := repository.ParseSessionSort(raw)
	if err != nil {
		return "", apperror.Validation("key must be duration or create_time")
	}
	return k, nil
}

// ListParams is a validated listing request.
type ListParams struct {
	PageRequest
	Order repository.Order
	Sort  repository.SessionSort
}

func ParseListParams(page, pageSize, order, key string) (ListParams, error) {
	var (
		p   ListParams
		err error
	)
	if p.PageRequest, err = ParsePageRequest(page, pageSize); err != nil {
		return p, err
	}
	if p.Order, err = ParseOrder(order); err != nil {
		return p, err
	}
	if p.Sort, err = ParseSessionSort(key); err != nil {
		return p, err
	}
	return p, nil
}
