package service

import (
	"testing"

	"tasktracker/internal/apperror"
	"tasktracker/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListParamsDefaults(t *testing.T) {
	p, err := ParseListParams("", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultPageSize, p.PageSize)
	assert.Equal(t, repository.Desc, p.Order)
	assert.Equal(t, repository.SortByCreateTime, p.Sort)
	assert.Equal(t, 0, p.Offset())

	p, err = ParseListParams("3", "20", "ASC", "duration")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())
}

func TestParseListParamsRejects(t *testing.T) {
	cases := []struct{ page, size, order, key string }{
		{"0", "", "", ""},
		{"x", "", "", ""},
		{"", "0", "", ""},
		{"", "101", "", ""},
		{"", "", "asc", ""},
		{"", "", "RANDOM", ""},
		{"", "", "", "title"},
		{"", "", "", "duration_minutes; DROP TABLE tasks"},
	}
	for _, c := range cases {
		_, err := ParseListParams(c.page, c.size, c.order, c.key)
		assert.ErrorIs(t, err, apperror.ErrValidation, "%+v", c)
	}
}
