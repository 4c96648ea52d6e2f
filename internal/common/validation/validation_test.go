package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Mohsinkhani/hotel-management-sub000/internal/common/errors"
)

type roomForm struct {
	Name  string  `json:"name" validate:"required"`
	Price float64 `json:"price" validate:"gt=0"`
	Skip  string  `json:"-" validate:"omitempty,max=1"`
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(&roomForm{Name: "101", Price: 10}))

	err := Check(&roomForm{Price: 10})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
	assert.Contains(t, err.Error(), "name")

	err = Check(&roomForm{Name: "101"})
	assert.Contains(t, err.Error(), "price")
}

func TestGet_Shared(t *testing.T) {
	assert.Same(t, Get(), Get())
}

func TestToAppError_NonValidationError(t *testing.T) {
	err := ToAppError(errors.New("boom"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}
