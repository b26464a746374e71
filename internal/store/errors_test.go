package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateErrorUniqueViolation(t *testing.T) {
	err := translateError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTranslateErrorForeignKeyViolation(t *testing.T) {
	err := translateError(&pq.Error{Code: "23503", Constraint: "farms_farmer_id_fkey"})

	var fkErr *ForeignKeyError
	require.ErrorAs(t, err, &fkErr)
	assert.Equal(t, "farmer_id", fkErr.Reference)
}

func TestTranslateErrorPassthrough(t *testing.T) {
	sentinel := errors.New("connection reset")
	assert.Equal(t, sentinel, translateError(sentinel))

	otherPq := &pq.Error{Code: "57014", Message: "canceled"}
	assert.Equal(t, error(otherPq), translateError(otherPq))
}

func TestReferenceFromConstraint(t *testing.T) {
	cases := map[string]string{
		"farms_farmer_id_fkey":   "farmer_id",
		"crops_farm_id_fkey":     "farm_id",
		"farmers_user_id_fkey":   "user_id",
		"equipment_farm_id_fkey": "farm_id",
		"oddlynamedconstraint":   "oddlynamedconstraint",
	}
	for constraint, want := range cases {
		assert.Equal(t, want, referenceFromConstraint(constraint), "constraint=%q", constraint)
	}
}
