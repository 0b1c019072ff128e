package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecordID(t *testing.T) {
	assert.NoError(t, ValidateRecordID("3f2b6c1e-9a0d-4c1b-8e7f-0a1b2c3d4e5f"))
	assert.NoError(t, ValidateRecordID("wbs_01"))
	assert.ErrorIs(t, ValidateRecordID(""), ErrEmptyID)
	assert.ErrorIs(t, ValidateRecordID(strings.Repeat("a", MaxIDLength+1)), ErrIDTooLong)
	assert.ErrorIs(t, ValidateRecordID("a/b"), ErrInvalidIDFormat)
	assert.ErrorIs(t, ValidateRecordID("1' OR '1'='1"), ErrInvalidIDFormat)
}

func TestValidateNotes(t *testing.T) {
	assert.NoError(t, ValidateNotes(""))
	assert.NoError(t, ValidateNotes(strings.Repeat("审", MaxNotesLength)))
	assert.NoError(t, ValidateNotes("  "+strings.Repeat("a", MaxNotesLength)+"  "))
	assert.ErrorIs(t, ValidateNotes(strings.Repeat("a", MaxNotesLength+1)), ErrNotesTooLong)
}

func TestValidateBatch(t *testing.T) {
	assert.NoError(t, ValidateBatch([]string{"a"}))
	assert.ErrorIs(t, ValidateBatch(nil), ErrEmptyBatch)

	err := ValidateBatch(make([]string, MaxBatchSize+1))
	var verr *ValidationError
	if assert.ErrorAs(t, err, &verr) {
		assert.Equal(t, "BATCH_TOO_LARGE", verr.Code)
	}
}
