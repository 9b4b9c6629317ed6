package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	for email, want := range map[string]bool{
		"ana@example.com":     true,
		"a.b+c@sub.domain.io": true,
		"ana@example":         false,
		"ana example@x.com":   false,
		"@example.com":        false,
		"ana@@example.com":    false,
		"":                    false,
	} {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestValidateDistributeBySourceInput(t *testing.T) {
	errs := ValidateDistributeBySourceInput(DistributeBySourceInput{
		Name:  "  ",
		Email: "bad",
	})
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["mobile_number"])
	assert.True(t, fields["source_url"])

	assert.Empty(t, ValidateDistributeBySourceInput(DistributeBySourceInput{
		Name: "Ana", Email: "ana@example.com", MobileNumber: "1", SourceURL: "https://x.io",
	}))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, CodeEmptyRoster, ErrorCode(newDomainError(CodeEmptyRoster, "x")))
	assert.Equal(t, CodeDatabase, ErrorCode(databaseError("x", assert.AnError)))
	assert.Equal(t, CodeDatabase, ErrorCode(assert.AnError))
	assert.True(t, IsDomainError(validationFailure([]ValidationError{{"name", "is required"}})))
}
