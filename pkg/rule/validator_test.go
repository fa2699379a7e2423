package rule_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/filevault/pkg/rule"
)

type uploadLike struct {
	Name string `rule:"required"`
	Kind string `rule:"filekind"`
	ID   string `rule:"omitempty,ulid"`
}

func TestEngine(t *testing.T) {
	assert.NotNil(t, rule.Engine())
}

func TestValidateStruct(t *testing.T) {
	ok := uploadLike{Name: "a.txt", Kind: "image", ID: "01ARZ3NDEKTSV4RRFFQ69G5FAV"}
	require.NoError(t, rule.ValidateStruct(ok))

	err := rule.ValidateStruct(uploadLike{Kind: "file"})
	require.Error(t, err)

	errs := rule.Errors(err)
	assert.Contains(t, errs, "uploadLike.Name")

	err = rule.ValidateStruct(uploadLike{Name: "x", Kind: "symlink"})
	require.Error(t, err)
	assert.Contains(t, rule.Errors(err), "uploadLike.Kind")
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, rule.ValidateVar("test@example.com", "required,email"))
	assert.Error(t, rule.ValidateVar("invalid-email", "required,email"))

	assert.NoError(t, rule.ValidateVar("folder", "filekind"))
	assert.Error(t, rule.ValidateVar("", "filekind"))

	assert.NoError(t, rule.ValidateVar("01ARZ3NDEKTSV4RRFFQ69G5FAV", "ulid"))
	assert.Error(t, rule.ValidateVar("not-an-id", "ulid"))
	assert.Error(t, rule.ValidateVar("0", "ulid"))
}

func TestErrorsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, rule.Errors(assert.AnError))
}

func TestRegisterValidation(t *testing.T) {
	err := rule.RegisterValidation("even_length", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	})
	require.NoError(t, err)

	assert.NoError(t, rule.ValidateVar("test", "even_length"))
	assert.Error(t, rule.ValidateVar("test1", "even_length"))
}

func TestRegisterAlias(t *testing.T) {
	rule.RegisterAlias("min_required", "required,min=3")

	assert.NoError(t, rule.ValidateVar("abc", "min_required"))
	assert.Error(t, rule.ValidateVar("ab", "min_required"))
}
