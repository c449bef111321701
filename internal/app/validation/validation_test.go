package validation

import (
	"errors"
	"strings"
	"testing"

	"blog_api/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name     string `json:"name" validate:"min=3,max=30" msg:"Name must be between 3 and 30 characters."`
	Email    string `json:"email" validate:"required,email,max=100" msg:"Email must be a valid email address." msg_max:"Email cannot exceed 100 characters."`
	Password string `json:"password" validate:"min=6,max=100" msg:"Password must be between 6 and 100 characters."`
}

type patch struct {
	Name *string `json:"name,omitempty" validate:"omitnil,min=3,max=30" msg:"Name must be between 3 and 30 characters."`
}

type noMessage struct {
	Title string `json:"title" validate:"min=1"`
}

func ptr(s string) *string { return &s }

func TestStructValid(t *testing.T) {
	assert.NoError(t, Struct(signup{Name: "alice", Email: "alice@test.com", Password: "123456"}))
	assert.NoError(t, Struct(&patch{}))
	assert.NoError(t, Struct(patch{Name: ptr("bob")}))
}

func TestStructCollectsEveryField(t *testing.T) {
	err := Struct(signup{Name: "al", Email: "not-an-email", Password: "123"})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrValidation)

	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 3)
	assert.True(t, verrs.Has("name"))
	assert.True(t, verrs.Has("email"))
	assert.True(t, verrs.Has("password"))

	for _, fe := range verrs {
		assert.Equal(t, "field", fe.Type)
		assert.Equal(t, "body", fe.Location)
		switch fe.Path {
		case "name":
			assert.Equal(t, "Name must be between 3 and 30 characters.", fe.Msg)
			assert.Equal(t, "al", fe.Value)
		case "email":
			assert.Equal(t, "Email must be a valid email address.", fe.Msg)
		case "password":
			assert.Equal(t, "Password must be between 6 and 100 characters.", fe.Msg)
			assert.Nil(t, fe.Value)
		}
	}
}

func TestRuleSpecificMessage(t *testing.T) {
	long := "alice@" + strings.Repeat("a", 50) + "." + strings.Repeat("b", 50) + ".com"
	err := Struct(signup{Name: "alice", Email: long, Password: "123456"})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 1)
	assert.Equal(t, "Email cannot exceed 100 characters.", verrs[0].Msg)
}

func TestLengthCountsCharactersNotBytes(t *testing.T) {
	assert.NoError(t, Struct(signup{Name: "Ёжик", Email: "a@b.co", Password: "пароль"}))
}

func TestPresentOptionalFieldKeepsBounds(t *testing.T) {
	err := Struct(patch{Name: ptr("")})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.True(t, verrs.Has("name"))
}

func TestDefaultMessage(t *testing.T) {
	err := Struct(noMessage{})
	var verrs Errors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, "Invalid value", verrs[0].Msg)
	assert.Contains(t, err.Error(), "title: Invalid value")
}
