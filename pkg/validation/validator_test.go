package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

type signupPayload struct {
	Name     string `json:"name" validate:"required,username"`
	Email    string `json:"email" validate:"required,basic_email"`
	Password string `json:"password" validate:"required,pwd"`
}

func TestBasicEmail(t *testing.T) {
	v := New()
	for _, ok := range []string{"ada@x.com", "a.b+c@sub.example.org"} {
		assert.NoError(t, v.Var(ok, "basic_email"), ok)
	}
	for _, bad := range []string{"ada", "ada@x", "@x.com ", "a b@x.com", ""} {
		assert.Error(t, v.Var(bad, "basic_email"), bad)
	}
}

func TestToDetailsUsesJSONNames(t *testing.T) {
	err := New().Struct(signupPayload{Name: "Al", Email: "nope", Password: "123"})
	details := ToDetails(err)

	assert.Equal(t, "must be at least 3 characters long", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 6 characters long", details["password"])
}

func TestToDetailsJSONSyntax(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte("{"), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
	assert.Nil(t, ToDetails(nil))
}

func TestSummaryIsSorted(t *testing.T) {
	msg := Summary(map[string]string{"password": "is required", "email": "must be a valid email"})
	assert.Equal(t, "email must be a valid email; password is required", msg)
	assert.Equal(t, "Invalid input", Summary(nil))
}
