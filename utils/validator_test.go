package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sampleRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Status   string `json:"status" validate:"required,oneof=pending approved rejected"`
}

func TestValidateStruct(t *testing.T) {
	ok := sampleRequest{Email: "a@b.co", Password: "secret", Rating: 5, Status: "approved"}
	assert.NoError(t, ValidateStruct(&ok))

	cases := []struct {
		name string
		mod  func(*sampleRequest)
		want string
	}{
		{"missing email", func(r *sampleRequest) { r.Email = "" }, "email is required"},
		{"bad email", func(r *sampleRequest) { r.Email = "nope" }, "email must be a valid email"},
		{"short password", func(r *sampleRequest) { r.Password = "123" }, "password must be at least 6 characters"},
		{"rating high", func(r *sampleRequest) { r.Rating = 6 }, "rating must be at most 5"},
		{"bad status", func(r *sampleRequest) { r.Status = "done" }, "status must be one of: pending, approved, rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := ok
			tc.mod(&req)
			err := ValidateStruct(&req)
			if assert.Error(t, err) {
				assert.Equal(t, tc.want, err.Error())
			}
		})
	}
}
