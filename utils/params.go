package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// PathID parses a numeric route variable. The error is a validation error
// ready for WriteError.
func PathID(r *http.Request, name string) (uint, error) {
	v, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	if err != nil || v == 0 {
		return 0, NewError(ErrValidation, "Invalid "+name)
	}
	return uint(v), nil
}
