package domain

import "errors"

// ErrAPIResponse is returned when the API answered but the response did not contain what was expected, for example
// when no access_token cookie was set.
var ErrAPIResponse = errors.New("api response error")
