package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a userID extraction function reading the "user_id" value stored in
// the Echo context by JWTAuth. When no user is authenticated, "anon" is
// returned so anonymous traffic shares one rate-limit bucket per strategy.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the request context. JWTAuth stores
// the raw "sub" claim, which arrives as a JSON number (float64) but may be a
// string when tokens are issued elsewhere.
func userID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    }
    return "anon"
}
