package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/log"
)

// IdentityHeader carries the caller's username. Authentication beyond the
// allow-list is out of scope; the deployment fronts this with its own login.
const IdentityHeader = "X-Identity"

const identityKey = "identity"

func (srv *Server) requireIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		username := ctx.Request().Header.Get(IdentityHeader)
		if username == "" {
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": "identity header is required",
			})
		}

		id, err := srv.auth.Authenticate(username)
		if err != nil {
			log.Warn().Str("username", username).Msg("Unknown identity rejected")
			return ctx.JSON(http.StatusUnauthorized, map[string]string{
				"error": "unknown identity",
			})
		}

		ctx.Set(identityKey, id)
		return next(ctx)
	}
}

// callerIdentity returns the identity stored by requireIdentity.
func callerIdentity(ctx echo.Context) auth.Identity {
	id, _ := ctx.Get(identityKey).(auth.Identity)
	return id
}

// effectiveOwner resolves which owner's records the request targets. Admins
// may act on any owner via the owner query parameter; everyone else is bound
// to their own identity. The bool reports whether the override was allowed.
func effectiveOwner(ctx echo.Context) (string, bool) {
	id := callerIdentity(ctx)
	override := ctx.QueryParam("owner")
	if override == "" {
		return id.ID, true
	}
	if id.Access != auth.AccessAdmin {
		return "", false
	}
	return auth.Normalize(override), true
}
