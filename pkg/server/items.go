package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"salvagedb/pkg/docstore"
	"salvagedb/pkg/log"
)

func (srv *Server) updateItem(ctx echo.Context) error {
	uid := ctx.Param("uid")

	ownerID, ok := effectiveOwner(ctx)
	if !ok {
		return ctx.JSON(http.StatusForbidden, map[string]string{
			"error": "owner override requires admin access",
		})
	}

	var partial map[string]any
	if err := ctx.Bind(&partial); err != nil || len(partial) == 0 {
		return ctx.JSON(http.StatusBadRequest, map[string]string{
			"error": "json body with fields to update is required",
		})
	}

	if err := srv.svc.UpdateItem(ctx.Request().Context(), ownerID, uid, partial); err != nil {
		if errors.Is(err, docstore.ErrItemNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "item not found",
			})
		}
		log.Error().Err(err).Str("uid", uid).Msg("Failed to update item")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to update item",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"uid":    uid,
		"status": "updated",
	})
}

func (srv *Server) deleteItem(ctx echo.Context) error {
	uid := ctx.Param("uid")

	ownerID, ok := effectiveOwner(ctx)
	if !ok {
		return ctx.JSON(http.StatusForbidden, map[string]string{
			"error": "owner override requires admin access",
		})
	}

	if err := srv.svc.DeleteItem(ctx.Request().Context(), ownerID, uid); err != nil {
		if errors.Is(err, docstore.ErrItemNotFound) {
			return ctx.JSON(http.StatusNotFound, map[string]string{
				"error": "item not found",
			})
		}
		log.Error().Err(err).Str("uid", uid).Msg("Failed to delete item")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to delete item",
		})
	}

	return ctx.JSON(http.StatusOK, map[string]string{
		"uid":    uid,
		"status": "deleted",
	})
}
