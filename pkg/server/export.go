package server

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"salvagedb/pkg/log"
)

// DefaultColumns is the review-table column order when the request does not
// pick its own. List columns get exploded into indexed columns by the service.
var DefaultColumns = []string{
	"uid", "owner", "spec_id", "name", "material", "amount", "unit",
	"notes", "model_scale", "time", "images", "3d_model",
}

func (srv *Server) listItems(ctx echo.Context) error {
	table, err := srv.svc.ListAll(ctx.Request().Context(), requestedColumns(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list items")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to list items",
		})
	}
	return ctx.JSON(http.StatusOK, table)
}

func (srv *Server) exportCSV(ctx echo.Context) error {
	table, err := srv.svc.ListAll(ctx.Request().Context(), requestedColumns(ctx))
	if err != nil {
		log.Error().Err(err).Msg("Failed to export items")
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to export items",
		})
	}

	ctx.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="items.csv"`)
	ctx.Response().WriteHeader(http.StatusOK)

	writer := csv.NewWriter(ctx.Response())
	if err := writer.Write(table.Columns); err != nil {
		return err
	}
	cells := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, value := range row {
			if value == nil {
				cells[i] = ""
			} else {
				cells[i] = fmt.Sprint(value)
			}
		}
		if err := writer.Write(cells); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func requestedColumns(ctx echo.Context) []string {
	raw := ctx.QueryParam("columns")
	if raw == "" {
		return DefaultColumns
	}
	var columns []string
	for _, col := range strings.Split(raw, ",") {
		if col = strings.TrimSpace(col); col != "" {
			columns = append(columns, col)
		}
	}
	if len(columns) == 0 {
		return DefaultColumns
	}
	return columns
}
