package inventory

import (
	"context"
	"fmt"
	"sort"

	"salvagedb/pkg/models"
)

// explodedColumn is one indexed cell column produced from a list field.
type explodedColumn struct {
	name  string
	field string
	index int
}

// ListAll flattens every stored record into a single review table.
//
// columnOrder picks and orders the scalar columns; columns absent from every
// record are dropped. A column whose value is a list in any record is
// exploded into indexed columns {name}_0..{name}_{w-1}, where w is the
// longest such list across all records. Exploded columns are sorted by name
// and appended after the scalar columns; cells past a record's list length
// are nil. Every record also carries its uid and owner, so either can be
// selected through columnOrder.
func (s *Service) ListAll(ctx context.Context, columnOrder []string) (*models.Table, error) {
	rows, err := s.docs.StreamItems(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		doc := row.Doc
		if doc == nil {
			doc = map[string]any{}
		}
		doc["uid"] = row.UID
		doc["owner"] = row.Owner
		docs = append(docs, doc)
	}

	var scalarCols []string
	var exploded []explodedColumn
	seen := make(map[string]bool, len(columnOrder))
	for _, col := range columnOrder {
		if seen[col] {
			continue
		}
		seen[col] = true

		present, isList, width := scanColumn(col, docs)
		switch {
		case !present:
		case isList:
			for i := 0; i < width; i++ {
				exploded = append(exploded, explodedColumn{
					name:  fmt.Sprintf("%s_%d", col, i),
					field: col,
					index: i,
				})
			}
		default:
			scalarCols = append(scalarCols, col)
		}
	}
	sort.Slice(exploded, func(i, j int) bool { return exploded[i].name < exploded[j].name })

	columns := make([]string, 0, len(scalarCols)+len(exploded))
	columns = append(columns, scalarCols...)
	for _, e := range exploded {
		columns = append(columns, e.name)
	}

	table := &models.Table{Columns: columns, Rows: make([][]any, 0, len(docs))}
	for _, doc := range docs {
		row := make([]any, 0, len(columns))
		for _, col := range scalarCols {
			row = append(row, doc[col])
		}
		for _, e := range exploded {
			items, _ := doc[e.field].([]any)
			if e.index < len(items) {
				row = append(row, items[e.index])
			} else {
				row = append(row, nil)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// scanColumn reports whether any record carries the column, whether it holds
// a list anywhere, and the longest list found.
func scanColumn(col string, docs []map[string]any) (present, isList bool, width int) {
	for _, doc := range docs {
		value, ok := doc[col]
		if !ok {
			continue
		}
		present = true
		if items, ok := value.([]any); ok {
			isList = true
			if len(items) > width {
				width = len(items)
			}
		}
	}
	return present, isList, width
}
