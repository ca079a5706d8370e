package database

import (
	"fmt"
	"sort"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
)

// PartialUpdate is the SET clause of an UPDATE built from a sparse payload.
// SetCols uses positional $n placeholders that line up with Values.
type PartialUpdate struct {
	SetCols string
	Values  []any
}

// NextPlaceholder returns the placeholder for the first argument appended after Values,
// usually the id in the WHERE clause.
func (p PartialUpdate) NextPlaceholder() string {
	return fmt.Sprintf("$%d", len(p.Values)+1)
}

// Statement renders a full UPDATE for table filtered by idColumn, with the id appended to the args
func (p PartialUpdate) Statement(table, idColumn string, id any) (string, []any) {
	query := fmt.Sprintf(`UPDATE %q SET %s WHERE %q = %s`, table, p.SetCols, idColumn, p.NextPlaceholder())
	args := make([]any, 0, len(p.Values)+1)
	args = append(args, p.Values...)
	args = append(args, id)
	return query, args
}

// SQLForPartialUpdate builds a SET clause from data, translating each key through
// jsToSQL. Keys without a mapping are used as the column name verbatim. Keys are
// walked in sorted order. Callers are responsible for whitelisting keys.
func SQLForPartialUpdate(data map[string]any, jsToSQL map[string]string) (PartialUpdate, error) {
	if len(data) == 0 {
		return PartialUpdate{}, models.NewValidationError("No data provided")
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys))
	values := make([]any, 0, len(keys))
	for i, key := range keys {
		column, ok := jsToSQL[key]
		if !ok {
			column = key
		}
		cols = append(cols, fmt.Sprintf(`"%s"=$%d`, column, i+1))
		values = append(values, data[key])
	}

	return PartialUpdate{
		SetCols: strings.Join(cols, ", "),
		Values:  values,
	}, nil
}
