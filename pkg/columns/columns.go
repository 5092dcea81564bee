// Package columns defines the virtual table's columns and turns records into
// typed, formatted cells.
package columns

import (
	"github.com/matzehuels/vtable/pkg/errors"
	"github.com/matzehuels/vtable/pkg/records"
)

// Key identifies a column.
type Key string

const (
	KeyID         Key = "id"
	KeyName       Key = "name"
	KeyEmail      Key = "email"
	KeyAge        Key = "age"
	KeyCity       Key = "city"
	KeyCompany    Key = "company"
	KeySalary     Key = "salary"
	KeyDepartment Key = "department"
)

// Column is one table column. Width is in pixels, as a browser renderer
// consumes it; [Column.TermWidth] converts it for terminals.
type Column struct {
	Key   Key    `json:"key"`
	Label string `json:"label"`
	Width int    `json:"width"`
}

// TermWidth returns the column width in terminal cells.
func (c Column) TermWidth() int {
	return max(4, c.Width/10)
}

// Default returns the standard column set.
func Default() []Column {
	return []Column{
		{Key: KeyID, Label: "ID", Width: 80},
		{Key: KeyName, Label: "Nome", Width: 150},
		{Key: KeyEmail, Label: "Email", Width: 200},
		{Key: KeyAge, Label: "Idade", Width: 80},
		{Key: KeyCity, Label: "Cidade", Width: 150},
		{Key: KeyCompany, Label: "Empresa", Width: 150},
		{Key: KeySalary, Label: "Salário", Width: 120},
		{Key: KeyDepartment, Label: "Departamento", Width: 150},
	}
}

// Labels returns the labels of cols in order.
func Labels(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Label
	}
	return out
}

// Cell returns the typed value of key in r.
func Cell(r records.Record, key Key) (Value, error) {
	switch key {
	case KeyID:
		return Number(r.ID), nil
	case KeyName:
		return Text(r.Name), nil
	case KeyEmail:
		return Text(r.Email), nil
	case KeyAge:
		return Number(r.Age), nil
	case KeyCity:
		return Text(r.City), nil
	case KeyCompany:
		return Text(r.Company), nil
	case KeySalary:
		return Currency(r.Salary), nil
	case KeyDepartment:
		return Text(r.Department), nil
	}
	return nil, errors.New(errors.ErrCodeNotFound, "unknown column %q", key)
}

// Cells formats r for cols, in column order.
func Cells(r records.Record, cols []Column, f Formatter) ([]string, error) {
	out := make([]string, len(cols))
	for i, c := range cols {
		v, err := Cell(r, c.Key)
		if err != nil {
			return nil, err
		}
		out[i] = Format(v, f)
	}
	return out, nil
}

// CellMap formats r for cols keyed by column key.
func CellMap(r records.Record, cols []Column, f Formatter) (map[string]string, error) {
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		v, err := Cell(r, c.Key)
		if err != nil {
			return nil, err
		}
		out[string(c.Key)] = Format(v, f)
	}
	return out, nil
}

// Select returns the columns of Default whose keys are listed, in the listed
// order. An empty list selects every column.
func Select(keys []string) ([]Column, error) {
	all := Default()
	if len(keys) == 0 {
		return all, nil
	}
	byKey := make(map[Key]Column, len(all))
	for _, c := range all {
		byKey[c.Key] = c
	}
	out := make([]Column, 0, len(keys))
	for _, k := range keys {
		c, ok := byKey[Key(k)]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "unknown column %q", k)
		}
		out = append(out, c)
	}
	return out, nil
}
