package querybuilder

import (
	"fmt"
	"strings"
)

// Conflict renders a Postgres ON CONFLICT clause.
type Conflict struct {
	target  []string
	sets    []string
	nothing bool
}

func OnConflict(target ...string) *Conflict {
	return &Conflict{target: append([]string(nil), target...)}
}

func (c *Conflict) DoNothing() *Conflict {
	c.nothing = true
	return c
}

// UpdateExcluded overwrites each column with the value of the rejected row.
func (c *Conflict) UpdateExcluded(columns ...string) *Conflict {
	for _, col := range columns {
		c.sets = append(c.sets, col+" = EXCLUDED."+col)
	}
	return c
}

// UpdateExpr assigns a raw expression, e.g. an accumulating total.
func (c *Conflict) UpdateExpr(column, expr string) *Conflict {
	c.sets = append(c.sets, column+" = "+expr)
	return c
}

func (c *Conflict) toSQL() (string, error) {
	if len(c.target) == 0 {
		return "", fmt.Errorf("conflict target is required")
	}
	if c.nothing == (len(c.sets) > 0) {
		return "", fmt.Errorf("conflict needs exactly one of do nothing or update sets")
	}

	head := "ON CONFLICT (" + strings.Join(c.target, ", ") + ")"
	if c.nothing {
		return head + " DO NOTHING", nil
	}
	return head + " DO UPDATE SET " + strings.Join(c.sets, ", "), nil
}
