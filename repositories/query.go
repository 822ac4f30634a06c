package repositories

import (
	"strconv"
	"strings"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// conditions accumulates WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(clause string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, strings.ReplaceAll(clause, "?", "$"+itoa(len(c.args))))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// page appends LIMIT/OFFSET placeholders and returns the suffix.
func (c *conditions) page(page, limit int) string {
	if page < 1 {
		page = 1
	}
	c.args = append(c.args, limit, (page-1)*limit)
	return " LIMIT $" + itoa(len(c.args)-1) + " OFFSET $" + itoa(len(c.args))
}
