package model

// Record is one data row keyed by column header.
type Record map[string]string

// Get returns the value for field, or "" when the column is absent.
func (r Record) Get(field string) string {
	return r[field]
}
