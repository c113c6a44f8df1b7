package query

import "fmt"

// Condition represents a WHERE clause condition.
// Implementations must generate SQL fragments and parameter maps
// using Spanner's named parameter format (@paramName).
type Condition interface {
	// SQL returns the SQL fragment and parameter map for this condition.
	// paramIndex is used to generate unique parameter names (@p0, @p1, etc.)
	SQL(paramIndex int) (string, map[string]interface{})
}

// eqCondition implements equality comparison (field = value).
type eqCondition struct {
	field string
	value interface{}
}

// Eq creates a WHERE condition for equality comparison.
// Example: Eq("vendor_name", "gcp") generates "vendor_name = @p0"
func Eq(field string, value interface{}) Condition {
	return &eqCondition{
		field: field,
		value: value,
	}
}

func (c *eqCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s = @%s", c.field, paramName)
	params := map[string]interface{}{
		paramName: c.value,
	}
	return sql, params
}

// Regexp creates a WHERE condition matching a column against an RE2 pattern.
// NULL values are folded to the empty string so an unset column never
// matches a non-empty pattern by accident.
// Example: Regexp("region", "(?i)^us-") generates
// "REGEXP_CONTAINS(COALESCE(region, ''), @p0)"
func Regexp(field, pattern string) Condition {
	return &regexpCondition{field: field, pattern: pattern}
}

type regexpCondition struct {
	field   string
	pattern string
}

func (c *regexpCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("REGEXP_CONTAINS(COALESCE(%s, ''), @%s)", c.field, paramName)
	return sql, map[string]interface{}{paramName: c.pattern}
}

// EmptyOrNull creates a WHERE condition matching an empty string or NULL.
// This is the store-side counterpart of the query interface rule that an
// empty filter value matches both empty and absent values.
func EmptyOrNull(field string) Condition {
	return &emptyOrNullCondition{field: field}
}

type emptyOrNullCondition struct {
	field string
}

func (c *emptyOrNullCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	sql := fmt.Sprintf("(%s = '' OR %s IS NULL)", c.field, c.field)
	return sql, map[string]interface{}{}
}

// JSONValueEq creates a WHERE condition comparing one key of a JSON column.
// Example: JSONValueEq("attributes", "resource_group", "CPU") generates
// `JSON_VALUE(attributes, '$."resource_group"') = @p0`
func JSONValueEq(column, key, value string) Condition {
	return &jsonValueEqCondition{column: column, key: key, value: value}
}

type jsonValueEqCondition struct {
	column string
	key    string
	value  string
}

func (c *jsonValueEqCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf(`JSON_VALUE(%s, '$."%s"') = @%s`, c.column, c.key, paramName)
	return sql, map[string]interface{}{paramName: c.value}
}

// JSONValueRegexp creates a WHERE condition matching one key of a JSON
// column against an RE2 pattern. Missing keys are folded to the empty
// string. This is the store's single deliberate text-search capability
// over the open attributes mapping.
// Example: JSONValueRegexp("attributes", "description", "^N2 Instance Core")
func JSONValueRegexp(column, key, pattern string) Condition {
	return &jsonValueRegexpCondition{column: column, key: key, pattern: pattern}
}

type jsonValueRegexpCondition struct {
	column  string
	key     string
	pattern string
}

func (c *jsonValueRegexpCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf(`REGEXP_CONTAINS(COALESCE(JSON_VALUE(%s, '$."%s"'), ''), @%s)`, c.column, c.key, paramName)
	return sql, map[string]interface{}{paramName: c.pattern}
}

// InUnnest creates a WHERE condition matching a column against an array
// parameter. Example: InUnnest("product_hash", hashes) generates
// "product_hash IN UNNEST(@p0)"
func InUnnest(field string, values interface{}) Condition {
	return &inUnnestCondition{field: field, values: values}
}

type inUnnestCondition struct {
	field  string
	values interface{}
}

func (c *inUnnestCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	sql := fmt.Sprintf("%s IN UNNEST(@%s)", c.field, paramName)
	return sql, map[string]interface{}{paramName: c.values}
}
