package schema

import (
	"fmt"
	"strings"
)

// ValidationError represents a metadata integrity problem.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates the metadata cannot be rendered or applied as is.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if any problem is marked as breaking.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range append(r.Errors[:len(r.Errors):len(r.Errors)], r.Warnings...) {
		if e.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) merge(other *ValidationResult) {
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	allowMissingPK    bool
	allowTypeMismatch bool
}

// AllowMissingPrimaryKey reports tables without a primary key as warnings
// instead of errors.
func AllowMissingPrimaryKey() ValidateOption {
	return func(c *validateConfig) {
		c.allowMissingPK = true
	}
}

// AllowTypeMismatch reports foreign key columns whose type differs from the
// referenced column as warnings instead of errors.
func AllowTypeMismatch() ValidateOption {
	return func(c *validateConfig) {
		c.allowTypeMismatch = true
	}
}

// ValidateTable validates a single table definition.
func ValidateTable(t *Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return validateTable(t, cfg)
}

func validateTable(t *Table, cfg *validateConfig) *ValidationResult {
	result := &ValidationResult{}

	if len(t.PrimaryKey) == 0 {
		err := &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		}
		if cfg.allowMissingPK {
			result.Warnings = append(result.Warnings, err)
		} else {
			result.Errors = append(result.Errors, err)
		}
	}

	colNames := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Column:   c.Name,
				Message:  "duplicate column name",
				Breaking: true,
			})
		}
		colNames[c.Name] = true
	}

	for _, c := range t.PrimaryKey {
		if !colNames[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Column:   c.Name,
				Message:  "primary key references non-existent column",
				Breaking: true,
			})
		}
		if c.Nullable {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "primary key column is nullable",
			})
		}
	}

	symbols := make(map[string]bool, len(t.ForeignKeys))
	for _, fk := range t.ForeignKeys {
		name := fk.Symbol
		if name != "" {
			if symbols[name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("duplicate foreign key name: %s", name),
					Breaking: true,
				})
			}
			symbols[name] = true
		} else {
			name = "<unnamed>"
		}
		if fk.RefTable == nil {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  fmt.Sprintf("foreign key %s has no referenced table", name),
				Breaking: true,
			})
			continue
		}
		if len(fk.Columns) == 0 || len(fk.Columns) != len(fk.RefColumns) {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    t.Name,
				Message:  fmt.Sprintf("foreign key %s has %d columns referencing %d columns", name, len(fk.Columns), len(fk.RefColumns)),
				Breaking: true,
			})
			continue
		}
		for i, c := range fk.Columns {
			if !colNames[c.Name] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key %s references non-existent column %q", name, c.Name),
					Breaking: true,
				})
				continue
			}
			ref := fk.RefColumns[i]
			if !fk.RefTable.HasColumn(ref.Name) {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key %s references non-existent column %s.%s", name, fk.RefTable.Name, ref.Name),
					Breaking: true,
				})
				continue
			}
			if c.Type != ref.Type || c.SchemaType != ref.SchemaType {
				err := &ValidationError{
					Table:   t.Name,
					Column:  c.Name,
					Message: fmt.Sprintf("column type %s does not match referenced column %s.%s of type %s", c.Type, fk.RefTable.Name, ref.Name, ref.Type),
				}
				if cfg.allowTypeMismatch {
					result.Warnings = append(result.Warnings, err)
				} else {
					result.Errors = append(result.Errors, err)
				}
			}
		}
		if fk.OnDelete == SetNull {
			for _, c := range fk.Columns {
				if !c.Nullable {
					result.Warnings = append(result.Warnings, &ValidationError{
						Table:   t.Name,
						Column:  c.Name,
						Message: fmt.Sprintf("foreign key %s uses ON DELETE SET NULL on a NOT NULL column", name),
					})
				}
			}
		}
	}

	return result
}

// Validate checks the integrity of all metadata tables: primary keys,
// column names and foreign keys, including foreign keys referencing tables
// that are not part of the metadata.
//
// Example:
//
//	result := schema.Validate(reg.MetaData())
//	if result.HasErrors() {
//	    log.Fatal(result)
//	}
func Validate(md *MetaData, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	result := &ValidationResult{}
	for _, t := range md.Tables() {
		result.merge(validateTable(t, cfg))
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == nil {
				continue
			}
			if ref, ok := md.Table(fk.RefTable.QualifiedName()); !ok || ref != fk.RefTable {
				result.Errors = append(result.Errors, &ValidationError{
					Table:    t.Name,
					Message:  fmt.Sprintf("foreign key references non-existent table %q", fk.RefTable.QualifiedName()),
					Breaking: true,
				})
			}
		}
	}
	return result
}
