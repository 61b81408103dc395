package errors

import "maps"

// ErrorCategory represents the broad category of an error for classification and routing.
type ErrorCategory string

const (
	// CategoryConfig represents user-facing configuration and input errors.
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Manifest handling.
	CategoryRead                     ErrorCategory = "read"
	CategoryParse                    ErrorCategory = "parse"
	CategoryMissingField             ErrorCategory = "missing_field"
	CategoryMissingDependencySection ErrorCategory = "missing_dependency_section"
	CategorySerialize                ErrorCategory = "serialize"
	CategoryWrite                    ErrorCategory = "write"

	// Repository staging.
	CategoryVCS            ErrorCategory = "vcs"
	CategoryNameResolution ErrorCategory = "name_resolution"
	CategoryPathResolution ErrorCategory = "path_resolution"

	// CategoryInternal represents invariant violations.
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal ErrorSeverity = "fatal" // Stops the whole run
	SeverityError ErrorSeverity = "error" // Fails the current project
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	value, exists := c[key]
	return value, exists
}

// GetString retrieves a string context value.
func (c ErrorContext) GetString(key string) (string, bool) {
	if value, exists := c.Get(key); exists {
		if str, ok := value.(string); ok {
			return str, true
		}
	}
	return "", false
}

// Merge combines two contexts, with other taking precedence.
func (c ErrorContext) Merge(other ErrorContext) ErrorContext {
	if c == nil {
		return other
	}
	if other == nil {
		return c
	}
	result := make(ErrorContext, len(c)+len(other))
	maps.Copy(result, c)
	maps.Copy(result, other)
	return result
}
