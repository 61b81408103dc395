package errors

import "fmt"

// Manifest errors

func ReadFailed(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryRead, fmt.Sprintf("unable to read TOML file %q", path)).
		WithPath(path).WithOperation("read").Build()
}

func ParseFailed(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryParse, fmt.Sprintf("unable to parse TOML file %q", path)).
		WithPath(path).WithOperation("parse").Build()
}

func MissingField(path, field string) *ClassifiedError {
	return NewError(CategoryMissingField, fmt.Sprintf("unable to determine %s from %q", field, path)).
		WithPath(path).WithContext("field", field).Build()
}

func MissingDependencySection(path string) *ClassifiedError {
	return NewError(CategoryMissingDependencySection, fmt.Sprintf("missing or corrupt dependency section in %q", path)).
		WithPath(path).WithOperation("override version").Build()
}

func SerializeFailed(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategorySerialize, fmt.Sprintf("unable to serialize TOML for writing to %q", path)).
		WithPath(path).WithOperation("serialize").Fatal().Build()
}

func WriteFailed(path, op string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryWrite, fmt.Sprintf("unable to write to TOML file %q", path)).
		WithPath(path).WithOperation(op).Build()
}

// Staging errors

func VCSFailed(url, dest string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryVCS, fmt.Sprintf("unable to clone or open repository %s at %q", url, dest)).
		WithURL(url).WithPath(dest).WithOperation("clone").Build()
}

func NameResolutionFailed(url string) *ClassifiedError {
	return NewError(CategoryNameResolution, fmt.Sprintf("unable to determine project name from %q", url)).
		WithURL(url).Build()
}

func PathResolutionFailed(path string, cause error) *ClassifiedError {
	return WrapError(cause, CategoryPathResolution, fmt.Sprintf("unable to determine crate path from %q", path)).
		WithPath(path).WithOperation("canonicalize").Build()
}
