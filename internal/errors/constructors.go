package errors

// Convenience constructors for common failure shapes.

// Config errors (startup-time fatal; never per-file issues)

func ConfigNotFound(path string) *ForgeError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *ForgeError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Build pipeline errors

func BuildFailed(stage string, cause error) *ForgeError {
	return Wrap(cause, CategoryBuild, SeverityFatal, "build failed").
		WithContext("stage", stage)
}

func LoadFailed(file string, cause error) *ForgeError {
	return Wrap(cause, CategoryBuild, SeverityError, "document load failed").
		WithContext("file", file)
}

func OutputError(operation string, cause error) *ForgeError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "output operation failed").
		WithContext("operation", operation)
}

// Watch-state errors

func StateError(operation string, cause error) *ForgeError {
	return Wrap(cause, CategoryState, SeverityWarning, "build state operation failed").
		WithContext("operation", operation)
}
