package errors

import "fmt"

// AuthMissing creates an error for a missing API credential.
func AuthMissing(envVar string) *AskError {
	return &AskError{
		Category:  CategoryLLM,
		Code:      "auth_missing",
		Message:   fmt.Sprintf("please set the %s environment variable", envVar),
		Retryable: false,
	}
}

// NetworkFailed creates an error for when the model provider is unreachable.
func NetworkFailed(cause error) *AskError {
	return &AskError{
		Category:  CategoryLLM,
		Code:      "network",
		Message:   "could not reach the model provider",
		Retryable: true,
		Cause:     cause,
	}
}

// EmptyReply creates an error for when the model returns no usable content.
func EmptyReply() *AskError {
	return &AskError{
		Category:  CategoryLLM,
		Code:      "empty_reply",
		Message:   "no response returned from the model",
		Retryable: true,
	}
}

// ProviderFailed creates an error for a provider-side request failure.
func ProviderFailed(cause error) *AskError {
	return &AskError{
		Category:  CategoryLLM,
		Code:      "provider",
		Message:   "model request failed",
		Retryable: true,
		Cause:     cause,
	}
}

// ExecutionFailed creates an error for when spawning a shell command fails.
func ExecutionFailed(command string, cause error) *AskError {
	return &AskError{
		Category:  CategoryShell,
		Code:      "execution_failed",
		Message:   fmt.Sprintf("failed to run %q", command),
		Retryable: false,
		Cause:     cause,
	}
}

// CommandBlocked creates an error for a command rejected by the safety screen.
func CommandBlocked(reason string) *AskError {
	return &AskError{
		Category:  CategoryShell,
		Code:      "command_blocked",
		Message:   reason,
		Retryable: false,
	}
}

// DirectoryNavigationFailed creates an error for an invalid cd target.
func DirectoryNavigationFailed(path string, cause error) *AskError {
	return &AskError{
		Category:  CategoryShell,
		Code:      "directory_navigation_failed",
		Message:   fmt.Sprintf("cannot change directory to %q", path),
		Retryable: false,
		Cause:     cause,
	}
}

// ConfigLoadFailed creates an error for when configuration loading fails.
func ConfigLoadFailed(path string, cause error) *AskError {
	return &AskError{
		Category:  CategoryConfig,
		Code:      "config_load_failed",
		Message:   fmt.Sprintf("failed to load config from %q", path),
		Retryable: false,
		Cause:     cause,
	}
}

// InputClosed creates an error for when stdin is closed mid-session.
func InputClosed(cause error) *AskError {
	return &AskError{
		Category:  CategoryInput,
		Code:      "input_closed",
		Message:   "input stream closed",
		Retryable: false,
		Cause:     cause,
	}
}

// TranscriptSaveFailed creates an error for transcript persistence failures.
func TranscriptSaveFailed(cause error) *AskError {
	return &AskError{
		Category:  CategorySession,
		Code:      "transcript_save_failed",
		Message:   "failed to save session transcript",
		Retryable: false,
		Cause:     cause,
	}
}
