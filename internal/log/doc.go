// Package log provides slog-based logging that masks credentials before
// they reach the output.
//
// The azure recognition engine sends a subscription key with every request
// and receives signed result URLs. SecureHandler replaces values whose key
// names or shapes indicate a credential with MaskValue, in every log level.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("analyze request", "endpoint", endpoint, "subscription_key", key)
//	// subscription_key=***REDACTED***
package log
