// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The SecureHandler masks values whose key names look like credentials
// (authorization, cookie, password, token) and values that look like
// secrets (bearer tokens, JWTs, long API keys). URL values keep their host
// but lose the password of their userinfo, which matters for proxy and
// Redis addresses that embed credentials.
//
// Verbose loggers log at Debug, which includes every task state transition.
// Otherwise the level is Info: one line per finding and one per failure.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Info("finding", "url", "http://example.com", "status", 200)
//	slog.SetDefault(logger)
package log
