// Package timeout defines centralized timeout constants for upstream AI operations.
package timeout

import "time"

// Upstream operation timeout constants.
const (
	// UpstreamCallTimeout bounds a single chat-completion attempt.
	UpstreamCallTimeout = 30 * time.Second

	// ClassifierTimeout bounds the probabilistic intent classification call.
	ClassifierTimeout = 10 * time.Second

	// MaxBackoffWait is the cumulative wait budget for rate-limit retries.
	MaxBackoffWait = 40 * time.Second

	// InitialBackoff is the first rate-limit retry delay; it doubles on every retry.
	InitialBackoff = 1 * time.Second

	// RemoteModuleTimeout bounds one HTTP request to a remote module.
	RemoteModuleTimeout = 30 * time.Second

	// RemotePollInterval is the delay between polls of a pending remote job.
	RemotePollInterval = 2 * time.Second

	// RemotePollAttempts is the default number of polls before a remote job is abandoned.
	RemotePollAttempts = 15

	// RequestTimeout bounds one whole inbound chat turn.
	RequestTimeout = 2 * time.Minute

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)
