package constants

import "time"

// Context keys
const (
	ContextKeyUser      = "user"
	ContextKeyTaskID    = "task_id"
	ContextKeyRequestID = "request_id"
)

// Password bounds enforced at registration
const (
	MinPasswordLength = 4
	MaxPasswordLength = 50
)

const (
	// DefaultTokenTTL is the access token lifetime used when JWT_TTL is unset.
	DefaultTokenTTL = 60 * time.Minute

	// DefaultTaskPriority is applied to AI-generated tasks that come back without one.
	DefaultTaskPriority = "Medium"

	// MaxAIGeneratedTasks caps how many tasks a single generate call may create.
	MaxAIGeneratedTasks = 20
)

const RequestIDHeader = "X-Request-ID"
