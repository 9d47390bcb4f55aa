package contextkey

// key is a private type to avoid context key collisions across packages.
type key string

const (
	RequestID    key = "request_id"
	SubmissionID key = "submission_id"
	TestID       key = "test_id"
)
