package request

// StudentAuthenticatedEvent is published to Kafka after a student completes
// an authentication ceremony, so the student portal can sync its profile.
type StudentAuthenticatedEvent struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	StudentID string `json:"student_id"`
}
