package events

// Event type codes published on the bus. Subjects become "events.<code>".
const (
	TypeUserLogin        = "USER_LOGIN"
	TypeExpertMatched    = "EXPERT_MATCHED"
	TypeSessionBooked    = "SESSION_BOOKED"
	TypeSessionPaid      = "SESSION_PAID"
	TypeSessionCancelled = "SESSION_CANCELLED"
	TypeReviewReceived   = "REVIEW_RECEIVED"
)
