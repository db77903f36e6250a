package model

// Wire payloads. Field names follow the public API contract (lowerCamel
// JSON, timestamps in DateTimeLayout). Pointer fields on update payloads
// distinguish "absent" from zero values.

// UserDto is the full user representation.
type UserDto struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserShortDto is the user representation embedded in other payloads.
type UserShortDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewUserRequest is the payload for creating a user.
type NewUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// CategoryDto represents a category.
type CategoryDto struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewCategoryRequest is the payload for creating a category.
type NewCategoryRequest struct {
	Name string `json:"name"`
}

// NewEventRequest is the payload for creating an event.
type NewEventRequest struct {
	Annotation        string    `json:"annotation"`
	Category          int64     `json:"category"`
	Description       string    `json:"description"`
	EventDate         DateTime  `json:"eventDate"`
	Location          *Location `json:"location"`
	Paid              *bool     `json:"paid"`
	ParticipantLimit  *int32    `json:"participantLimit"`
	RequestModeration *bool     `json:"requestModeration"`
	Title             string    `json:"title"`
}

// UpdateEventAdminRequest is the admin patch payload for an event.
type UpdateEventAdminRequest struct {
	Annotation        *string           `json:"annotation"`
	Category          *int64            `json:"category"`
	Description       *string           `json:"description"`
	EventDate         *DateTime         `json:"eventDate"`
	Location          *Location         `json:"location"`
	Paid              *bool             `json:"paid"`
	ParticipantLimit  *int32            `json:"participantLimit"`
	RequestModeration *bool             `json:"requestModeration"`
	StateAction       *AdminStateAction `json:"stateAction"`
	Title             *string           `json:"title"`
}

// UpdateEventUserRequest is the initiator patch payload for an event.
type UpdateEventUserRequest struct {
	Annotation        *string          `json:"annotation"`
	Category          *int64           `json:"category"`
	Description       *string          `json:"description"`
	EventDate         *DateTime        `json:"eventDate"`
	Location          *Location        `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int32           `json:"participantLimit"`
	RequestModeration *bool            `json:"requestModeration"`
	StateAction       *UserStateAction `json:"stateAction"`
	Title             *string          `json:"title"`
}

// EventDto is the full event representation.
type EventDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	Category          CategoryDto  `json:"category"`
	ConfirmedRequests int64        `json:"confirmedRequests"`
	CreatedOn         DateTime     `json:"createdOn"`
	Description       string       `json:"description"`
	EventDate         DateTime     `json:"eventDate"`
	Initiator         UserShortDto `json:"initiator"`
	Location          Location     `json:"location"`
	Paid              bool         `json:"paid"`
	ParticipantLimit  int32        `json:"participantLimit"`
	PublishedOn       *DateTime    `json:"publishedOn,omitempty"`
	RequestModeration bool         `json:"requestModeration"`
	State             State        `json:"state"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
}

// EventShortDto is the abbreviated event representation used in lists.
type EventShortDto struct {
	ID                int64        `json:"id"`
	Annotation        string       `json:"annotation"`
	ConfirmedRequests int64        `json:"confirmedRequests"`
	EventDate         DateTime     `json:"eventDate"`
	Paid              bool         `json:"paid"`
	Title             string       `json:"title"`
	Views             int64        `json:"views"`
	Category          CategoryDto  `json:"category"`
	Initiator         UserShortDto `json:"initiator"`
}

// RequestDto represents a participation request.
type RequestDto struct {
	ID        int64         `json:"id"`
	Created   DateTime      `json:"created"`
	Event     int64         `json:"event"`
	Requester int64         `json:"requester"`
	Status    RequestStatus `json:"status"`
}

// StatusUpdateRequest is the bulk moderation payload for an event's
// participation requests.
type StatusUpdateRequest struct {
	RequestIDs []int64       `json:"requestIds"`
	Status     RequestStatus `json:"status"`
}

// StatusUpdateResult reports the full confirmed and rejected request
// sets of an event after a bulk moderation call.
type StatusUpdateResult struct {
	ConfirmedRequests []RequestDto `json:"confirmedRequests"`
	RejectedRequests  []RequestDto `json:"rejectedRequests"`
}

// NewCompilationRequest is the payload for creating a compilation.
type NewCompilationRequest struct {
	Events []int64 `json:"events"`
	Pinned bool    `json:"pinned"`
	Title  string  `json:"title"`
}

// UpdateCompilationRequest is the patch payload for a compilation.
type UpdateCompilationRequest struct {
	Events *[]int64 `json:"events"`
	Pinned *bool    `json:"pinned"`
	Title  *string  `json:"title"`
}

// CompilationDto represents a compilation with its member events.
type CompilationDto struct {
	ID     int64           `json:"id"`
	Pinned bool            `json:"pinned"`
	Title  string          `json:"title"`
	Events []EventShortDto `json:"events"`
}

// NewCommentRequest is the payload for creating or editing a comment.
type NewCommentRequest struct {
	Text string `json:"text"`
}

// CommentDto represents a comment on an event.
type CommentDto struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Author  UserShortDto `json:"author"`
	Created DateTime     `json:"created"`
}

// ErrorResponse is the structured error envelope returned on every
// failed request.
type ErrorResponse struct {
	Status    string   `json:"status"`
	Reason    string   `json:"reason"`
	Message   string   `json:"message"`
	Timestamp DateTime `json:"timestamp"`
}

// EndpointHit is one recorded access to a URI, sent to the stats service.
type EndpointHit struct {
	App       string   `json:"app"`
	URI       string   `json:"uri"`
	IP        string   `json:"ip"`
	Timestamp DateTime `json:"timestamp"`
}

// ViewStats is an aggregated hit count for one URI.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
