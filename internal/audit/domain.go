package audit

import "time"

// AccessDenial is a persisted record of a rejected request.
type AccessDenial struct {
	ID          int64     `json:"id"`
	PrincipalID int64     `json:"principal_id"`
	Role        string    `json:"role"`
	Method      string    `json:"method"`
	Path        string    `json:"path"`
	RemoteAddr  string    `json:"remote_addr"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TimelineFilters narrows the denial timeline.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Reason   string
	Role     string
	Page     int
	PageSize int
}

// PagingInfo carries pagination state for the timeline view.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasNext  bool `json:"has_next"`
}

// Result wraps timeline rows with paging information.
type Result struct {
	Rows   []AccessDenial `json:"rows"`
	Paging PagingInfo     `json:"paging"`
}
