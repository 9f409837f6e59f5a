package types

// Default page sizes per collection.
const (
	DefaultJobPageSize       = 10
	DefaultCandidatePageSize = 50
	MaxPageSize              = 1000
)

// Pagination describes the slice of a result set returned in a Page.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a filtered, sorted collection.
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate slices items for the given 1-based page. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) Page[T] {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	total := len(items)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	data := make([]T, end-start)
	copy(data, items[start:end])
	return Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: (total + pageSize - 1) / pageSize,
		},
	}
}

// JobSort selects the ordering of a job listing.
type JobSort string

// Job sort keys
const (
	JobSortOrder JobSort = "order"
	JobSortTitle JobSort = "title"
)

// JobQuery filters and pages the job collection.
type JobQuery struct {
	Search   string    `json:"search,omitempty"`
	Status   JobStatus `json:"status,omitempty" validate:"omitempty,oneof=active archived"`
	Page     int       `json:"page,omitempty" validate:"gte=0"`
	PageSize int       `json:"pageSize,omitempty" validate:"gte=0,lte=1000"`
	Sort     JobSort   `json:"sort,omitempty" validate:"omitempty,oneof=order title"`
}

// Validate validates the JobQuery using the validator.
func (q *JobQuery) Validate() error {
	return validate.Struct(q)
}

// Normalize fills in defaults.
func (q JobQuery) Normalize() JobQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultJobPageSize
	}
	if q.Sort == "" {
		q.Sort = JobSortOrder
	}
	return q
}

// CandidateQuery filters and pages the candidate collection.
type CandidateQuery struct {
	Search   string `json:"search,omitempty"`
	Stage    Stage  `json:"stage,omitempty" validate:"omitempty,oneof=applied screen tech offer hired rejected"`
	JobID    string `json:"jobId,omitempty"`
	Page     int    `json:"page,omitempty" validate:"gte=0"`
	PageSize int    `json:"pageSize,omitempty" validate:"gte=0,lte=1000"`
}

// Validate validates the CandidateQuery using the validator.
func (q *CandidateQuery) Validate() error {
	return validate.Struct(q)
}

// Normalize fills in defaults.
func (q CandidateQuery) Normalize() CandidateQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultCandidatePageSize
	}
	return q
}
