package models

import "strings"

// Domain models matching the JSON shapes served by the remote record store.

// ApplicationStatus is the hiring stage of a single application.
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusInterview   ApplicationStatus = "interview"
	StatusRejected    ApplicationStatus = "rejected"
	StatusHired       ApplicationStatus = "hired"
)

// Statuses lists every known status in pipeline order.
var Statuses = []ApplicationStatus{StatusApplied, StatusUnderReview, StatusInterview, StatusRejected, StatusHired}

// Valid reports whether s is one of the known statuses.
func (s ApplicationStatus) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultApplicationNote is stored on every application created by this client.
const DefaultApplicationNote = "Applied via job board"

type Application struct {
	JobID     string            `json:"jobId"`
	Status    ApplicationStatus `json:"status"`
	AppliedAt string            `json:"appliedAt"`
	JobTitle  string            `json:"jobTitle"`
	Company   string            `json:"company"`
	Notes     string            `json:"notes,omitempty"`
}

// User is the remote user record as this client reads it. Applications are
// embedded, not a separate collection. The store may hold members User does
// not declare, so writes to an existing user go through its raw form.
type User struct {
	ID           string        `json:"id,omitempty"`
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	Email        string        `json:"email"`
	PhoneNumber  string        `json:"phoneNumber"`
	Gender       string        `json:"gender"`
	Password     string        `json:"password"`
	DoB          string        `json:"DoB,omitempty"`
	Applications []Application `json:"applications,omitempty"`
}

type JobType string

const (
	JobFullTime   JobType = "full-time"
	JobPartTime   JobType = "part-time"
	JobContract   JobType = "contract"
	JobInternship JobType = "internship"
)

type Job struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Location       string   `json:"location"`
	Type           JobType  `json:"type"`
	Remote         bool     `json:"remote"`
	ClosingDate    string   `json:"closingDate"`
	Qualifications []string `json:"qualifications"`
}

// JobFilters narrows a job listing. Zero values mean "no filter"; Remote is
// tri-state.
type JobFilters struct {
	Search   string `json:"search,omitempty" yaml:"search"`
	Type     string `json:"type,omitempty" yaml:"type"`
	Location string `json:"location,omitempty" yaml:"location"`
	Remote   *bool  `json:"remote,omitempty" yaml:"remote"`
}

// Match reports whether j passes every set filter.
func (f JobFilters) Match(j Job) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), term) &&
			!strings.Contains(strings.ToLower(j.Company), term) &&
			!strings.Contains(strings.ToLower(j.Location), term) {
			return false
		}
	}
	if f.Type != "" && !strings.EqualFold(string(j.Type), f.Type) {
		return false
	}
	if f.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(f.Location)) {
		return false
	}
	if f.Remote != nil && j.Remote != *f.Remote {
		return false
	}
	return true
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Role of an authenticated user. The remote store does not persist it.
type Role string

const (
	RoleJobSeeker Role = "jobseeker"
	RoleEmployer  Role = "employer"
)

// SessionUser is the subset of User kept in the local session.
type SessionUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// RegisterForm is the registration input. Field validation (confirm password,
// required fields) happens before it reaches the client.
type RegisterForm struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	Gender          string `json:"gender"`
	Role            Role   `json:"role"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
