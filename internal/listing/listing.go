// Package listing caches one page of the job board and the filters that
// produced it.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/garnizeh/jobboard/internal/apperr"
	"github.com/garnizeh/jobboard/internal/lifecycle"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/garnizeh/jobboard/pkg/recordstore"
	"github.com/garnizeh/jobboard/pkg/repository"
)

// User-facing messages.
const (
	MsgFetchJobsFailed = "Failed to fetch jobs. Please try again."
	MsgFetchJobFailed  = "Failed to fetch job details."
	MsgCreateJobFailed = "Job creation failed. Please try again."
)

const DefaultPageSize = 10

// PageInfo describes where the cached page sits in the filtered result.
type PageInfo struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Page is one slice of a filtered job list.
type Page struct {
	Jobs  []models.Job
	Total int
}

type Snapshot struct {
	Jobs       []models.Job
	CurrentJob *models.Job
	Filters    models.JobFilters
	Pagination PageInfo
	Loading    bool
	Error      string
}

// Board is the jobs listing state. The remote store cannot filter or page,
// so every fetch lists the whole collection and narrows it locally.
type Board struct {
	gw     repository.RecordGateway
	logger *slog.Logger

	mu         sync.Mutex
	status     lifecycle.Status
	jobs       []models.Job
	current    *models.Job
	filters    models.JobFilters
	pagination PageInfo
}

func NewBoard(gw repository.RecordGateway, pageSize int, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Board{
		gw:         gw,
		logger:     logger,
		jobs:       []models.Job{},
		pagination: PageInfo{CurrentPage: 1, ItemsPerPage: pageSize},
	}
}

// FetchJobs loads the page described by p using filters f. A zero p.Page
// means the current page and a zero p.Limit the configured page size.
func (b *Board) FetchJobs(ctx context.Context, f models.JobFilters, p models.Pagination) (Page, error) {
	b.mu.Lock()
	if p.Page <= 0 {
		p.Page = b.pagination.CurrentPage
	}
	if p.Limit <= 0 {
		p.Limit = b.pagination.ItemsPerPage
	}
	b.mu.Unlock()

	return lifecycle.Run(ctx, &b.mu, &b.status,
		func(ctx context.Context) (Page, error) {
			var all []models.Job
			if err := b.gw.List(ctx, recordstore.Jobs, &all); err != nil {
				b.logger.Error("fetch jobs: list", slog.Any("err", err))
				return Page{}, apperr.New(apperr.ErrFetchFailed, MsgFetchJobsFailed, err)
			}
			return Paginate(Filter(all, f), p), nil
		},
		lifecycle.Handlers[Page]{
			Name:     "jobs/fetch",
			Fallback: MsgFetchJobsFailed,
			Fulfilled: func(pg Page) {
				b.jobs = pg.Jobs
				b.pagination.TotalItems = pg.Total
				b.pagination.TotalPages = totalPages(pg.Total, b.pagination.ItemsPerPage)
			},
		})
}

// FetchJobByID loads one job into the current job slot.
func (b *Board) FetchJobByID(ctx context.Context, id string) (models.Job, error) {
	return lifecycle.Run(ctx, &b.mu, &b.status,
		func(ctx context.Context) (models.Job, error) {
			var j models.Job
			if err := b.gw.Get(ctx, recordstore.Jobs, id, &j); err != nil {
				if errors.Is(err, apperr.ErrNotFound) {
					return j, apperr.New(apperr.ErrNotFound, MsgFetchJobFailed, err)
				}
				b.logger.Error("fetch job: get", slog.String("job_id", id), slog.Any("err", err))
				return j, apperr.New(apperr.ErrFetchFailed, MsgFetchJobFailed, err)
			}
			return j, nil
		},
		lifecycle.Handlers[models.Job]{
			Name:      "jobs/fetch-one",
			Fallback:  MsgFetchJobFailed,
			Fulfilled: func(j models.Job) { b.current = &j },
		})
}

// CreateJob posts a new job and puts it at the top of the cached page.
func (b *Board) CreateJob(ctx context.Context, j models.Job) (models.Job, error) {
	j.ID = ""
	return lifecycle.Run(ctx, &b.mu, &b.status,
		func(ctx context.Context) (models.Job, error) {
			var out models.Job
			if err := b.gw.Create(ctx, recordstore.Jobs, j, &out); err != nil {
				b.logger.Error("create job", slog.String("title", j.Title), slog.Any("err", err))
				return out, apperr.New(apperr.ErrCreateFailed, MsgCreateJobFailed, err)
			}
			return out, nil
		},
		lifecycle.Handlers[models.Job]{
			Name:     "jobs/create",
			Fallback: MsgCreateJobFailed,
			Fulfilled: func(created models.Job) {
				b.jobs = append([]models.Job{created}, b.jobs...)
			},
		})
}

// SetFilters stores f and returns to the first page.
func (b *Board) SetFilters(f models.JobFilters) {
	b.mu.Lock()
	b.filters = f
	b.pagination.CurrentPage = 1
	b.mu.Unlock()
}

func (b *Board) ClearFilters() {
	b.SetFilters(models.JobFilters{})
}

func (b *Board) SetCurrentPage(page int) {
	if page < 1 {
		page = 1
	}
	b.mu.Lock()
	b.pagination.CurrentPage = page
	b.mu.Unlock()
}

func (b *Board) ClearCurrentJob() {
	b.mu.Lock()
	b.current = nil
	b.mu.Unlock()
}

func (b *Board) ClearError() {
	b.mu.Lock()
	b.status.ClearError()
	b.mu.Unlock()
}

// Filters returns the stored filters.
func (b *Board) Filters() models.JobFilters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := Snapshot{
		Jobs:       append([]models.Job(nil), b.jobs...),
		Filters:    b.filters,
		Pagination: b.pagination,
		Loading:    b.status.Loading,
		Error:      b.status.Error,
	}
	if b.current != nil {
		j := *b.current
		snap.CurrentJob = &j
	}
	return snap
}

// Filter keeps the jobs matching every set filter, in their original order.
func Filter(jobs []models.Job, f models.JobFilters) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if f.Match(j) {
			out = append(out, j)
		}
	}
	return out
}

// Paginate cuts page p.Page (1-based) of size p.Limit out of jobs. Total is
// the length before cutting.
func Paginate(jobs []models.Job, p models.Pagination) Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	total := len(jobs)
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := min(start+p.Limit, total)
	return Page{Jobs: append([]models.Job{}, jobs[start:end]...), Total: total}
}

func totalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
