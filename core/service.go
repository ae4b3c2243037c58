package core

import "context"

// Service is a pure delegation façade in front of a Repository. It exists as
// the insertion point for business rules: applications embed it and override
// the operations they need, while controllers only ever talk to a Service.
// It never recovers errors; taxonomy errors pass through to the controller
// boundary untouched.
type Service struct {
	repository *Repository
}

// NewService creates a Service delegating to the given repository.
func NewService(repository *Repository) *Service {
	return &Service{repository: repository}
}

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository {
	return s.repository
}

// Resource returns the resource the service operates on.
func (s *Service) Resource() *Resource {
	return s.repository.Resource()
}

func (s *Service) Count(ctx context.Context, where Filter) (int64, error) {
	return s.repository.Count(ctx, where)
}

func (s *Service) CountWhere(ctx context.Context, column, operator string, value any, where Filter) (int64, error) {
	return s.repository.CountWhere(ctx, column, operator, value, where)
}

func (s *Service) Min(ctx context.Context, column string, where Filter) (float64, error) {
	return s.repository.Min(ctx, column, where)
}

func (s *Service) Max(ctx context.Context, column string, where Filter) (float64, error) {
	return s.repository.Max(ctx, column, where)
}

func (s *Service) Sum(ctx context.Context, column string, where Filter) (float64, error) {
	return s.repository.Sum(ctx, column, where)
}

func (s *Service) Avg(ctx context.Context, column string, where Filter) (float64, error) {
	return s.repository.Avg(ctx, column, where)
}

func (s *Service) Increment(ctx context.Context, id Identifier, column string, amount float64) error {
	return s.repository.Increment(ctx, id, column, amount)
}

func (s *Service) Decrement(ctx context.Context, id Identifier, column string, amount float64) error {
	return s.repository.Decrement(ctx, id, column, amount)
}

func (s *Service) Get(ctx context.Context, where Filter, with []string, limit int) ([]any, error) {
	return s.repository.Get(ctx, where, with, limit)
}

func (s *Service) GetWhere(ctx context.Context, column, operator string, value any, where Filter, with []string, limit int) ([]any, error) {
	return s.repository.GetWhere(ctx, column, operator, value, where, with, limit)
}

func (s *Service) WhereIn(ctx context.Context, column string, values []any, where Filter, with []string) ([]any, error) {
	return s.repository.WhereIn(ctx, column, values, where, with)
}

func (s *Service) GroupBy(ctx context.Context, groups []string, where Filter, with []string) ([]any, error) {
	return s.repository.GroupBy(ctx, groups, where, with)
}

func (s *Service) Search(ctx context.Context, terms map[string]*string, where Filter, with []string) ([]any, error) {
	return s.repository.Search(ctx, terms, where, with)
}

func (s *Service) Exists(ctx context.Context, id Identifier) (bool, error) {
	return s.repository.Exists(ctx, id)
}

func (s *Service) Find(ctx context.Context, id Identifier, with ...string) (any, error) {
	return s.repository.Find(ctx, id, with...)
}

func (s *Service) LockForUpdate(ctx context.Context, id Identifier, with ...string) (any, error) {
	return s.repository.LockForUpdate(ctx, id, with...)
}

func (s *Service) Create(ctx context.Context, data map[string]any) (any, error) {
	return s.repository.Create(ctx, data)
}

func (s *Service) Insert(ctx context.Context, rows []map[string]any) error {
	return s.repository.Insert(ctx, rows)
}

func (s *Service) Update(ctx context.Context, id Identifier, data map[string]any) error {
	return s.repository.Update(ctx, id, data)
}

func (s *Service) DirectUpdate(ctx context.Context, id Identifier, data map[string]any) (int64, error) {
	return s.repository.DirectUpdate(ctx, id, data)
}

func (s *Service) Delete(ctx context.Context, id Identifier) error {
	return s.repository.Delete(ctx, id)
}

func (s *Service) Clear(ctx context.Context, where Filter) (int64, error) {
	return s.repository.Clear(ctx, where)
}

func (s *Service) Paginate(ctx context.Context, page, perPage int, where Filter, with []string, orderBy string, dir SortDirection) (*Page, error) {
	return s.repository.Paginate(ctx, page, perPage, where, with, orderBy, dir)
}

func (s *Service) PaginateWhere(ctx context.Context, column, operator string, value any, page, perPage int, where Filter, with []string, orderBy string, dir SortDirection) (*Page, error) {
	return s.repository.PaginateWhere(ctx, column, operator, value, page, perPage, where, with, orderBy, dir)
}

func (s *Service) CountCreatedPerDayForMinutesAgo(ctx context.Context, minutes int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerDayForMinutesAgo(ctx, minutes, where)
}

func (s *Service) CountCreatedPerDayForDaysAgo(ctx context.Context, days int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerDayForDaysAgo(ctx, days, where)
}

func (s *Service) CountCreatedPerDayForWeeksAgo(ctx context.Context, weeks int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerDayForWeeksAgo(ctx, weeks, where)
}

func (s *Service) CountCreatedPerDayForMonthsAgo(ctx context.Context, months int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerDayForMonthsAgo(ctx, months, where)
}

func (s *Service) CountCreatedPerHourForMinutesAgo(ctx context.Context, minutes int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerHourForMinutesAgo(ctx, minutes, where)
}

func (s *Service) CountCreatedPerHourForHoursAgo(ctx context.Context, hours int, where Filter) (map[string]int64, error) {
	return s.repository.CountCreatedPerHourForHoursAgo(ctx, hours, where)
}

func (s *Service) SumPerDayForMinutesAgo(ctx context.Context, column string, minutes int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerDayForMinutesAgo(ctx, column, minutes, where)
}

func (s *Service) SumPerDayForDaysAgo(ctx context.Context, column string, days int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerDayForDaysAgo(ctx, column, days, where)
}

func (s *Service) SumPerDayForWeeksAgo(ctx context.Context, column string, weeks int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerDayForWeeksAgo(ctx, column, weeks, where)
}

func (s *Service) SumPerDayForMonthsAgo(ctx context.Context, column string, months int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerDayForMonthsAgo(ctx, column, months, where)
}

func (s *Service) SumPerHourForMinutesAgo(ctx context.Context, column string, minutes int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerHourForMinutesAgo(ctx, column, minutes, where)
}

func (s *Service) SumPerHourForHoursAgo(ctx context.Context, column string, hours int, where Filter) (map[string]float64, error) {
	return s.repository.SumPerHourForHoursAgo(ctx, column, hours, where)
}
