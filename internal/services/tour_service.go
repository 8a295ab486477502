package services

import (
	"context"
	"database/sql"
	"strings"

	"travelagency/internal/cache"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

type TourService struct {
	DB              *sql.DB
	Cache           Invalidator
	DefaultCurrency string
	RequestID       string
}

func (s TourService) tours() repositories.TourRepository {
	return repositories.TourRepository{DB: dbOr(s.DB)}
}

func (s TourService) List(ctx context.Context, f models.TourFilter, p domain.Pagination) (domain.Page[models.Tour], error) {
	if !repositories.ValidTourSort(f.Sort) {
		return domain.Page[models.Tour]{}, domain.ValidationError{Field: "sort", Msg: "unknown sort order"}
	}
	if f.MinPrice < 0 || f.MaxPrice < 0 || (f.MaxPrice > 0 && f.MinPrice > f.MaxPrice) {
		return domain.Page[models.Tour]{}, domain.ValidationError{Field: "price", Msg: "invalid price range"}
	}
	tours, total, err := s.tours().List(ctx, f, p)
	if err != nil {
		return domain.Page[models.Tour]{}, repoError("tour", err)
	}
	return domain.Page[models.Tour]{Data: tours, Pagination: p.WithTotal(total)}, nil
}

// GetPublished returns a published tour with its description rendered to HTML.
func (s TourService) GetPublished(ctx context.Context, slug string) (models.Tour, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return models.Tour{}, domain.ValidationError{Field: "slug", Msg: "required"}
	}
	t, err := s.tours().GetBySlug(ctx, slug, true)
	if err != nil {
		return models.Tour{}, repoError("tour", err)
	}
	html, err := utils.RenderMarkdown(t.Description)
	if err != nil {
		return models.Tour{}, domain.InternalError{Err: err}
	}
	t.DescriptionHTML = html
	return t, nil
}

func (s TourService) Get(ctx context.Context, id int64) (models.Tour, error) {
	if id <= 0 {
		return models.Tour{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	t, err := s.tours().GetByID(ctx, id)
	return t, repoError("tour", err)
}

func (s TourService) Create(ctx context.Context, in models.TourInput) (models.Tour, error) {
	t, err := s.fromInput(in)
	if err != nil {
		return models.Tour{}, err
	}
	id, err := s.tours().Create(ctx, t)
	if err != nil {
		return models.Tour{}, repoError("tour", err)
	}
	s.changed()
	utils.LogEvent(s.RequestID, "tour", "create", "tour "+t.Slug+" created")
	return s.Get(ctx, id)
}

func (s TourService) Update(ctx context.Context, id int64, in models.TourInput) (models.Tour, error) {
	if id <= 0 {
		return models.Tour{}, domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	t, err := s.fromInput(in)
	if err != nil {
		return models.Tour{}, err
	}
	t.ID = id
	if err := s.tours().Update(ctx, t); err != nil {
		return models.Tour{}, repoError("tour", err)
	}
	s.changed()
	utils.LogEvent(s.RequestID, "tour", "update", "tour "+t.Slug+" updated")
	return s.Get(ctx, id)
}

func (s TourService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	if err := s.tours().Delete(ctx, id); err != nil {
		return repoError("tour", err)
	}
	s.changed()
	return nil
}

func (s TourService) changed() {
	invalidate(s.Cache, cache.PrefixTours)
}

func (s TourService) fromInput(in models.TourInput) (models.Tour, error) {
	title := utils.NormalizeSpace(in.Title)
	if title == "" {
		return models.Tour{}, domain.ValidationError{Field: "title", Msg: "required"}
	}
	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(title)
	}
	if slug == "" {
		return models.Tour{}, domain.ValidationError{Field: "slug", Msg: "cannot derive slug"}
	}
	if in.PriceCents <= 0 {
		return models.Tour{}, domain.ValidationError{Field: "price_cents", Msg: "must be positive"}
	}
	if in.DurationDays < 1 {
		return models.Tour{}, domain.ValidationError{Field: "duration_days", Msg: "must be at least 1"}
	}
	if in.MaxGroupSize < 1 {
		return models.Tour{}, domain.ValidationError{Field: "max_group_size", Msg: "must be at least 1"}
	}
	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = strings.ToLower(s.DefaultCurrency)
	}
	if len(currency) != 3 {
		currency = "usd"
	}
	return models.Tour{
		Slug:          slug,
		Title:         title,
		Summary:       strings.TrimSpace(in.Summary),
		Description:   strings.TrimSpace(in.Description),
		Destination:   utils.NormalizeSpace(in.Destination),
		Category:      strings.ToLower(utils.NormalizeSpace(in.Category)),
		DurationDays:  in.DurationDays,
		PriceCents:    in.PriceCents,
		Currency:      currency,
		MaxGroupSize:  in.MaxGroupSize,
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
		Featured:      in.Featured,
		Published:     in.Published,
	}, nil
}
