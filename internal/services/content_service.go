package services

import (
	"context"
	"database/sql"
	"strings"

	"travelagency/internal/cache"
	intdb "travelagency/internal/db"
	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
	"travelagency/internal/repositories"
	"travelagency/internal/utils"
)

// ContentService covers the marketing content: blog, FAQ, pages, team,
// testimonials and site settings.
type ContentService struct {
	DB        *sql.DB
	Cache     Invalidator
	RequestID string
}

func (s ContentService) db() *sql.DB { return dbOr(s.DB) }

func requireID(id int64) error {
	if id <= 0 {
		return domain.ValidationError{Field: "id", Msg: "invalid id"}
	}
	return nil
}

func slugOrTitle(slug, title string) (string, error) {
	out := utils.Slugify(slug)
	if out == "" {
		out = utils.Slugify(title)
	}
	if out == "" {
		return "", domain.ValidationError{Field: "slug", Msg: "cannot derive slug"}
	}
	return out, nil
}

func (s ContentService) ListPosts(ctx context.Context, publishedOnly bool, p domain.Pagination) (domain.Page[models.BlogPost], error) {
	posts, total, err := repositories.BlogRepository{DB: s.db()}.List(ctx, publishedOnly, p)
	if err != nil {
		return domain.Page[models.BlogPost]{}, repoError("blog post", err)
	}
	if publishedOnly {
		for i := range posts {
			posts[i].BodyMarkdown = ""
		}
	}
	return domain.Page[models.BlogPost]{Data: posts, Pagination: p.WithTotal(total)}, nil
}

func (s ContentService) GetPublishedPost(ctx context.Context, slug string) (models.BlogPost, error) {
	post, err := repositories.BlogRepository{DB: s.db()}.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)), true)
	if err != nil {
		return models.BlogPost{}, repoError("blog post", err)
	}
	html, err := utils.RenderMarkdown(post.BodyMarkdown)
	if err != nil {
		return models.BlogPost{}, domain.InternalError{Err: err}
	}
	post.BodyHTML = html
	post.BodyMarkdown = ""
	return post, nil
}

func (s ContentService) GetPost(ctx context.Context, id int64) (models.BlogPost, error) {
	if err := requireID(id); err != nil {
		return models.BlogPost{}, err
	}
	post, err := repositories.BlogRepository{DB: s.db()}.GetByID(ctx, id)
	return post, repoError("blog post", err)
}

func (s ContentService) SavePost(ctx context.Context, id int64, in models.BlogPostInput) (models.BlogPost, error) {
	title := utils.NormalizeSpace(in.Title)
	if title == "" || strings.TrimSpace(in.BodyMarkdown) == "" {
		return models.BlogPost{}, domain.ValidationError{Field: "title", Msg: "title and body are required"}
	}
	slug, err := slugOrTitle(in.Slug, title)
	if err != nil {
		return models.BlogPost{}, err
	}
	post := models.BlogPost{
		ID:            id,
		Slug:          slug,
		Title:         title,
		Excerpt:       strings.TrimSpace(in.Excerpt),
		BodyMarkdown:  in.BodyMarkdown,
		CoverImageURL: strings.TrimSpace(in.CoverImageURL),
		Author:        utils.NormalizeSpace(in.Author),
		Published:     in.Published,
	}
	repo := repositories.BlogRepository{DB: s.db()}
	if id > 0 {
		err = repo.Update(ctx, post)
	} else {
		id, err = repo.Create(ctx, post)
	}
	if err != nil {
		return models.BlogPost{}, repoError("blog post", err)
	}
	invalidate(s.Cache, cache.PrefixBlog)
	utils.LogEvent(s.RequestID, "content", "blog_save", "blog post "+slug+" saved")
	return s.GetPost(ctx, id)
}

func (s ContentService) DeletePost(ctx context.Context, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := (repositories.BlogRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return repoError("blog post", err)
	}
	invalidate(s.Cache, cache.PrefixBlog)
	return nil
}

// FAQGroups returns published entries grouped by category, in category order.
func (s ContentService) FAQGroups(ctx context.Context) ([]models.FAQGroup, error) {
	items, err := repositories.FAQRepository{DB: s.db()}.List(ctx, true)
	if err != nil {
		return nil, repoError("faq", err)
	}
	return GroupFAQs(items), nil
}

// GroupFAQs keeps the input order; items are expected sorted by category then sort_order.
func GroupFAQs(items []models.FAQ) []models.FAQGroup {
	groups := []models.FAQGroup{}
	index := map[string]int{}
	for _, f := range items {
		i, ok := index[f.Category]
		if !ok {
			i = len(groups)
			index[f.Category] = i
			groups = append(groups, models.FAQGroup{Category: f.Category})
		}
		groups[i].Items = append(groups[i].Items, f)
	}
	return groups
}

func (s ContentService) ListFAQs(ctx context.Context) ([]models.FAQ, error) {
	items, err := repositories.FAQRepository{DB: s.db()}.List(ctx, false)
	return items, repoError("faq", err)
}

func (s ContentService) SaveFAQ(ctx context.Context, id int64, in models.FAQInput) (models.FAQ, error) {
	f := models.FAQ{
		ID:        id,
		Question:  strings.TrimSpace(in.Question),
		Answer:    strings.TrimSpace(in.Answer),
		Category:  strings.ToLower(utils.NormalizeSpace(in.Category)),
		SortOrder: in.SortOrder,
		Published: in.Published,
	}
	if f.Question == "" || f.Answer == "" {
		return models.FAQ{}, domain.ValidationError{Field: "question", Msg: "question and answer are required"}
	}
	if f.Category == "" {
		f.Category = "general"
	}
	repo := repositories.FAQRepository{DB: s.db()}
	var err error
	if id > 0 {
		err = repo.Update(ctx, f)
	} else {
		id, err = repo.Create(ctx, f)
	}
	if err != nil {
		return models.FAQ{}, repoError("faq", err)
	}
	invalidate(s.Cache, cache.KeyFAQ)
	saved, err := repo.GetByID(ctx, id)
	return saved, repoError("faq", err)
}

func (s ContentService) DeleteFAQ(ctx context.Context, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := (repositories.FAQRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return repoError("faq", err)
	}
	invalidate(s.Cache, cache.KeyFAQ)
	return nil
}

func (s ContentService) GetPublishedPage(ctx context.Context, slug string) (models.ContentPage, error) {
	page, err := repositories.PageRepository{DB: s.db()}.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)), true)
	if err != nil {
		return models.ContentPage{}, repoError("page", err)
	}
	html, err := utils.RenderMarkdown(page.BodyMarkdown)
	if err != nil {
		return models.ContentPage{}, domain.InternalError{Err: err}
	}
	page.BodyHTML = html
	page.BodyMarkdown = ""
	return page, nil
}

func (s ContentService) ListPages(ctx context.Context) ([]models.ContentPage, error) {
	pages, err := repositories.PageRepository{DB: s.db()}.List(ctx)
	return pages, repoError("page", err)
}

func (s ContentService) SavePage(ctx context.Context, id int64, in models.ContentPageInput) (models.ContentPage, error) {
	title := utils.NormalizeSpace(in.Title)
	if title == "" || strings.TrimSpace(in.BodyMarkdown) == "" {
		return models.ContentPage{}, domain.ValidationError{Field: "title", Msg: "title and body are required"}
	}
	slug, err := slugOrTitle(in.Slug, title)
	if err != nil {
		return models.ContentPage{}, err
	}
	page := models.ContentPage{ID: id, Slug: slug, Title: title, BodyMarkdown: in.BodyMarkdown, Published: in.Published}
	repo := repositories.PageRepository{DB: s.db()}
	if id > 0 {
		err = repo.Update(ctx, page)
	} else {
		id, err = repo.Create(ctx, page)
	}
	if err != nil {
		return models.ContentPage{}, repoError("page", err)
	}
	invalidate(s.Cache, cache.PrefixPages)
	saved, err := repo.GetByID(ctx, id)
	return saved, repoError("page", err)
}

func (s ContentService) DeletePage(ctx context.Context, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := (repositories.PageRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return repoError("page", err)
	}
	invalidate(s.Cache, cache.PrefixPages)
	return nil
}

func (s ContentService) ListTeam(ctx context.Context) ([]models.TeamMember, error) {
	members, err := repositories.TeamRepository{DB: s.db()}.List(ctx)
	return members, repoError("team member", err)
}

func (s ContentService) SaveTeamMember(ctx context.Context, id int64, in models.TeamMemberInput) (models.TeamMember, error) {
	m := models.TeamMember{
		ID:        id,
		Name:      utils.NormalizeSpace(in.Name),
		Role:      utils.NormalizeSpace(in.Role),
		Bio:       strings.TrimSpace(in.Bio),
		PhotoURL:  strings.TrimSpace(in.PhotoURL),
		SortOrder: in.SortOrder,
	}
	if m.Name == "" {
		return models.TeamMember{}, domain.ValidationError{Field: "name", Msg: "required"}
	}
	repo := repositories.TeamRepository{DB: s.db()}
	var err error
	if id > 0 {
		err = repo.Update(ctx, m)
	} else {
		id, err = repo.Create(ctx, m)
	}
	if err != nil {
		return models.TeamMember{}, repoError("team member", err)
	}
	invalidate(s.Cache, cache.KeyTeam)
	saved, err := repo.GetByID(ctx, id)
	return saved, repoError("team member", err)
}

func (s ContentService) DeleteTeamMember(ctx context.Context, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := (repositories.TeamRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return repoError("team member", err)
	}
	invalidate(s.Cache, cache.KeyTeam)
	return nil
}

func (s ContentService) ListTestimonials(ctx context.Context, publishedOnly bool, tourID int64) ([]models.Testimonial, error) {
	items, err := repositories.TestimonialRepository{DB: s.db()}.List(ctx, publishedOnly, tourID)
	return items, repoError("testimonial", err)
}

func (s ContentService) SaveTestimonial(ctx context.Context, id int64, in models.TestimonialInput) (models.Testimonial, error) {
	t := models.Testimonial{
		ID:         id,
		AuthorName: utils.NormalizeSpace(in.AuthorName),
		Location:   utils.NormalizeSpace(in.Location),
		Quote:      strings.TrimSpace(in.Quote),
		Rating:     in.Rating,
		TourID:     in.TourID,
		Published:  in.Published,
	}
	if t.AuthorName == "" || t.Quote == "" {
		return models.Testimonial{}, domain.ValidationError{Field: "quote", Msg: "author and quote are required"}
	}
	if t.Rating < 1 || t.Rating > 5 {
		return models.Testimonial{}, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}
	if t.TourID != nil && *t.TourID <= 0 {
		t.TourID = nil
	}
	repo := repositories.TestimonialRepository{DB: s.db()}
	var err error
	if id > 0 {
		err = repo.Update(ctx, t)
	} else {
		id, err = repo.Create(ctx, t)
	}
	if intdb.IsForeignKeyViolation(err) {
		return models.Testimonial{}, domain.ValidationError{Field: "tour_id", Msg: "unknown tour", Err: err}
	}
	if err != nil {
		return models.Testimonial{}, repoError("testimonial", err)
	}
	invalidate(s.Cache, cache.PrefixTestimonials)
	saved, err := repo.GetByID(ctx, id)
	return saved, repoError("testimonial", err)
}

func (s ContentService) DeleteTestimonial(ctx context.Context, id int64) error {
	if err := requireID(id); err != nil {
		return err
	}
	if err := (repositories.TestimonialRepository{DB: s.db()}).Delete(ctx, id); err != nil {
		return repoError("testimonial", err)
	}
	invalidate(s.Cache, cache.PrefixTestimonials)
	return nil
}

// PublicSettings returns every setting not marked private as a key/value map.
func (s ContentService) PublicSettings(ctx context.Context) (map[string]string, error) {
	all, err := repositories.SettingsRepository{DB: s.db()}.All(ctx)
	if err != nil {
		return nil, repoError("settings", err)
	}
	out := make(map[string]string, len(all))
	for _, kv := range all {
		if models.IsPublicSetting(kv.Key) {
			out[kv.Key] = kv.Value
		}
	}
	return out, nil
}

func (s ContentService) AllSettings(ctx context.Context) ([]models.SiteSetting, error) {
	all, err := repositories.SettingsRepository{DB: s.db()}.All(ctx)
	return all, repoError("settings", err)
}

// SaveSettings upserts every pair in one transaction.
func (s ContentService) SaveSettings(ctx context.Context, values map[string]string) ([]models.SiteSetting, error) {
	if len(values) == 0 {
		return nil, domain.ValidationError{Field: "settings", Msg: "empty"}
	}
	for k := range values {
		if key := strings.TrimSpace(k); key == "" || len(key) > 120 {
			return nil, domain.ValidationError{Field: "settings", Msg: "invalid key"}
		}
	}
	err := intdb.WithTx(ctx, s.db(), func(tx *sql.Tx) error {
		repo := repositories.SettingsRepository{}.WithTx(tx)
		for k, v := range values {
			if err := repo.Upsert(ctx, strings.TrimSpace(k), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, repoError("settings", err)
	}
	invalidate(s.Cache, cache.KeySettings)
	utils.LogEvent(s.RequestID, "content", "settings_save", "site settings updated")
	return s.AllSettings(ctx)
}
