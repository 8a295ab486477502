package cache

import (
	"net/url"
	"strconv"

	"travelagency/internal/domain"
	"travelagency/internal/domain/models"
)

const (
	PrefixTourList     = "tours:list:"
	PrefixTourSlug     = "tours:slug:"
	PrefixTours        = "tours:"
	KeySettings        = "settings:public"
	KeyFAQ             = "faq:public"
	KeyTeam            = "team:public"
	PrefixTestimonials = "testimonials:"
	PrefixBlog         = "blog:"
	PrefixPages        = "pages:"
)

// TourListKey is built from the filter and page that reach the repository,
// so requests that run the same query share one entry whatever their raw
// query string looked like.
func TourListKey(f models.TourFilter, p domain.Pagination) string {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("destination", f.Destination)
	set("category", f.Category)
	if f.Featured != nil {
		set("featured", strconv.FormatBool(*f.Featured))
	}
	if f.MinPrice != 0 {
		set("min_price", strconv.FormatInt(f.MinPrice, 10))
	}
	if f.MaxPrice != 0 {
		set("max_price", strconv.FormatInt(f.MaxPrice, 10))
	}
	set("q", f.Query)
	set("sort", f.Sort)
	if !f.PublishedOnly {
		set("all", "1")
	}
	set("page", strconv.Itoa(p.Page))
	set("size", strconv.Itoa(p.PageSize))
	return PrefixTourList + v.Encode()
}

func TourSlugKey(slug string) string {
	return PrefixTourSlug + slug
}
