package journal

import "github.com/dmitrijs2005/urgekeeper/internal/client/models"

// Filter returns the active history filter.
func (r *Repository) Filter() models.Filter {
	return r.filter
}

// SetFilter switches the history filter and goes back to the first page.
func (r *Repository) SetFilter(f models.Filter) {
	r.filter = f
	r.ResetPagination()
}

// ResetPagination rebuilds the view from scratch with one page loaded.
func (r *Repository) ResetPagination() {
	r.pages = 1
	r.rebuildPage()
}

// LoadMore adds the next page to the view. It reports false when the view
// already shows every matching entry.
func (r *Repository) LoadMore() bool {
	if !r.HasMore() {
		return false
	}
	r.pages++
	r.rebuildPage()
	return true
}

// HasMore reports whether matching entries exist beyond the loaded pages.
func (r *Repository) HasMore() bool {
	return r.matching() > len(r.page)
}

// Page returns the loaded part of the filtered history, newest first.
func (r *Repository) Page() []*models.Entry {
	return cloneAll(r.page)
}

func (r *Repository) matching() int {
	n := 0
	for _, e := range r.history {
		if r.filter.Matches(e) {
			n++
		}
	}
	return n
}

func (r *Repository) rebuildPage() {
	limit := r.pages * PageSize
	page := make([]*models.Entry, 0, min(limit, len(r.history)))
	for _, e := range r.history {
		if len(page) == limit {
			break
		}
		if r.filter.Matches(e) {
			page = append(page, e)
		}
	}
	r.page = page
}
