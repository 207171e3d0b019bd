// Package paginator slices an ordered gorm query into fixed-size pages.
//
// Page numbers are forgiving: a missing or malformed number yields the first
// page and a number outside 1..NumPages yields the last page, so a feed link
// never ends in an error.
package paginator

import (
	"strconv"
	"strings"

	"github.com/mdobak/go-xerrors"
	"gorm.io/gorm"
)

// Page is one slice of a paginated result.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	Count    int64
	PerPage  int
}

// Resolve turns the raw page parameter into a valid page number for a
// result of count rows split into pages of perPage.
func Resolve(raw string, count int64, perPage int) (number, numPages int) {
	if perPage < 1 {
		perPage = 1
	}
	numPages = int((count + int64(perPage) - 1) / int64(perPage))
	if numPages < 1 {
		numPages = 1
	}

	number, err := strconv.Atoi(strings.TrimSpace(raw))
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}
	return number, numPages
}

// Paginate counts the rows matched by query and loads the requested page
// ordered by order. query must not carry an ORDER BY clause of its own.
func Paginate[T any](query *gorm.DB, raw string, perPage int, order string, preloads ...string) (*Page[T], error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, xerrors.New(err)
	}

	number, numPages := Resolve(raw, count, perPage)
	page := &Page[T]{
		Number:   number,
		NumPages: numPages,
		Count:    count,
		PerPage:  perPage,
	}
	if count == 0 {
		return page, nil
	}

	q := query.Session(&gorm.Session{})
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Offset((number - 1) * perPage).Limit(perPage).Find(&page.Items).Error; err != nil {
		return nil, xerrors.New(err)
	}
	return page, nil
}

func (p *Page[T]) Len() int {
	return len(p.Items)
}

func (p *Page[T]) HasNext() bool {
	return p.Number < p.NumPages
}

func (p *Page[T]) HasPrevious() bool {
	return p.Number > 1
}

func (p *Page[T]) HasOtherPages() bool {
	return p.HasNext() || p.HasPrevious()
}

func (p *Page[T]) NextPageNumber() int {
	return p.Number + 1
}

func (p *Page[T]) PreviousPageNumber() int {
	return p.Number - 1
}

// StartIndex is the 1-based position of the first item on the page, 0 for
// an empty result.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// PageRange lists every page number, for rendering the page links.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
