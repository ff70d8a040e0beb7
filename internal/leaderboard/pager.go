package leaderboard

// Pager tracks the current page of a ranked view. Navigation past either
// boundary leaves the current page unchanged.
type Pager struct {
	size  int
	total int
	page  int
}

func NewPager(total, size int) *Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	return &Pager{size: size, total: total}
}

// Page returns the current zero-based page index.
func (p *Pager) Page() int { return p.page }

// Goto moves to page if it exists and reports whether the page changed.
func (p *Pager) Goto(page int) bool {
	if page < 0 || page*p.size >= p.total || page == p.page {
		return false
	}
	p.page = page
	return true
}

func (p *Pager) Next() bool { return p.Goto(p.page + 1) }

func (p *Pager) Prev() bool { return p.Goto(p.page - 1) }

// Reset points the pager at a new view, keeping the current page when it is still valid.
func (p *Pager) Reset(total int) {
	p.total = total
	p.page = Clamp(p.page, total, p.size)
}
