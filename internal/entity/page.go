package entity

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize clamps page to >= 1 and size to [1, MaxPageSize].
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p PageRequest) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}

func NewPage[T any](items []T, total int64, req PageRequest) *Page[T] {
	req = req.Normalize()
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: req.Page, Size: req.Size}
}

// MapPage converts the items of a page keeping its metadata.
func MapPage[T, R any](p *Page[T], fn func(T) R) *Page[R] {
	out := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		out = append(out, fn(it))
	}
	return &Page[R]{Items: out, Total: p.Total, Page: p.Page, Size: p.Size}
}
