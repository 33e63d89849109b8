package request

import "strings"

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// ListParams holds the pagination and ordering query parameters shared by list endpoints.
type ListParams struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

// Normalize fills defaults and upper-cases the sort order.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	p.SortOrder = strings.ToUpper(p.SortOrder)
	if p.SortOrder == "" {
		p.SortOrder = "DESC"
	}
}
