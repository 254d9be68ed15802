package robot

import (
	"strings"
)

// Sort keys accepted by list queries.
const (
	SortName      = "name"
	SortYear      = "year"
	SortCreatedAt = "createdAt"
)

// Sort orders.
const (
	OrderAsc  = "ASC"
	OrderDesc = "DESC"
)

// List defaults and bounds.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// ListOptions describes a page request over robots.
type ListOptions struct {
	Query           string
	Sort            string
	Order           string
	Limit           int
	Offset          int
	IncludeArchived bool
}

// NormalizeListOptions fills defaults and rejects unknown sort keys, orders
// and negative offsets.
func NormalizeListOptions(o ListOptions) (ListOptions, GuardResult) {
	out := o
	out.Query = strings.TrimSpace(o.Query)

	switch strings.ToLower(strings.TrimSpace(o.Sort)) {
	case "", "name":
		out.Sort = SortName
	case "year":
		out.Sort = SortYear
	case "createdat", "created_at", "created":
		out.Sort = SortCreatedAt
	default:
		return o, invalid("unknown sort key %q (use name, year or createdAt)", o.Sort)
	}

	switch strings.ToUpper(strings.TrimSpace(o.Order)) {
	case "", OrderAsc:
		out.Order = OrderAsc
	case OrderDesc:
		out.Order = OrderDesc
	default:
		return o, invalid("unknown sort order %q (use ASC or DESC)", o.Order)
	}

	if o.Offset < 0 {
		return o, invalid("offset cannot be negative (got %d)", o.Offset)
	}
	if out.Limit <= 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit > MaxLimit {
		out.Limit = MaxLimit
	}

	return out, GuardResult{Allowed: true}
}

// HasMore reports whether rows remain after a page.
func HasMore(offset, pageLen, total int) bool {
	return offset+pageLen < total
}
