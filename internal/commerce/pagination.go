package commerce

import "net/url"

// PageVars selects one page of a cursor-paginated connection. Exactly one of
// First and Last is set.
type PageVars struct {
	First       int
	Last        int
	StartCursor string
	EndCursor   string
}

// PageVarsFromQuery reads ?direction=previous|next&cursor=... the way the
// pagination links emit them. Anything other than "previous" pages forward.
func PageVarsFromQuery(q url.Values, pageBy int) PageVars {
	cursor := q.Get("cursor")
	if q.Get("direction") == "previous" {
		return PageVars{Last: pageBy, StartCursor: cursor}
	}
	return PageVars{First: pageBy, EndCursor: cursor}
}

// Variables renders the page selection as GraphQL variables. Unset values
// are omitted so the API receives null.
func (p PageVars) Variables() map[string]any {
	vars := map[string]any{}
	if p.First > 0 {
		vars["first"] = p.First
	}
	if p.Last > 0 {
		vars["last"] = p.Last
	}
	if p.StartCursor != "" {
		vars["startCursor"] = p.StartCursor
	}
	if p.EndCursor != "" {
		vars["endCursor"] = p.EndCursor
	}
	return vars
}
