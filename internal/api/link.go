package api

import (
	"net/url"
	"strconv"
	"strings"
)

// lastPage extracts the page number of the rel="last" entry of a Link header:
//
//	<https://api.github.com/...&page=2>; rel="next", <https://api.github.com/...&page=34>; rel="last"
func lastPage(linkHeader string) (int, bool) {
	for _, link := range strings.Split(linkHeader, ",") {
		target, params, found := strings.Cut(link, ";")
		if !found || !hasRel(params, "last") {
			continue
		}

		target = strings.Trim(strings.TrimSpace(target), "<>")
		u, err := url.Parse(target)
		if err != nil {
			return 0, false
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil || page < 1 {
			return 0, false
		}
		return page, true
	}
	return 0, false
}

func hasRel(params, rel string) bool {
	for _, p := range strings.Split(params, ";") {
		key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
		if !ok || strings.TrimSpace(key) != "rel" {
			continue
		}
		for _, r := range strings.Fields(strings.Trim(value, `"`)) {
			if r == rel {
				return true
			}
		}
	}
	return false
}
