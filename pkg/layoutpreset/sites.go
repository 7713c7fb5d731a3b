package layoutpreset

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/exp/maps"
)

// LocationRules maps a site scope to the folders that may hold presets for
// it. It is built once from configuration and never mutated afterwards.
type LocationRules struct {
	byScope map[string][]uuid.UUID
}

// NewLocationRules groups rules by lower-cased site name. Rules without a site
// name register their folder for SharedScope. Duplicate folders within a
// scope are kept once, in first-seen order.
func NewLocationRules(rules []LocationRule) *LocationRules {
	lr := &LocationRules{byScope: make(map[string][]uuid.UUID)}
	for _, rule := range rules {
		scope := strings.ToLower(strings.TrimSpace(rule.SiteName))
		if scope == "" {
			scope = SharedScope
		}
		if slices.Contains(lr.byScope[scope], rule.LocationID) {
			continue
		}
		lr.byScope[scope] = append(lr.byScope[scope], rule.LocationID)
	}
	return lr
}

// Scopes returns the registered scope keys in sorted order.
func (lr *LocationRules) Scopes() []string {
	if lr == nil {
		return nil
	}
	scopes := maps.Keys(lr.byScope)
	slices.Sort(scopes)
	return scopes
}

// Folders returns the folders registered for siteScope followed by the
// shared folders not already listed for the site.
func (lr *LocationRules) Folders(siteScope string) []uuid.UUID {
	if lr == nil {
		return nil
	}
	var folders []uuid.UUID
	scope := strings.ToLower(siteScope)
	if scope != "" && scope != SharedScope {
		folders = append(folders, lr.byScope[scope]...)
	}
	for _, id := range lr.byScope[SharedScope] {
		if !slices.Contains(folders, id) {
			folders = append(folders, id)
		}
	}
	return folders
}

// StaticSiteRegistry serves a fixed list of sites.
type StaticSiteRegistry struct {
	sites []Site
}

// NewStaticSiteRegistry creates a registry over a copy of sites.
func NewStaticSiteRegistry(sites []Site) *StaticSiteRegistry {
	return &StaticSiteRegistry{sites: append([]Site(nil), sites...)}
}

// Sites returns the registered sites.
func (r *StaticSiteRegistry) Sites(ctx context.Context) ([]Site, error) {
	return append([]Site(nil), r.sites...), nil
}

// siteScopeFor returns the lower-cased name of the site whose root path is the
// longest case-insensitive prefix of path. Sites rooted at the generic content
// root only qualify when named defaultSite. It returns "" when nothing matches.
func siteScopeFor(sites []Site, path, contentRoot, defaultSite string) string {
	lowerPath := strings.ToLower(path)
	best, bestLen := "", -1
	for _, site := range sites {
		if site.RootPath == "" {
			continue
		}
		if strings.EqualFold(site.RootPath, contentRoot) && !strings.EqualFold(site.Name, defaultSite) {
			continue
		}
		if !strings.HasPrefix(lowerPath, strings.ToLower(site.RootPath)) {
			continue
		}
		if len(site.RootPath) > bestLen {
			best, bestLen = strings.ToLower(site.Name), len(site.RootPath)
		}
	}
	return best
}
