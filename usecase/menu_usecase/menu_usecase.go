package menu_usecase

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"rebang/domain"
)

// GitHubToken is the RequiresToken value unlocked by GITHUB_ACCESS_TOKEN.
const GitHubToken = "github"

// TopTabKey is the home tab whose sources back the rising list.
const TopTabKey = "top"

// Resolution is the outcome of resolving a category/tab/sub selection.
// Category and Tab are nil when Found is false.
type Resolution struct {
	Found    bool
	Category *domain.Category
	Tab      *domain.Tab
	// SubKey is empty when the tab has no sub-tabs.
	SubKey string
}

// MenuUsecase serves the effective menu and everything derived from it.
// The menu is never mutated after construction.
type MenuUsecase struct {
	menu *domain.Menu

	routesOnce sync.Once
	routes     []domain.RouteEntry
	nsNames    map[string]string
}

// NewMenuUsecase builds the effective menu from base. base itself is left
// untouched.
func NewMenuUsecase(base *domain.Menu, tokens ...string) *MenuUsecase {
	return &MenuUsecase{menu: EffectiveMenu(base, tokens...)}
}

// EffectiveMenu clones base and re-enables every node gated on one of the
// given tokens.
func EffectiveMenu(base *domain.Menu, tokens ...string) *domain.Menu {
	menu := base.Clone()
	if len(tokens) == 0 {
		return menu
	}
	for ci := range menu.Categories {
		tabs := menu.Categories[ci].Tabs
		for ti := range tabs {
			tab := &tabs[ti]
			if tab.RequiresToken != "" && slices.Contains(tokens, tab.RequiresToken) {
				tab.Disabled = false
				tab.DisabledReason = ""
			}
			for si := range tab.SubTabs {
				sub := &tab.SubTabs[si]
				if sub.RequiresToken != "" && slices.Contains(tokens, sub.RequiresToken) {
					sub.Disabled = false
					sub.DisabledReason = ""
				}
			}
		}
	}
	return menu
}

func (u *MenuUsecase) Menu() *domain.Menu {
	return u.menu
}

// Resolve picks the category (falling back to home), the tab (falling back
// to the default, then the first tab) and, for tabs with sub-tabs, the sub
// key (explicit, then default, then first). Disabled nodes are returned as
// found; callers decide how to answer.
func (u *MenuUsecase) Resolve(categoryKey, tabKey, subKey string) Resolution {
	if categoryKey == "" {
		categoryKey = domain.HomeCategoryKey
	}
	category := u.menu.FindCategory(categoryKey)
	if category == nil {
		category = u.menu.FindCategory(domain.HomeCategoryKey)
	}
	if category == nil {
		return Resolution{}
	}

	if tabKey == "" {
		tabKey = category.DefaultTabKey
	}
	tab := category.FindTab(tabKey)
	if tab == nil {
		if len(category.Tabs) == 0 {
			return Resolution{}
		}
		tab = &category.Tabs[0]
	}

	res := Resolution{Found: true, Category: category, Tab: tab}
	if len(tab.SubTabs) > 0 {
		switch {
		case subKey != "":
			res.SubKey = subKey
		case tab.DefaultSubTabKey != "":
			res.SubKey = tab.DefaultSubTabKey
		default:
			res.SubKey = tab.SubTabs[0].Key
		}
	}
	return res
}

// TopSources returns the aggregate sources of home/top, or nil.
func (u *MenuUsecase) TopSources() []domain.AggregateSource {
	home := u.menu.FindCategory(domain.HomeCategoryKey)
	if home == nil {
		return nil
	}
	top := home.FindTab(TopTabKey)
	if top == nil || top.Type != domain.TabTypeAggregate {
		return nil
	}
	return top.AggregateSources
}

// Routes lists every distinct collaborator path referenced by the menu,
// sorted by full path. Built on first use.
func (u *MenuUsecase) Routes() []domain.RouteEntry {
	u.routesOnce.Do(u.buildRoutes)
	return u.routes
}

// NamespaceName is the display name for a route namespace, or ns itself
// when the menu does not reference it.
func (u *MenuUsecase) NamespaceName(ns string) string {
	u.routesOnce.Do(u.buildRoutes)
	if name, ok := u.nsNames[ns]; ok {
		return name
	}
	return ns
}

type pathRef struct {
	path      string
	name      string
	ownerName string
}

func (u *MenuUsecase) buildRoutes() {
	var refs []pathRef
	for _, c := range u.menu.Categories {
		for _, t := range c.Tabs {
			if t.RsshubPath != "" {
				refs = append(refs, pathRef{path: t.RsshubPath, name: t.Name, ownerName: t.Name})
			}
			for _, s := range t.SubTabs {
				if s.RsshubPath != "" {
					refs = append(refs, pathRef{path: s.RsshubPath, name: t.Name + " / " + s.Name, ownerName: t.Name})
				}
			}
			for _, a := range t.AggregateSources {
				refs = append(refs, pathRef{path: a.RsshubPath, name: a.Name, ownerName: a.Name})
			}
		}
	}
	refs = lo.UniqBy(refs, func(r pathRef) string { return r.path })

	nsNames := make(map[string]string)
	for _, r := range refs {
		ns := domain.RouteNamespace(r.path)
		if _, ok := nsNames[ns]; !ok {
			nsNames[ns] = r.ownerName
		}
	}

	routes := lo.Map(refs, func(r pathRef, _ int) domain.RouteEntry {
		ns := domain.RouteNamespace(r.path)
		fullPath, _, _ := strings.Cut(r.path, "?")
		return domain.RouteEntry{
			Namespace:     ns,
			NamespaceName: nsNames[ns],
			Path:          routeSubPath(fullPath, ns),
			FullPath:      fullPath,
			Name:          r.name,
			Example:       r.path,
		}
	})
	slices.SortStableFunc(routes, func(a, b domain.RouteEntry) int {
		return strings.Compare(a.FullPath, b.FullPath)
	})

	u.routes = routes
	u.nsNames = nsNames
}

// routeSubPath strips the namespace segment from fullPath.
func routeSubPath(fullPath, ns string) string {
	rest := strings.TrimPrefix(fullPath, "/"+ns)
	if rest == "" || rest == fullPath {
		return "/"
	}
	return rest
}
