package catalog

import (
	_ "embed"
	"fmt"

	"github.com/BurntSushi/toml"

	"rebang/domain"
)

//go:embed menu.toml
var menuTOML []byte

//go:embed journal_sources.toml
var journalTOML []byte

type sourceRecord struct {
	Key        string `toml:"key"`
	Name       string `toml:"name"`
	RsshubPath string `toml:"rsshub_path"`
}

type subTabRecord struct {
	Key           string `toml:"key"`
	Name          string `toml:"name"`
	RsshubPath    string `toml:"rsshub_path"`
	Disabled      bool   `toml:"disabled"`
	Reason        string `toml:"reason"`
	RequiresToken string `toml:"requires_token"`
}

type tabRecord struct {
	Key            string `toml:"key"`
	Name           string `toml:"name"`
	Icon           string `toml:"icon"`
	Type           string `toml:"type"`
	RsshubPath     string `toml:"rsshub_path"`
	DefaultSub     string `toml:"default_sub"`
	SubTabSet      string `toml:"sub_tab_set"`
	AggregateGroup string `toml:"aggregate_group"`
	Disabled       bool   `toml:"disabled"`
	Reason         string `toml:"reason"`
	RequiresToken  string `toml:"requires_token"`
}

type categoryRecord struct {
	Key        string      `toml:"key"`
	Name       string      `toml:"name"`
	Path       string      `toml:"path"`
	DefaultTab string      `toml:"default_tab"`
	Tabs       []tabRecord `toml:"tabs"`
}

type menuFile struct {
	Version         int                       `toml:"version"`
	AggregateGroups map[string][]sourceRecord `toml:"aggregate_groups"`
	SubTabSets      map[string][]subTabRecord `toml:"subtab_sets"`
	Categories      []categoryRecord          `toml:"categories"`
}

type journalFile struct {
	Sources []domain.JournalSource `toml:"sources"`
}

// Menu decodes the embedded catalog. Every call returns a fresh tree.
func Menu() (*domain.Menu, error) {
	return ParseMenu(menuTOML)
}

// JournalSources decodes the embedded journal source list.
func JournalSources() ([]domain.JournalSource, error) {
	return ParseJournalSources(journalTOML)
}

func ParseMenu(data []byte) (*domain.Menu, error) {
	var file menuFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode menu catalog: %w", err)
	}
	menu, err := file.build()
	if err != nil {
		return nil, err
	}
	if err := Validate(menu); err != nil {
		return nil, err
	}
	return menu, nil
}

func ParseJournalSources(data []byte) ([]domain.JournalSource, error) {
	var file journalFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode journal sources: %w", err)
	}
	for i, s := range file.Sources {
		if s.Name == "" || s.Homepage == "" {
			return nil, fmt.Errorf("journal source #%d: name and homepage are required", i)
		}
	}
	return file.Sources, nil
}

func (f menuFile) build() (*domain.Menu, error) {
	menu := &domain.Menu{Version: f.Version, Categories: make([]domain.Category, 0, len(f.Categories))}
	for _, c := range f.Categories {
		category := domain.Category{
			Key:           c.Key,
			Name:          c.Name,
			Path:          c.Path,
			DefaultTabKey: c.DefaultTab,
			Tabs:          make([]domain.Tab, 0, len(c.Tabs)),
		}
		for _, t := range c.Tabs {
			tab := domain.Tab{
				Key:              t.Key,
				Name:             t.Name,
				IconText:         t.Icon,
				Type:             domain.TabType(t.Type),
				RsshubPath:       t.RsshubPath,
				DefaultSubTabKey: t.DefaultSub,
				Disabled:         t.Disabled,
				DisabledReason:   t.Reason,
				RequiresToken:    t.RequiresToken,
			}
			if t.SubTabSet != "" {
				set, ok := f.SubTabSets[t.SubTabSet]
				if !ok {
					return nil, fmt.Errorf("%s/%s: unknown sub tab set %q", c.Key, t.Key, t.SubTabSet)
				}
				tab.SubTabs = make([]domain.SubTab, len(set))
				for i, s := range set {
					tab.SubTabs[i] = domain.SubTab{
						Key:            s.Key,
						Name:           s.Name,
						RsshubPath:     s.RsshubPath,
						Disabled:       s.Disabled,
						DisabledReason: s.Reason,
						RequiresToken:  s.RequiresToken,
					}
				}
			}
			if t.AggregateGroup != "" {
				group, ok := f.AggregateGroups[t.AggregateGroup]
				if !ok {
					return nil, fmt.Errorf("%s/%s: unknown aggregate group %q", c.Key, t.Key, t.AggregateGroup)
				}
				tab.AggregateSources = make([]domain.AggregateSource, len(group))
				for i, s := range group {
					tab.AggregateSources[i] = domain.AggregateSource{Key: s.Key, Name: s.Name, RsshubPath: s.RsshubPath}
				}
			}
			category.Tabs = append(category.Tabs, tab)
		}
		menu.Categories = append(menu.Categories, category)
	}
	return menu, nil
}

// Validate checks the structural rules the resolver relies on: unique keys,
// a known tab type, and exactly one serving mode per tab.
func Validate(menu *domain.Menu) error {
	if menu.FindCategory(domain.HomeCategoryKey) == nil {
		return fmt.Errorf("menu has no %q category", domain.HomeCategoryKey)
	}
	seenCategories := make(map[string]struct{}, len(menu.Categories))
	for _, c := range menu.Categories {
		if _, dup := seenCategories[c.Key]; dup {
			return fmt.Errorf("duplicate category %q", c.Key)
		}
		seenCategories[c.Key] = struct{}{}
		if len(c.Tabs) == 0 {
			return fmt.Errorf("category %q has no tabs", c.Key)
		}
		if c.DefaultTabKey != "" && c.FindTab(c.DefaultTabKey) == nil {
			return fmt.Errorf("category %q: default tab %q not found", c.Key, c.DefaultTabKey)
		}
		seenTabs := make(map[string]struct{}, len(c.Tabs))
		for i := range c.Tabs {
			t := &c.Tabs[i]
			if _, dup := seenTabs[t.Key]; dup {
				return fmt.Errorf("category %q: duplicate tab %q", c.Key, t.Key)
			}
			seenTabs[t.Key] = struct{}{}
			if err := validateTab(t); err != nil {
				return fmt.Errorf("%s/%s: %w", c.Key, t.Key, err)
			}
		}
	}
	return nil
}

func validateTab(t *domain.Tab) error {
	if t.DefaultSubTabKey != "" && t.FindSubTab(t.DefaultSubTabKey) == nil {
		return fmt.Errorf("default sub tab %q not found", t.DefaultSubTabKey)
	}
	switch t.Type {
	case domain.TabTypeAggregate:
		if t.RsshubPath != "" {
			return fmt.Errorf("aggregate tab must not carry an rsshub path")
		}
		for _, s := range t.SubTabs {
			if s.RsshubPath != "" {
				return fmt.Errorf("aggregate sub tab %q must not carry an rsshub path", s.Key)
			}
		}
	case domain.TabTypeFeed:
		if len(t.AggregateSources) > 0 {
			return fmt.Errorf("feed tab must not carry aggregate sources")
		}
		if t.RsshubPath != "" && len(t.SubTabs) > 0 {
			return fmt.Errorf("feed tab has both an rsshub path and sub tabs")
		}
	default:
		return fmt.Errorf("unknown tab type %q", t.Type)
	}
	return nil
}
