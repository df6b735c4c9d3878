package domain

type TabType string

const (
	TabTypeFeed      TabType = "feed"
	TabTypeAggregate TabType = "aggregate"
)

const HomeCategoryKey = "home"

type Menu struct {
	Version    int        `json:"version"`
	Categories []Category `json:"categories"`
}

type Category struct {
	Key           string `json:"key"`
	Name          string `json:"name"`
	Path          string `json:"path"`
	DefaultTabKey string `json:"defaultTabKey"`
	Tabs          []Tab  `json:"tabs"`
}

type Tab struct {
	Key              string            `json:"key"`
	Name             string            `json:"name"`
	IconText         string            `json:"iconText,omitempty"`
	Type             TabType           `json:"type"`
	RsshubPath       string            `json:"rsshubPath,omitempty"`
	SubTabs          []SubTab          `json:"subTabs,omitempty"`
	DefaultSubTabKey string            `json:"defaultSubTabKey,omitempty"`
	AggregateSources []AggregateSource `json:"aggregateSources,omitempty"`
	Disabled         bool              `json:"disabled,omitempty"`
	DisabledReason   string            `json:"disabledReason,omitempty"`
	// RequiresToken names the operator credential that unlocks this node.
	RequiresToken string `json:"-"`
}

type SubTab struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	RsshubPath     string `json:"rsshubPath,omitempty"`
	Disabled       bool   `json:"disabled,omitempty"`
	DisabledReason string `json:"disabledReason,omitempty"`
	RequiresToken  string `json:"-"`
}

type AggregateSource struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	RsshubPath string `json:"rsshubPath"`
}

func (m *Menu) FindCategory(key string) *Category {
	for i := range m.Categories {
		if m.Categories[i].Key == key {
			return &m.Categories[i]
		}
	}
	return nil
}

func (c *Category) FindTab(key string) *Tab {
	for i := range c.Tabs {
		if c.Tabs[i].Key == key {
			return &c.Tabs[i]
		}
	}
	return nil
}

func (t *Tab) FindSubTab(key string) *SubTab {
	for i := range t.SubTabs {
		if t.SubTabs[i].Key == key {
			return &t.SubTabs[i]
		}
	}
	return nil
}

func (t *Tab) Source() SourceRef {
	return SourceRef{Key: t.Key, Name: t.Name}
}

func (s AggregateSource) Ref() SourceRef {
	return SourceRef{Key: s.Key, Name: s.Name}
}

// Clone returns a deep copy that shares no slices with m.
func (m *Menu) Clone() *Menu {
	out := &Menu{Version: m.Version, Categories: make([]Category, len(m.Categories))}
	for i, c := range m.Categories {
		c.Tabs = cloneTabs(c.Tabs)
		out.Categories[i] = c
	}
	return out
}

func cloneTabs(tabs []Tab) []Tab {
	if tabs == nil {
		return nil
	}
	out := make([]Tab, len(tabs))
	for i, t := range tabs {
		if t.SubTabs != nil {
			t.SubTabs = append([]SubTab(nil), t.SubTabs...)
		}
		if t.AggregateSources != nil {
			t.AggregateSources = append([]AggregateSource(nil), t.AggregateSources...)
		}
		out[i] = t
	}
	return out
}
