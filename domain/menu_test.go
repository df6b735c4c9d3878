package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMenu() *Menu {
	return &Menu{
		Version: 1,
		Categories: []Category{{
			Key: "home",
			Tabs: []Tab{{
				Key:              "top",
				Type:             TabTypeAggregate,
				SubTabs:          []SubTab{{Key: "today"}},
				AggregateSources: []AggregateSource{{Key: "a", Name: "A", RsshubPath: "/a"}},
			}},
		}},
	}
}

func TestMenu_CloneIsIndependent(t *testing.T) {
	orig := sampleMenu()
	clone := orig.Clone()

	clone.Categories[0].Tabs[0].Disabled = true
	clone.Categories[0].Tabs[0].SubTabs[0].Disabled = true
	clone.Categories[0].Tabs[0].AggregateSources[0].Name = "changed"

	assert.False(t, orig.Categories[0].Tabs[0].Disabled)
	assert.False(t, orig.Categories[0].Tabs[0].SubTabs[0].Disabled)
	assert.Equal(t, "A", orig.Categories[0].Tabs[0].AggregateSources[0].Name)
}

func TestMenu_Find(t *testing.T) {
	m := sampleMenu()

	c := m.FindCategory("home")
	require.NotNil(t, c)
	assert.Nil(t, m.FindCategory("nope"))

	tab := c.FindTab("top")
	require.NotNil(t, tab)
	assert.Nil(t, c.FindTab("nope"))

	assert.NotNil(t, tab.FindSubTab("today"))
	assert.Nil(t, tab.FindSubTab("weekly"))

	assert.Equal(t, SourceRef{Key: "a", Name: "A"}, tab.AggregateSources[0].Ref())
}
