package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rebang/domain"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestMenuCmd_HidesTokenGatedNodesByDefault(t *testing.T) {
	t.Setenv("GITHUB_ACCESS_TOKEN", "")

	var menu domain.Menu
	require.NoError(t, json.Unmarshal([]byte(run(t, "menu")), &menu))

	home := menu.FindCategory(domain.HomeCategoryKey)
	require.NotNil(t, home)
	gh := home.FindTab("github")
	require.NotNil(t, gh)
	assert.True(t, gh.Disabled)
}

func TestMenuCmd_RevealsTokenGatedNodes(t *testing.T) {
	t.Setenv("GITHUB_ACCESS_TOKEN", "ghp_test")

	var menu domain.Menu
	require.NoError(t, json.Unmarshal([]byte(run(t, "menu")), &menu))

	gh := menu.FindCategory(domain.HomeCategoryKey).FindTab("github")
	require.NotNil(t, gh)
	assert.False(t, gh.Disabled)
	assert.Empty(t, gh.DisabledReason)
	assert.False(t, gh.SubTabs[0].Disabled)
}

func TestRoutesCmd(t *testing.T) {
	var routes []domain.RouteEntry
	require.NoError(t, json.Unmarshal([]byte(run(t, "routes")), &routes))
	require.NotEmpty(t, routes)

	for i := 1; i < len(routes); i++ {
		assert.LessOrEqual(t, routes[i-1].FullPath, routes[i].FullPath)
	}
}

func TestRootCmd_Help(t *testing.T) {
	out := run(t, "--help")
	assert.Contains(t, out, "rebang serve")
	assert.Contains(t, out, "routes")
}
