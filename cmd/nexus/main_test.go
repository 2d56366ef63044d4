package main

import (
	"testing"

	"github.com/creativehub/nexus/pkg/api"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, path := range [][]string{
		{"config", "status"},
		{"auth", "login"},
		{"feed"},
		{"search"},
		{"suggest"},
		{"project", "comments"},
		{"project", "unsave"},
		{"profile", "update"},
		{"availability", "sync"},
		{"notifications", "watch"},
		{"hire", "complete"},
		{"analytics"},
	} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestFeedFlagsToParams(t *testing.T) {
	var flags feedFlags
	cmd := &cobra.Command{Use: "feed"}
	flags.bind(cmd, true)
	require.NoError(t, cmd.ParseFlags([]string{
		"--category", " Illustration ", "--search", " neon ", "--range", "week",
		"--media", "image", "--sort", "most_liked", "--best-of", "-n", "5", "--offset", "10",
	}))

	assert.Equal(t, api.FeedParams{
		Category: "illustration",
		Search:   "neon",
		Range:    "week",
		Media:    "image",
		Sort:     "most_liked",
		BestOf:   true,
		Limit:    5,
		Offset:   10,
	}, flags.params())
}

func TestFeedFlagDefaults(t *testing.T) {
	var flags feedFlags
	cmd := &cobra.Command{Use: "search"}
	flags.bind(cmd, false)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Nil(t, cmd.Flags().Lookup("search"))
	assert.Equal(t, api.FeedParams{Limit: 20}, flags.params())
}

func TestProfileUpdateOnlySendsChangedFlags(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"profile", "update"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--bio", "", "--skills", "3d,motion"}))

	update := profileUpdate(cmd, "", "", "", "", "", []string{"3d", "motion"})
	require.NotNil(t, update.Bio)
	assert.Equal(t, "", *update.Bio)
	require.NotNil(t, update.Skills)
	assert.Equal(t, []string{"3d", "motion"}, *update.Skills)
	assert.Nil(t, update.DisplayName)
	assert.Nil(t, update.Website)
}
