package maps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"livepop-server/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDOMLabelSource_Labels(t *testing.T) {
	page, err := api.NewPageFromHTML("", []byte(placePage+`<div aria-label=""></div><span aria-label="Save"></span>`))
	require.NoError(t, err)

	labels := NewDOMLabelSource(800).Labels(page)
	assert.Equal(t, []string{"12 PM: Currently 40% busy.", "Save"}, labels)
}

func TestDOMLabelSource_LabelsCapped(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, `<div aria-label="label %d"></div>`, i)
	}
	page, err := api.NewPageFromHTML("", []byte(b.String()))
	require.NoError(t, err)

	labels := NewDOMLabelSource(5).Labels(page)
	require.Len(t, labels, 5)
	assert.Equal(t, "label 4", labels[4])
}

func TestDOMLabelSource_NilPage(t *testing.T) {
	src := NewDOMLabelSource(10)
	assert.Empty(t, src.Labels(nil))
	assert.Equal(t, UnknownPlaceName, src.PlaceName(nil))
}

func TestDOMLabelSource_PlaceName(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"Heading", `<h1 class="DUwDvf lfPIob"> Domino's Pizza </h1>`, "Domino's Pizza"},
		{"NoHeading", `<h1 class="other">Something</h1>`, UnknownPlaceName},
		{"EmptyHeading", `<h1 class="DUwDvf"></h1>`, UnknownPlaceName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := api.NewPageFromHTML("", []byte(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.want, NewDOMLabelSource(10).PlaceName(page))
		})
	}
}

func TestFixtureNavigator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFixture), []byte(placePage), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0x1:0x2.html"), []byte(`<h1 class="DUwDvf">Specific</h1>`), 0o644))

	nav := NewFixtureNavigator(dir, testOpts.SectionMarkers)
	src := NewDOMLabelSource(10)

	t.Run("ByPlaceID", func(t *testing.T) {
		page, err := nav.Open(context.Background(), "https://www.google.com/maps/place/X/data=!4m2!3m1!1s0x1:0x2")
		require.NoError(t, err)
		assert.Equal(t, "Specific", src.PlaceName(page))

		_, vis := nav.EnsurePopularTimes(context.Background(), page)
		assert.Equal(t, VisibilityNotFound, vis)
	})

	t.Run("Default", func(t *testing.T) {
		page, err := nav.Open(context.Background(), "https://www.google.com/maps/place/Other")
		require.NoError(t, err)
		assert.Equal(t, "Test Place", src.PlaceName(page))

		_, consent := nav.DismissConsent(context.Background(), page)
		assert.Equal(t, ConsentNotPresent, consent)
		_, vis := nav.EnsurePopularTimes(context.Background(), page)
		assert.Equal(t, VisibilityVisible, vis)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := NewFixtureNavigator(t.TempDir(), nil).Open(context.Background(), "https://www.google.com/maps/place/Other")
		assert.Error(t, err)
	})
}
