package hubs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wastehub/internal/common"
	"github.com/dmitrijs2005/wastehub/internal/server/models"
)

func TestDefault_LoadsEmbeddedRegistry(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	list := reg.List()
	require.Len(t, list, 3)
	assert.Equal(t, "hub-central", list[0].ID)
	assert.Equal(t, "hub-ewaste", list[1].ID)
	assert.Equal(t, "hub-north", list[2].ID)

	h, err := reg.Get("hub-central")
	require.NoError(t, err)
	assert.Equal(t, "Central Recycling Hub", h.Name)
	assert.Equal(t, "Riverside", h.Location.City)
	assert.True(t, h.Accepts(models.WasteMetal))
}

func TestRate_Lookup(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	tests := []struct {
		name  string
		hub   string
		waste models.WasteType
		want  string
	}{
		{"global table", "hub-central", models.WasteMetal, "4"},
		{"hub override", "hub-ewaste", models.WasteElectronic, "6"},
		{"fractional override", "hub-north", models.WasteOrganic, "0.75"},
		{"global fractional", "hub-central", models.WasteGlass, "1.5"},
		{"unmapped material uses default", "hub-central", models.WasteType("rubber"), "1"},
		{"unknown hub falls back to global", "hub-nowhere", models.WastePlastic, "2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, decimal.RequireFromString(tt.want).Equal(reg.Rate(tt.hub, tt.waste)),
				"got %s", reg.Rate(tt.hub, tt.waste))
		})
	}
}

func TestGet_UnknownHub(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	_, err = reg.Get("hub-missing")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad toml", `[[hubs]`},
		{"missing id", "[[hubs]]\nname = \"x\"\n"},
		{"duplicate id", "[[hubs]]\nid = \"a\"\n[[hubs]]\nid = \"a\"\n"},
		{"negative rate", "[rates]\nmetal = -1.0\n"},
		{"negative hub rate", "[[hubs]]\nid = \"a\"\n[hubs.rates]\nmetal = -2.0\n"},
		{"negative default", "default_rate = -0.5\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
		})
	}
}

func TestLoad_CustomDefaultRate(t *testing.T) {
	reg, err := Load(strings.NewReader("default_rate = 0.25\n[[hubs]]\nid = \"solo\"\nname = \"Solo\"\n"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.25").Equal(reg.DefaultRate()))
	assert.True(t, decimal.RequireFromString("0.25").Equal(reg.Rate("solo", models.WasteMetal)))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubs.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[hubs]]\nid = \"file-hub\"\naccepted = [\"Paper\"]\n"), 0o600))

	reg, err := LoadFile(path)
	require.NoError(t, err)
	h, err := reg.Get("file-hub")
	require.NoError(t, err)
	assert.Equal(t, []models.WasteType{models.WastePaper}, h.Accepted)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}
