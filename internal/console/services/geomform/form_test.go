package geomform_test

import (
	"testing"

	"github.com/Leopold1975/gis_console/internal/console/domain/models"
	"github.com/Leopold1975/gis_console/internal/console/services/geomform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitFoldsMetadata(t *testing.T) {
	cases := []struct {
		name   string
		fields []geomform.Field
		want   map[string]string
	}{
		{"no rows", nil, map[string]string{}},
		{"empty key dropped", []geomform.Field{{Key: "", Value: "lost"}, {Key: "zone", Value: "A"}},
			map[string]string{"zone": "A"}},
		{"last duplicate wins", []geomform.Field{{Key: "k", Value: "1"}, {Key: "k", Value: "2"}},
			map[string]string{"k": "2"}},
		{"empty value kept", []geomform.Field{{Key: "owner", Value: ""}}, map[string]string{"owner": ""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := geomform.New(models.GeometryPoint)
			f.Name = "well"

			for i, fld := range tc.fields {
				f.AddField()
				require.NoError(t, f.SetField(i, fld.Key, fld.Value))
			}

			sub, err := f.Submit()
			require.NoError(t, err)
			assert.Equal(t, tc.want, sub.Metadata)
			assert.Equal(t, "well", sub.Name)
		})
	}
}

func TestSubmitRequiresName(t *testing.T) {
	f := geomform.New(models.GeometryPolygon)
	f.Name = "   "

	_, err := f.Submit()
	require.ErrorIs(t, err, geomform.ErrNameRequired)
}

func TestRemoveFieldKeepsOrder(t *testing.T) {
	f := geomform.New(models.GeometryLineString)
	f.Name = "road"

	for i, k := range []string{"a", "b", "c"} {
		f.AddField()
		require.NoError(t, f.SetField(i, k, k))
	}

	require.NoError(t, f.RemoveField(1))
	assert.Equal(t, []geomform.Field{{Key: "a", Value: "a"}, {Key: "c", Value: "c"}}, f.Fields)

	require.ErrorIs(t, f.RemoveField(5), geomform.ErrNoSuchField)
	require.ErrorIs(t, f.SetField(-1, "x", "y"), geomform.ErrNoSuchField)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Add Polygon Details", geomform.New(models.GeometryPolygon).Title())
}
