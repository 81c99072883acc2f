package layout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultGeometry(t *testing.T) {
	g := Default()
	require.NoError(t, g.Validate())
	require.Equal(t, int64(256<<20), g.TotalSize)
	require.Equal(t, int64(56<<20), g.MetaSize)
	require.Equal(t, int64(1<<20), g.BlockSize)
	require.Equal(t, int64(200), g.BlockCount())
}

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name string
		geo  Geometry
	}{
		{"zero value", Geometry{}},
		{"negative total", Geometry{TotalSize: -1, MetaSize: 10, BlockSize: 1}},
		{"meta exceeds total", Geometry{TotalSize: 100, MetaSize: 100, BlockSize: 10}},
		{"data region not block aligned", Geometry{TotalSize: 1050, MetaSize: 1000, BlockSize: 17}},
		{"meta too small for bitmap", Geometry{TotalSize: 2048, MetaSize: 2, BlockSize: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, tt.geo.Validate(), ErrInvalidGeometry)
		})
	}
}

func TestBlockOffset(t *testing.T) {
	g := Geometry{TotalSize: 16384, MetaSize: 8192, BlockSize: 1024}
	require.NoError(t, g.Validate())
	require.Equal(t, int64(8), g.BlockCount())
	require.Equal(t, int64(8192), g.BlockOffset(0))
	require.Equal(t, int64(8192+3*1024), g.BlockOffset(3))
}

func TestBlocksNeeded(t *testing.T) {
	g := Geometry{TotalSize: 16384, MetaSize: 8192, BlockSize: 1024}
	require.Equal(t, int64(0), g.BlocksNeeded(0))
	require.Equal(t, int64(1), g.BlocksNeeded(1))
	require.Equal(t, int64(1), g.BlocksNeeded(1024))
	require.Equal(t, int64(2), g.BlocksNeeded(1025))
}
