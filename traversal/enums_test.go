package traversal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnumValues(t *testing.T) {
	tests := []struct {
		value    EnumValue
		enumType string
		name     string
	}{
		{TID, "T", "id"},
		{TLabel, "T", "label"},
		{OrderDesc, "Order", "desc"},
		{ScopeLocal, "Scope", "local"},
		{PopLast, "Pop", "last"},
		{ColumnKeys, "Column", "keys"},
		{DirectionBoth, "Direction", "BOTH"},
		{CardinalitySet, "Cardinality", "set"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.enumType, tt.value.EnumType())
		require.Equal(t, tt.name, tt.value.Name())
	}
}

func TestEnumString(t *testing.T) {
	require.Equal(t, "Order.desc", OrderDesc.String())
	require.Equal(t, "T.id", TID.String())
	require.Equal(t, "Direction.OUT", DirectionOut.String())
}
