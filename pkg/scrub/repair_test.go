package scrub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		width      int
		wantStatus RepairStatus
		want       []string
	}{
		{
			name:       "embedded nickname",
			raw:        `"Robert "Bob" Smith",(202) 555-1212`,
			width:      2,
			wantStatus: RepairRepaired,
			want:       []string{`Robert Bob" Smith"`, "(202) 555-1212"},
		},
		{
			name:       "broken quote with trailing empty field",
			raw:        `"Paris, France","Broken " quotes",`,
			width:      3,
			wantStatus: RepairRepaired,
			want:       []string{"Paris, France", `Broken  quotes"`, ""},
		},
		{
			name:       "two broken fields in one record",
			raw:        `"a "b" c","d "e" f",g`,
			width:      3,
			wantStatus: RepairRepaired,
			want:       []string{`a b" c"`, `d e" f"`, "g"},
		},
		{
			name:       "delimiter inside the fold stays a separator",
			raw:        `"a "b,c"`,
			width:      2,
			wantStatus: RepairRepaired,
			want:       []string{"a b", `c"`},
		},
		{
			name:       "no lone quote means nothing to merge",
			raw:        "1,2",
			width:      3,
			wantStatus: RepairUnchanged,
		},
		{
			name:       "well formed quotes are not an anomaly",
			raw:        `"a ""b""",c`,
			width:      3,
			wantStatus: RepairUnchanged,
		},
		{
			name:       "folding overshoots the width",
			raw:        `"a "b" c",d`,
			width:      3,
			wantStatus: RepairUnsalvageable,
		},
		{
			name:       "folding cannot add fields",
			raw:        `"a "b",c`,
			width:      4,
			wantStatus: RepairUnsalvageable,
		},
		{
			name:       "unterminated quote",
			raw:        `"a "b","c`,
			width:      2,
			wantStatus: RepairUnsalvageable,
		},
		{
			name:       "more than one record",
			raw:        "\"a \"b\"\nc",
			width:      1,
			wantStatus: RepairUnsalvageable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair([]byte(tt.raw), tt.width, DefaultDialect())
			require.Equal(t, tt.wantStatus, got.Status)
			if tt.wantStatus != RepairRepaired {
				assert.Nil(t, got.Record)
				return
			}
			require.NotNil(t, got.Record)
			assert.Equal(t, tt.want, got.Record.Strings())
			assert.Equal(t, tt.raw, string(got.Record.Raw()))
		})
	}
}

func TestRepair_CustomDialect(t *testing.T) {
	d := Dialect{Delimiter: ';', Quote: '\''}
	got := Repair([]byte(`'it 'was' fine';x`), 2, d)
	require.Equal(t, RepairRepaired, got.Status)
	assert.Equal(t, []string{"it was' fine'", "x"}, got.Record.Strings())
	assert.True(t, got.Record.Field(0).Quoted)
	assert.False(t, got.Record.Field(1).Quoted)
}

func TestRepair_DoesNotRetainInput(t *testing.T) {
	raw := []byte(`"a "b" c",d`)
	got := Repair(raw, 2, DefaultDialect())
	require.Equal(t, RepairRepaired, got.Status)

	for i := range raw {
		raw[i] = 'z'
	}
	assert.Equal(t, []string{`a b" c"`, "d"}, got.Record.Strings())
	assert.Equal(t, `"a "b" c",d`, string(got.Record.Raw()))
}

func TestRepairStatus_String(t *testing.T) {
	assert.Equal(t, "unchanged", RepairUnchanged.String())
	assert.Equal(t, "repaired", RepairRepaired.String())
	assert.Equal(t, "unsalvageable", RepairUnsalvageable.String())
	assert.Equal(t, "RepairStatus(9)", RepairStatus(9).String())
}
