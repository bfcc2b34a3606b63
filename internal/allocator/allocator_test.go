package allocator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLink_SumsToTotal(t *testing.T) {
	t.Parallel()
	for v := 0; v <= 100; v++ {
		p := Link(Primary, float64(v))
		require.Equal(t, float64(v), p.Primary)
		require.Equal(t, float64(100-v), p.Secondary)
		require.Equal(t, Total, p.Sum())

		q := Link(Secondary, float64(v))
		require.Equal(t, float64(v), q.Secondary)
		require.Equal(t, float64(100-v), q.Primary)
	}
}

func TestPair_Balanced(t *testing.T) {
	t.Parallel()
	require.True(t, NewPair(70, 30).Balanced())
	require.True(t, NewPair(0.1, 99.9).Balanced())
	require.False(t, NewPair(70, 40).Balanced())
	require.False(t, NewPair(0, 0).Balanced())
	require.Equal(t, 40.0, NewPair(70, 40).Get(Secondary))
}

func TestLinkedPair_SetValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		side Side
		raw  string
		want Pair
	}{
		{name: "primary 70", side: Primary, raw: "70", want: Pair{Primary: 70, Secondary: 30}},
		{name: "secondary 45", side: Secondary, raw: "45", want: Pair{Primary: 55, Secondary: 45}},
		{name: "fractional", side: Primary, raw: "12.5", want: Pair{Primary: 12.5, Secondary: 87.5}},
		{name: "exactly 100", side: Primary, raw: "100", want: Pair{Primary: 100, Secondary: 0}},
		{name: "secondary 100", side: Secondary, raw: "100", want: Pair{Primary: 0, Secondary: 100}},
		{name: "above range clamps", side: Primary, raw: "150", want: Pair{Primary: 100, Secondary: 0}},
		{name: "negative clamps", side: Primary, raw: "-20", want: Pair{Primary: 0, Secondary: 100}},
		{name: "surrounding spaces", side: Secondary, raw: " 10 ", want: Pair{Primary: 90, Secondary: 10}},
	}

	for _, policy := range []EmptyPolicy{ClampEmpty, RejectEmpty} {
		for _, tt := range tests {
			t.Run(fmt.Sprintf("%s/%s", policy, tt.name), func(t *testing.T) {
				l := NewLinkedPair(Pair{Primary: 50, Secondary: 50}, policy)
				got, err := l.SetValue(tt.side, tt.raw)
				require.NoError(t, err)
				require.Equal(t, tt.want, got)
				require.Equal(t, tt.want, l.Pair())
				require.Equal(t, tt.want.Get(tt.side), got.Get(tt.side))
				require.True(t, got.Balanced())
				require.Equal(t, policy, l.Policy())
				require.True(t, l.Committable())
			})
		}
	}
}

func TestLinkedPair_Idempotent(t *testing.T) {
	t.Parallel()
	l := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, ClampEmpty)
	once, err := l.SetValue(Primary, "33")
	require.NoError(t, err)
	twice, err := l.SetValue(Primary, "33")
	require.NoError(t, err)
	require.Equal(t, once, twice)
}

func TestLinkedPair_SuccessiveEditsOverwrite(t *testing.T) {
	t.Parallel()
	l := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, RejectEmpty)
	_, err := l.SetValue(Primary, "10")
	require.NoError(t, err)
	got, err := l.SetValue(Primary, "20")
	require.NoError(t, err)
	require.Equal(t, Pair{Primary: 20, Secondary: 80}, got)
}

func TestLinkedPair_MemberManagementScenario(t *testing.T) {
	t.Parallel()
	l := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, ClampEmpty)

	got, err := l.SetValue(Primary, "70")
	require.NoError(t, err)
	require.Equal(t, 30.0, got.Secondary)

	got, err = l.SetValue(Secondary, "45")
	require.NoError(t, err)
	require.Equal(t, 55.0, got.Primary)
	require.Equal(t, 45.0, got.Secondary)
}

func TestLinkedPair_EmptyClampPolicy(t *testing.T) {
	t.Parallel()
	l := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, ClampEmpty)

	got, err := l.SetValue(Primary, "")
	require.NoError(t, err)
	require.Equal(t, Pair{Primary: 0, Secondary: 100}, got)
	require.True(t, l.IsEmpty(Primary))
	require.False(t, l.Committable())

	got = l.Blur(Primary)
	require.Equal(t, Pair{Primary: 0, Secondary: 100}, got)
	require.True(t, l.Committable())
}

func TestLinkedPair_EmptyRejectPolicy(t *testing.T) {
	t.Parallel()
	l := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, RejectEmpty)

	got, err := l.SetValue(Secondary, "")
	require.ErrorIs(t, err, ErrEmptyValue)
	require.Equal(t, Pair{Primary: 70, Secondary: 30}, got)
	require.False(t, l.Committable())

	// Leaving the field does not fill it in
	l.Blur(Secondary)
	require.False(t, l.Committable())

	got, err = l.SetValue(Secondary, "25")
	require.NoError(t, err)
	require.Equal(t, Pair{Primary: 75, Secondary: 25}, got)
	require.True(t, l.Committable())
}

func TestLinkedPair_InvalidNumber(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"abc", "NaN", "Inf", "1e"} {
		l := NewLinkedPair(Pair{Primary: 60, Secondary: 40}, ClampEmpty)
		got, err := l.SetValue(Primary, raw)
		require.ErrorIs(t, err, ErrInvalidNumber, raw)
		require.Equal(t, Pair{Primary: 60, Secondary: 40}, got)
	}
}

func TestParseSide(t *testing.T) {
	t.Parallel()
	s, err := ParseSide("Secondary")
	require.NoError(t, err)
	require.Equal(t, Secondary, s)
	require.Equal(t, Primary, s.Other())

	_, err = ParseSide("left")
	require.Error(t, err)
}

func TestStepper_Participation(t *testing.T) {
	t.Parallel()

	s := NewParticipation(300)
	require.Equal(t, 300, s.Value())
	require.False(t, s.CanIncrement())
	require.True(t, s.CanDecrement())

	require.Equal(t, 300, s.Increment())
	require.Equal(t, 290, s.Decrement())

	tests := []struct {
		raw  string
		want int
	}{
		{raw: "", want: 50},
		{raw: "abc", want: 50},
		{raw: "20", want: 50},
		{raw: "1000", want: 300},
		{raw: "120", want: 120},
		{raw: "124", want: 120},
		{raw: "126", want: 130},
		{raw: "99.9", want: 100},
		{raw: "99999999999999999999", want: 300},
		{raw: "-99999999999999999999", want: 50},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, s.SetValue(tt.raw), tt.raw)
	}

	s.SetValue("50")
	require.False(t, s.CanDecrement())
	require.Equal(t, 50, s.Decrement())
}

func TestStepper_NotAffectedByPairs(t *testing.T) {
	t.Parallel()
	participation := NewParticipation(200)
	shares := NewLinkedPair(Pair{Primary: 70, Secondary: 30}, ClampEmpty)

	_, err := shares.SetValue(Primary, "100")
	require.NoError(t, err)
	require.Equal(t, 200, participation.Value())
}

func TestBaseline_ComparesByValue(t *testing.T) {
	t.Parallel()
	b := NewBaseline(Pair{Primary: 70, Secondary: 30})

	require.False(t, b.Changed(Link(Primary, 70)))
	require.True(t, b.Changed(Link(Primary, 60)))

	b.MarkSaved(Link(Primary, 60))
	require.False(t, b.Changed(Pair{Primary: 60, Secondary: 40}))
	require.Equal(t, Pair{Primary: 60, Secondary: 40}, b.Saved())
}
