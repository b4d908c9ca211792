package merge_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"mzstay/internal/domain"
	"mzstay/internal/merge"
)

func TestPassthroughWhenNoDuplicates(t *testing.T) {
	raw := []domain.Task{
		{ID: "a", Date: "2026-08-28", Title: "WSP1", Status: domain.TaskPendingKeyPhoto},
		{ID: "b", Date: "2026-08-28", Title: "WSP2", Status: domain.TaskCleaning},
		{ID: "c", Date: "2026-08-29", Title: "WSP1", Status: domain.TaskCompleted},
	}
	got := merge.Tasks(raw)
	require.Equal(t, raw, got)
}

func TestEmptyInput(t *testing.T) {
	require.Empty(t, merge.Tasks(nil))
	require.Empty(t, merge.Tasks([]domain.Task{}))
}

func TestBaseIsSmallestID(t *testing.T) {
	raw := []domain.Task{
		{ID: "z9", Date: "2026-08-28", Title: "WSP1", Address: "z addr"},
		{ID: "a1", Date: "2026-08-28", Title: "WSP1", Address: "a addr"},
	}
	got := merge.Tasks(raw)
	require.Len(t, got, 1)
	require.Equal(t, "a1", got[0].ID)
	require.Equal(t, "a addr", got[0].Address)
}

func TestLeastCompleteStatusWins(t *testing.T) {
	cases := []struct {
		name string
		a, b domain.TaskStatus
		want domain.TaskStatus
	}{
		{"pending beats cleaning", domain.TaskPendingKeyPhoto, domain.TaskCleaning, domain.TaskPendingKeyPhoto},
		{"pending beats completed", domain.TaskCompleted, domain.TaskPendingKeyPhoto, domain.TaskPendingKeyPhoto},
		{"cleaning beats completed", domain.TaskCleaning, domain.TaskCompleted, domain.TaskCleaning},
		{"equal stays", domain.TaskCleaning, domain.TaskCleaning, domain.TaskCleaning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := []domain.Task{
				{ID: "a", Date: "d", Title: "p", Status: tc.a},
				{ID: "b", Date: "d", Title: "p", Status: tc.b},
			}
			got := merge.Tasks(raw)
			require.Len(t, got, 1)
			require.Equal(t, tc.want, got[0].Status)
		})
	}
}

func TestTimeSelectionRespectsFlags(t *testing.T) {
	raw := []domain.Task{
		{ID: "a", Date: "d", Title: "p", HasCheckout: true, CheckoutTime: "10:00"},
		{ID: "b", Date: "d", Title: "p", HasCheckout: true, CheckoutTime: "11:30",
			HasCheckin: true, NextCheckinTime: "15:00"},
		{ID: "c", Date: "d", Title: "p", HasCheckin: true, NextCheckinTime: "13:00"},
		// Times on unflagged records never participate.
		{ID: "d", Date: "d", Title: "p", CheckoutTime: "23:59", NextCheckinTime: "00:01"},
	}
	got := merge.Tasks(raw)
	require.Len(t, got, 1)
	require.True(t, got[0].HasCheckout)
	require.True(t, got[0].HasCheckin)
	require.Equal(t, "11:30", got[0].CheckoutTime)
	require.Equal(t, "13:00", got[0].NextCheckinTime)
}

func TestFillFieldsFromAnyMember(t *testing.T) {
	raw := []domain.Task{
		{ID: "a", Date: "d", Title: "p"},
		{ID: "b", Date: "d", Title: "p", Region: "Sydney CBD", GuideURL: "https://guides/p", NewCode: "1111"},
		{ID: "c", Date: "d", Title: "p", NewCode: "2222", MasterCode: "8888"},
	}
	got := merge.Tasks(raw)
	require.Len(t, got, 1)
	require.Equal(t, "Sydney CBD", got[0].Region)
	require.Equal(t, "https://guides/p", got[0].GuideURL)
	require.Equal(t, "1111", got[0].NewCode) // first member with a value
	require.Equal(t, "8888", got[0].MasterCode)
}

func TestCompletionStaysWithBase(t *testing.T) {
	raw := []domain.Task{
		{ID: "b", Date: "d", Title: "p", Status: domain.TaskCompleted,
			CompletedBy: "alice", CompletionNote: "done", KeyPhotoURI: "file:///b.jpg"},
		{ID: "a", Date: "d", Title: "p", Status: domain.TaskPendingKeyPhoto},
	}
	got := merge.Tasks(raw)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].ID)
	// Non-base completion evidence is never synthesized onto the result.
	require.Empty(t, got[0].CompletedBy)
	require.Empty(t, got[0].CompletionNote)
	require.Empty(t, got[0].KeyPhotoURI)
}

func TestDeterministicUnderPermutation(t *testing.T) {
	group := []domain.Task{
		{ID: "a", Date: "d", Title: "p", Status: domain.TaskCompleted,
			HasCheckout: true, CheckoutTime: "10:00", OldCode: "4321"},
		{ID: "b", Date: "d", Title: "p", Status: domain.TaskPendingKeyPhoto,
			HasCheckin: true, NextCheckinTime: "13:00", Region: "Waterloo"},
		{ID: "c", Date: "d", Title: "p", Status: domain.TaskCleaning,
			HasCheckout: true, CheckoutTime: "11:00", MasterCode: "8888"},
	}
	want := merge.Tasks(group)
	require.Len(t, want, 1)
	require.Equal(t, "a", want[0].ID)
	require.Equal(t, domain.TaskPendingKeyPhoto, want[0].Status)
	require.Equal(t, "11:00", want[0].CheckoutTime)
	require.Equal(t, "13:00", want[0].NextCheckinTime)
	require.Equal(t, "Waterloo", want[0].Region)
	require.Equal(t, "8888", want[0].MasterCode)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		shuffled := make([]domain.Task, len(group))
		copy(shuffled, group)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := merge.Tasks(shuffled)
		require.Equal(t, want, got, "permutation %d", i)
	}
}

func TestIdempotent(t *testing.T) {
	raw := []domain.Task{
		{ID: "a", Date: "d", Title: "p", HasCheckout: true, CheckoutTime: "10:00"},
		{ID: "b", Date: "d", Title: "p", HasCheckin: true, NextCheckinTime: "14:00"},
		{ID: "c", Date: "e", Title: "p"},
	}
	once := merge.Tasks(raw)
	twice := merge.Tasks(once)
	require.Equal(t, once, twice)
}

func TestInputNotMutated(t *testing.T) {
	raw := []domain.Task{
		{ID: "b", Date: "d", Title: "p", Status: domain.TaskCompleted},
		{ID: "a", Date: "d", Title: "p", Status: domain.TaskPendingKeyPhoto},
	}
	merge.Tasks(raw)
	require.Equal(t, "b", raw[0].ID)
	require.Equal(t, domain.TaskCompleted, raw[0].Status)
}
