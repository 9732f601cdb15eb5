package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChequeSchedule_RemainderOnFirst(t *testing.T) {
	start := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	cheques := ChequeSchedule("3f0c9a7e-tenant", "p-1", 1000001, 4, 12, start)

	require.Len(t, cheques, 4)
	assert.Equal(t, int64(250001), cheques[0].AmountCents)
	var total int64
	for i, c := range cheques {
		total += c.AmountCents
		assert.Equal(t, ChequePending, c.Status)
		assert.Equal(t, start.AddDate(0, 3*i, 0), c.DueDate)
		if i > 0 {
			assert.Equal(t, int64(250000), c.AmountCents)
		}
	}
	assert.Equal(t, int64(1000001), total)
	assert.Equal(t, "PDC-3f0c9a7e-01", cheques[0].ChequeNumber)
	assert.Equal(t, "PDC-3f0c9a7e-04", cheques[3].ChequeNumber)
}

func TestChequeSchedule_Degenerate(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	single := ChequeSchedule("t", "p", 500, 0, 12, start)
	require.Len(t, single, 1)
	assert.Equal(t, int64(500), single[0].AmountCents)

	monthly := ChequeSchedule("t", "p", 1200, 12, 6, start)
	require.Len(t, monthly, 12)
	assert.Equal(t, start.AddDate(0, 11, 0), monthly[11].DueDate)
}

func TestRetryBackoff(t *testing.T) {
	assert.Zero(t, RetryBackoff(0))
	assert.Equal(t, time.Minute, RetryBackoff(1))
	assert.Equal(t, 5*time.Minute, RetryBackoff(2))
	assert.Equal(t, 25*time.Minute, RetryBackoff(3))
}

func TestNotification_MarkFailed(t *testing.T) {
	n := NewNotification(NotificationWelcome, "a@b.com", "", "Hi", "body", "welcome")
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	n.MarkFailed("timeout", at)
	assert.Equal(t, 1, n.RetryCount)
	require.NotNil(t, n.NextRetryAt)
	assert.Equal(t, at.Add(time.Minute), *n.NextRetryAt)
	assert.True(t, n.CanRetry())

	n.MarkFailed("timeout", at)
	assert.Equal(t, at.Add(5*time.Minute), *n.NextRetryAt)

	n.MarkFailed("timeout", at)
	assert.Equal(t, MaxNotificationRetries, n.RetryCount)
	assert.Nil(t, n.NextRetryAt)
	assert.False(t, n.CanRetry())

	n.MarkFailed("timeout", at)
	assert.Equal(t, MaxNotificationRetries, n.RetryCount)

	n.MarkSent(at)
	assert.Equal(t, NotificationSent, n.Status)
	assert.Empty(t, n.FailureReason)
	assert.Nil(t, n.FailedAt)
}

func TestCanAssign(t *testing.T) {
	for _, target := range Roles() {
		assert.True(t, CanAssign(RoleSuperAdmin, target), "super admin -> %s", target)
	}
	for _, actor := range Roles() {
		if actor == RoleSuperAdmin {
			continue
		}
		assert.False(t, CanAssign(actor, RoleSuperAdmin), "%s -> SUPER_ADMIN", actor)
		assert.True(t, CanAssign(actor, RoleViewer), "%s -> VIEWER", actor)
	}
	assert.False(t, CanAssign(Role("OWNER"), RoleViewer))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" property_manager ")
	assert.True(t, ok)
	assert.Equal(t, RolePropertyManager, r)

	_, ok = ParseRole("landlord")
	assert.False(t, ok)
}

func TestPageRequest_Normalize(t *testing.T) {
	assert.Equal(t, PageRequest{Page: 1, Size: DefaultPageSize}, PageRequest{}.Normalize())
	assert.Equal(t, PageRequest{Page: 2, Size: MaxPageSize}, PageRequest{Page: 2, Size: 500}.Normalize())
	assert.Equal(t, 40, PageRequest{Page: 3, Size: 20}.Offset())

	p := NewPage[string](nil, 0, PageRequest{})
	assert.NotNil(t, p.Items)
	assert.Equal(t, 1, p.Page)

	mapped := MapPage(NewPage([]int{1, 2}, 2, PageRequest{}), func(i int) int { return i * 10 })
	assert.Equal(t, []int{10, 20}, mapped.Items)
	assert.Equal(t, int64(2), mapped.Total)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, LeadNew.CanTransitionTo(LeadQuotationSent))
	assert.False(t, LeadConverted.CanTransitionTo(LeadContacted))
	assert.False(t, LeadLost.Open())
	assert.True(t, LeadContacted.Open())

	assert.True(t, WorkOrderOpen.CanTransitionTo(WorkOrderInProgress))
	assert.False(t, WorkOrderOpen.CanTransitionTo(WorkOrderCompleted))
	assert.False(t, WorkOrderCompleted.CanTransitionTo(WorkOrderCancelled))
}

func TestComplianceFrequency_Next(t *testing.T) {
	due := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	next, ok := FrequencyQuarterly.Next(due)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), next)

	_, ok = FrequencyOneTime.Next(due)
	assert.False(t, ok)
}

func TestQuotation_LeaseEndAndExpiry(t *testing.T) {
	q := &Quotation{
		LeaseStart:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		LeaseMonths: 12,
		ValidUntil:  time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC), q.LeaseEnd())
	assert.False(t, q.ExpiredAt(q.ValidUntil))
	assert.True(t, q.ExpiredAt(q.ValidUntil.Add(time.Second)))
}

func TestUnit_Leasable(t *testing.T) {
	for status, want := range map[UnitStatus]bool{
		UnitVacant:      true,
		UnitReserved:    true,
		UnitOccupied:    false,
		UnitMaintenance: false,
	} {
		assert.Equal(t, want, (&Unit{Status: status}).Leasable(), string(status))
	}
}

func TestDashboardFilter_Previous(t *testing.T) {
	d := func(m time.Month, day int) time.Time { return time.Date(2026, m, day, 0, 0, 0, 0, time.UTC) }

	prev := DashboardFilter{PropertyID: "p-1", From: d(5, 1), To: d(5, 1)}.Previous()
	assert.Equal(t, DashboardFilter{PropertyID: "p-1", From: d(4, 30), To: d(4, 30)}, prev)

	prev = DashboardFilter{From: d(5, 1), To: d(5, 10)}.Previous()
	assert.Equal(t, d(4, 21), prev.From)
	assert.Equal(t, d(4, 30), prev.To)
}
