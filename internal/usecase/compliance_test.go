package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

func TestComplianceService_MarkCompliant(t *testing.T) {
	due := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 28, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency  entity.ComplianceFrequency
		wantStatus entity.ComplianceStatus
		wantDue    time.Time
	}{
		{entity.FrequencyOneTime, entity.ComplianceCompliant, due},
		{entity.FrequencyMonthly, entity.CompliancePending, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)},
		{entity.FrequencyAnnual, entity.CompliancePending, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.frequency), func(t *testing.T) {
			repo := new(MockComplianceRepository)
			svc := NewComplianceService(repo, nil)
			svc.now = func() time.Time { return now }
			c := &entity.ComplianceRequirement{ID: "c-1", Frequency: tt.frequency, DueDate: due, Status: entity.ComplianceNonCompliant}

			repo.On("FindByID", mock.Anything, "c-1").Return(c, nil)
			repo.On("Update", mock.Anything, c).Return(nil)

			out, err := svc.MarkCompliant(context.Background(), Actor{}, "c-1")

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantDue, out.DueDate)
			require.NotNil(t, out.LastCompliantAt)
			assert.Equal(t, now, *out.LastCompliantAt)
		})
	}
}

func TestComplianceService_Create(t *testing.T) {
	repo := new(MockComplianceRepository)
	svc := NewComplianceService(repo, nil)

	_, err := svc.Create(context.Background(), Actor{}, CreateComplianceInput{Name: "Fire safety", Frequency: "weekly", DueDate: "2026-06-01"})
	assert.Equal(t, CodeValidation, ErrorCode(err))

	repo.On("ExistsByName", mock.Anything, "Fire safety", "").Return(true, nil).Once()
	_, err = svc.Create(context.Background(), Actor{}, CreateComplianceInput{Name: " Fire safety ", Frequency: "annual", DueDate: "2026-06-01"})
	assert.Equal(t, CodeDuplicate, ErrorCode(err))

	repo.On("ExistsByName", mock.Anything, "Lift inspection", "").Return(false, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	c, err := svc.Create(context.Background(), Actor{}, CreateComplianceInput{Name: "Lift inspection", Frequency: "quarterly", DueDate: "2026-06-01"})
	require.NoError(t, err)
	assert.Equal(t, entity.FrequencyQuarterly, c.Frequency)
	assert.Equal(t, entity.CompliancePending, c.Status)
}
