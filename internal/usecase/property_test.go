package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

func TestPropertyService_Create(t *testing.T) {
	repo := new(MockPropertyRepository)
	sink := &recordingSink{}
	svc := NewPropertyService(repo, NewAuditLogger(sink, nil))

	repo.On("ExistsByName", mock.Anything, "Marina Heights", "").Return(false, nil)
	repo.On("ExistsByCode", mock.Anything, "MH-01", "").Return(false, nil)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*entity.Property")).Return(nil)

	p, err := svc.Create(context.Background(), Actor{UserID: "admin"}, CreatePropertyInput{
		Code: "mh-01",
		Name: "Marina Heights",
		Type: "residential",
		City: "Dubai",
	})

	require.NoError(t, err)
	assert.Equal(t, "MH-01", p.Code)
	assert.Equal(t, entity.PropertyResidential, p.Type)
	assert.Equal(t, []string{"PROPERTY_CREATED"}, sink.actions())
}

func TestPropertyService_Create_DuplicateName(t *testing.T) {
	repo := new(MockPropertyRepository)
	svc := NewPropertyService(repo, nil)
	repo.On("ExistsByName", mock.Anything, "Marina Heights", "").Return(true, nil)

	_, err := svc.Create(context.Background(), Actor{}, CreatePropertyInput{
		Code: "MH-01",
		Name: "Marina Heights",
		Type: "RESIDENTIAL",
		City: "Dubai",
	})

	assert.Equal(t, CodeDuplicate, ErrorCode(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPropertyService_Delete_BlockedByOccupiedUnits(t *testing.T) {
	repo := new(MockPropertyRepository)
	svc := NewPropertyService(repo, nil)
	p := &entity.Property{ID: "p-1", Name: "Marina Heights"}

	repo.On("FindByID", mock.Anything, "p-1").Return(p, nil)
	repo.On("CountUnitsByStatus", mock.Anything, "p-1", entity.UnitOccupied).Return(2, nil).Once()

	err := svc.Delete(context.Background(), Actor{UserID: "admin"}, "p-1")
	assert.Equal(t, CodeInvalidState, ErrorCode(err))
	assert.False(t, p.Deleted)

	repo.On("CountUnitsByStatus", mock.Anything, "p-1", entity.UnitOccupied).Return(0, nil)
	repo.On("Update", mock.Anything, p).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), Actor{UserID: "admin"}, "p-1"))
	assert.True(t, p.Deleted)
	assert.Equal(t, "admin", p.DeletedBy)
}

func TestPropertyService_AddUnit(t *testing.T) {
	repo := new(MockPropertyRepository)
	svc := NewPropertyService(repo, nil)
	p := &entity.Property{ID: "p-1", Name: "Marina Heights", TotalUnits: 3}

	repo.On("FindByID", mock.Anything, "p-1").Return(p, nil)
	repo.On("UnitNumberExists", mock.Anything, "p-1", "1204").Return(false, nil)
	repo.On("UnitNumberExists", mock.Anything, "p-1", "801").Return(true, nil)
	repo.On("CreateUnit", mock.Anything, mock.AnythingOfType("*entity.Unit")).Return(nil)
	repo.On("Update", mock.Anything, p).Return(nil)

	u, err := svc.AddUnit(context.Background(), Actor{}, "p-1", AddUnitInput{UnitNumber: " 1204 ", Bedrooms: 2, AnnualRentCents: 9500000})
	require.NoError(t, err)
	assert.Equal(t, "1204", u.UnitNumber)
	assert.Equal(t, entity.UnitVacant, u.Status)
	assert.Equal(t, 4, p.TotalUnits)

	_, err = svc.AddUnit(context.Background(), Actor{}, "p-1", AddUnitInput{UnitNumber: "801"})
	assert.Equal(t, CodeDuplicate, ErrorCode(err))

	_, err = svc.AddUnit(context.Background(), Actor{}, "p-1", AddUnitInput{UnitNumber: "9", Bedrooms: -1})
	assert.Equal(t, CodeValidation, ErrorCode(err))
}

func TestPropertyService_SetUnitStatus(t *testing.T) {
	tests := []struct {
		name    string
		current entity.UnitStatus
		next    entity.UnitStatus
		code    string
	}{
		{"vacant to maintenance", entity.UnitVacant, entity.UnitMaintenance, ""},
		{"maintenance back to vacant", entity.UnitMaintenance, entity.UnitVacant, ""},
		{"occupied unit is locked", entity.UnitOccupied, entity.UnitMaintenance, CodeInvalidState},
		{"occupancy comes from tenants", entity.UnitVacant, entity.UnitOccupied, CodeInvalidState},
		{"unknown status", entity.UnitVacant, entity.UnitStatus("DEMOLISHED"), CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockPropertyRepository)
			svc := NewPropertyService(repo, nil)
			u := &entity.Unit{ID: "u-1", UnitNumber: "801", Status: tt.current}

			repo.On("FindUnitByID", mock.Anything, "u-1").Return(u, nil)
			repo.On("UpdateUnit", mock.Anything, u).Return(nil)

			out, err := svc.SetUnitStatus(context.Background(), Actor{}, "u-1", tt.next)

			if tt.code != "" {
				assert.Equal(t, tt.code, ErrorCode(err))
				assert.Equal(t, tt.current, u.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.next, out.Status)
		})
	}
}
