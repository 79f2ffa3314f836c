package residence

import (
	"context"
	"testing"
	"time"

	"github.com/alamait/backend/internal/domain/residence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newLeaseFixture(t *testing.T) (*LeaseService, *residence.Student) {
	t.Helper()
	student, err := residence.NewStudent("John", "Dube", "john@example.com")
	require.NoError(t, err)
	svc := NewLeaseService(newFakeLeaseRepo(), newFakeStudentRepo(student), zap.NewNop())
	return svc, student
}

func TestLeaseService_Create_ResolvesStudentName(t *testing.T) {
	svc, student := newLeaseFixture(t)

	resp, err := svc.Create(context.Background(), CreateLeaseRequest{
		StudentID:   student.ID,
		ResidenceID: uuid.New(),
		RoomID:      uuid.New(),
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		MonthlyRent: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	assert.Equal(t, "John Dube", resp.StudentName, "name comes from the directory, not the request")
	assert.Equal(t, "draft", resp.Status)
}

func TestLeaseService_Create_UnknownStudent(t *testing.T) {
	svc, _ := newLeaseFixture(t)

	_, err := svc.Create(context.Background(), CreateLeaseRequest{
		StudentID:   uuid.New(),
		ResidenceID: uuid.New(),
		RoomID:      uuid.New(),
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		MonthlyRent: decimal.NewFromInt(200),
	})
	assert.Error(t, err)
}

func TestLeaseService_Lifecycle(t *testing.T) {
	svc, student := newLeaseFixture(t)

	created, err := svc.Create(context.Background(), CreateLeaseRequest{
		StudentID:   student.ID,
		ResidenceID: uuid.New(),
		RoomID:      uuid.New(),
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
		MonthlyRent: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	signed, err := svc.Sign(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "signed", signed.Status)

	active, err := svc.Activate(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", active.Status)

	expired, err := svc.Expire(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "expired", expired.Status)

	_, err = svc.Cancel(context.Background(), created.ID)
	assert.Error(t, err, "expired lease is terminal")
}

func TestLeaseService_List_FiltersByStatus(t *testing.T) {
	svc, student := newLeaseFixture(t)

	for i := 0; i < 2; i++ {
		created, err := svc.Create(context.Background(), CreateLeaseRequest{
			StudentID:   student.ID,
			ResidenceID: uuid.New(),
			RoomID:      uuid.New(),
			StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:     time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
			MonthlyRent: decimal.NewFromInt(200),
		})
		require.NoError(t, err)
		if i == 0 {
			_, err = svc.Sign(context.Background(), created.ID)
			require.NoError(t, err)
		}
	}

	leases, total, err := svc.List(context.Background(), LeaseListFilter{Status: "signed"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, leases, 1)
	assert.Equal(t, "signed", leases[0].Status)

	_, _, err = svc.List(context.Background(), LeaseListFilter{Status: "bogus"})
	assert.Error(t, err)
}
