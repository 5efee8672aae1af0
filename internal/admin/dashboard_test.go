package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"supplier-portal/internal/common/logger"
	"supplier-portal/internal/common/session"
	"supplier-portal/internal/models"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) AdminDashboard(ctx context.Context, rangeDays int) (*models.DashboardStats, error) {
	args := m.Called(ctx, rangeDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DashboardStats), args.Error(1)
}

func TestNormalizeRange(t *testing.T) {
	tests := map[int]int{
		-5:   30,
		0:    30,
		1:    7,
		7:    7,
		8:    30,
		30:   30,
		31:   90,
		90:   90,
		200:  365,
		365:  365,
		1000: 365,
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeRange(in), "NormalizeRange(%d)", in)
	}
}

func TestStats_UsesNormalizedRange(t *testing.T) {
	api := &MockAPI{}
	api.On("AdminDashboard", mock.Anything, 90).Return(&models.DashboardStats{RangeDays: 90, TotalSuppliers: 12}, nil).Once()

	stats, err := NewDashboard(api, nil, logger.NewTestLogger(t)).Stats(context.Background(), 45)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalSuppliers)
	api.AssertExpectations(t)
}

func TestStats_RequiresAdminSession(t *testing.T) {
	ctx := context.Background()
	sess := session.New(session.NewMemoryStore())
	api := &MockAPI{}
	d := NewDashboard(api, sess, nil)

	_, err := d.Stats(ctx, 30)
	assert.ErrorIs(t, err, ErrNotAdmin)

	require.NoError(t, sess.SaveLogin(ctx, &models.AuthResponse{Token: "t", UserType: models.UserTypeSupplier}))
	_, err = d.Stats(ctx, 30)
	assert.ErrorIs(t, err, ErrNotAdmin)
	api.AssertNotCalled(t, "AdminDashboard", mock.Anything, mock.Anything)

	require.NoError(t, sess.SaveLogin(ctx, &models.AuthResponse{Token: "t", UserType: models.UserTypeAdmin}))
	api.On("AdminDashboard", mock.Anything, 30).Return(&models.DashboardStats{RangeDays: 30}, nil).Once()
	stats, err := d.Stats(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 30, stats.RangeDays)
}

func TestStats_PropagatesAPIError(t *testing.T) {
	api := &MockAPI{}
	api.On("AdminDashboard", mock.Anything, 7).Return(nil, errors.New("HTTP error 500"))

	_, err := NewDashboard(api, nil, nil).Stats(context.Background(), 7)
	assert.EqualError(t, err, "HTTP error 500")
}
