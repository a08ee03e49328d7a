package entitlement

import (
	"context"
	"errors"
	"testing"
	"time"

	"oficinagil/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockSubscriptionStore struct {
	mock.Mock
}

func (m *MockSubscriptionStore) FindLatestByTenant(ctx context.Context, tenantID uuid.UUID, statuses []models.SubscriptionStatus) (*models.Subscription, error) {
	args := m.Called(ctx, tenantID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

type MockWorkshopStore struct {
	mock.Mock
}

func (m *MockWorkshopStore) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Workshop, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workshop), args.Error(1)
}

type ResolverTestSuite struct {
	suite.Suite
	subs      *MockSubscriptionStore
	workshops *MockWorkshopStore
	resolver  *Resolver
	tenantID  uuid.UUID
	ctx       context.Context
}

func (suite *ResolverTestSuite) SetupTest() {
	suite.subs = &MockSubscriptionStore{}
	suite.workshops = &MockWorkshopStore{}
	suite.resolver = NewResolver(suite.subs, suite.workshops)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()

	suite.subs.Test(suite.T())
	suite.workshops.Test(suite.T())
}

func (suite *ResolverTestSuite) TearDownTest() {
	suite.subs.AssertExpectations(suite.T())
	suite.workshops.AssertExpectations(suite.T())
}

func TestResolverTestSuite(t *testing.T) {
	suite.Run(t, new(ResolverTestSuite))
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func stringPtr(s string) *string {
	return &s
}

func (suite *ResolverTestSuite) expectSubscription(sub *models.Subscription, err error) {
	suite.subs.On("FindLatestByTenant", mock.Anything, suite.tenantID, []models.SubscriptionStatus{
		models.SubscriptionActive,
		models.SubscriptionTrialing,
	}).Return(sub, err)
}

func (suite *ResolverTestSuite) TestResolve_PaidActiveSubscription() {
	endsAt := time.Now().Add(45 * 24 * time.Hour)
	suite.expectSubscription(&models.Subscription{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		PlanType: models.PlanEssencialMensal,
		Status:   models.SubscriptionActive,
		EndsAt:   timePtr(endsAt),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), "Essencial", status.PlanName)
	assert.True(suite.T(), status.IsActive)
	assert.False(suite.T(), status.IsExpired)
	assert.False(suite.T(), status.InTrial)
	assert.Equal(suite.T(), SourceSubscription, status.Source)
	assert.Equal(suite.T(), 45, status.DaysRemaining)
}

func (suite *ResolverTestSuite) TestResolve_ExpiredTrial() {
	suite.expectSubscription(&models.Subscription{
		ID:          uuid.New(),
		TenantID:    suite.tenantID,
		PlanType:    models.PlanFreeTrialEssencial,
		Status:      models.SubscriptionTrialing,
		TrialEndsAt: timePtr(time.Now().Add(-24 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.False(suite.T(), status.IsActive)
	assert.True(suite.T(), status.IsExpired)
	assert.Equal(suite.T(), 0, status.DaysRemaining)
	assert.Equal(suite.T(), SourceSubscription, status.Source)
}

func (suite *ResolverTestSuite) TestResolve_PremiumTrialTwoDays() {
	suite.expectSubscription(&models.Subscription{
		ID:          uuid.New(),
		TenantID:    suite.tenantID,
		PlanType:    models.PlanPremiumMensal,
		Status:      models.SubscriptionTrialing,
		TrialEndsAt: timePtr(time.Now().Add(48 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), "Premium", status.PlanName)
	assert.True(suite.T(), status.IsActive)
	assert.True(suite.T(), status.InTrial)
	assert.Equal(suite.T(), 2, status.DaysRemaining)
	assert.Equal(suite.T(), SourceSubscription, status.Source)
}

// A record can be past its trial boundary yet within its paid boundary, as
// happens on a mid-trial upgrade. Either live boundary keeps it active.
func (suite *ResolverTestSuite) TestResolve_TrialPassedButPaidPeriodLive() {
	suite.expectSubscription(&models.Subscription{
		ID:          uuid.New(),
		TenantID:    suite.tenantID,
		PlanType:    models.PlanPremiumMensal,
		Status:      models.SubscriptionActive,
		TrialEndsAt: timePtr(time.Now().Add(-48 * time.Hour)),
		EndsAt:      timePtr(time.Now().Add(10 * 24 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.True(suite.T(), status.IsActive)
	assert.False(suite.T(), status.InTrial)
	assert.Equal(suite.T(), 10, status.DaysRemaining)
}

func (suite *ResolverTestSuite) TestResolve_IndefiniteManualGrant() {
	suite.expectSubscription(&models.Subscription{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		PlanType: models.PlanPremiumAnual,
		Status:   models.SubscriptionActive,
		IsManual: true,
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.True(suite.T(), status.IsActive)
	assert.Equal(suite.T(), NoExpirationDays, status.DaysRemaining)
}

// A trialing record with no boundary date violates the data contract; it
// resolves as expired rather than as an indefinite grant.
func (suite *ResolverTestSuite) TestResolve_TrialingWithoutBoundaryFailsClosed() {
	suite.expectSubscription(&models.Subscription{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		PlanType: models.PlanFreeTrialPremium,
		Status:   models.SubscriptionTrialing,
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.False(suite.T(), status.IsActive)
	assert.True(suite.T(), status.IsExpired)
}

// Days remaining use a calendar-day ceiling: 30 hours away is 2 days.
func (suite *ResolverTestSuite) TestResolve_DayCeiling() {
	suite.expectSubscription(&models.Subscription{
		ID:          uuid.New(),
		TenantID:    suite.tenantID,
		PlanType:    models.PlanEssencialMensal,
		Status:      models.SubscriptionTrialing,
		TrialEndsAt: timePtr(time.Now().Add(30 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), 2, status.DaysRemaining)
}

func (suite *ResolverTestSuite) TestResolve_LegacyWorkshopFallback() {
	suite.expectSubscription(nil, nil)
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(&models.Workshop{
		ID:          suite.tenantID,
		Name:        "Oficina do Zé",
		PlanName:    stringPtr("Essencial"),
		TrialEndsAt: timePtr(time.Now().Add(5 * 24 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), SourceLegacyWorkshop, status.Source)
	assert.True(suite.T(), status.IsActive)
	assert.Equal(suite.T(), "Essencial", status.PlanName)
	assert.Equal(suite.T(), 5, status.DaysRemaining)
}

func (suite *ResolverTestSuite) TestResolve_LegacyWorkshopExpiredTrial() {
	suite.expectSubscription(nil, nil)
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(&models.Workshop{
		ID:          suite.tenantID,
		Name:        "Oficina do Zé",
		TrialEndsAt: timePtr(time.Now().Add(-5 * 24 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), SourceLegacyWorkshop, status.Source)
	assert.False(suite.T(), status.IsActive)
	assert.True(suite.T(), status.IsExpired)
	assert.Equal(suite.T(), "Free", status.PlanName)
}

func (suite *ResolverTestSuite) TestResolve_NoRecordsDefaultsToFree() {
	suite.expectSubscription(nil, nil)
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(nil, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), "Free", status.PlanName)
	assert.False(suite.T(), status.IsActive)
	assert.True(suite.T(), status.IsExpired)
	assert.Equal(suite.T(), 0, status.DaysRemaining)
	assert.Equal(suite.T(), SourceNone, status.Source)
}

// A legacy workshop row without a trial boundary carries no plan signal and
// resolution continues to the Free default.
func (suite *ResolverTestSuite) TestResolve_LegacyWorkshopWithoutTrialIgnored() {
	suite.expectSubscription(nil, nil)
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(&models.Workshop{
		ID:   suite.tenantID,
		Name: "Oficina do Zé",
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), SourceNone, status.Source)
}

func (suite *ResolverTestSuite) TestResolve_SubscriptionErrorFallsToLegacy() {
	suite.expectSubscription(nil, errors.New("connection refused"))
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(&models.Workshop{
		ID:          suite.tenantID,
		Name:        "Oficina do Zé",
		PlanName:    stringPtr("Premium"),
		TrialEndsAt: timePtr(time.Now().Add(24 * time.Hour)),
	}, nil)

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), SourceLegacyWorkshop, status.Source)
	assert.True(suite.T(), status.IsActive)
}

// Store failures never escape the resolver: both stores erroring still
// yields the conservative Free default.
func (suite *ResolverTestSuite) TestResolve_AllStoresFailing() {
	suite.expectSubscription(nil, errors.New("connection refused"))
	suite.workshops.On("FindByTenant", mock.Anything, suite.tenantID).Return(nil, errors.New("connection refused"))

	status := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), SourceNone, status.Source)
	assert.False(suite.T(), status.IsActive)
}

func (suite *ResolverTestSuite) TestResolve_Idempotent() {
	endsAt := time.Now().Add(20 * 24 * time.Hour)
	suite.subs.On("FindLatestByTenant", mock.Anything, suite.tenantID, mock.Anything).Return(&models.Subscription{
		ID:       uuid.New(),
		TenantID: suite.tenantID,
		PlanType: models.PlanPremiumMensal,
		Status:   models.SubscriptionActive,
		EndsAt:   timePtr(endsAt),
	}, nil).Twice()

	first := suite.resolver.Resolve(suite.ctx, suite.tenantID)
	second := suite.resolver.Resolve(suite.ctx, suite.tenantID)

	assert.Equal(suite.T(), first, second)
}

func TestDaysUntil(t *testing.T) {
	now := time.Now()

	assert.Equal(t, 2, daysUntil(now, now.Add(30*time.Hour)))
	assert.Equal(t, 1, daysUntil(now, now.Add(12*time.Hour)))
	assert.Equal(t, 0, daysUntil(now, now.Add(-time.Hour)))
	assert.Equal(t, 30, daysUntil(now, now.Add(30*24*time.Hour)))
}
