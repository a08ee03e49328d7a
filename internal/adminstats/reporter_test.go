package adminstats

import (
	"context"
	"errors"
	"testing"
	"time"

	"oficinagil/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockUserCounter struct {
	mock.Mock
}

func (m *MockUserCounter) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserCounter) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

type MockSubscriptionCounter struct {
	mock.Mock
}

func (m *MockSubscriptionCounter) CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

type ReporterTestSuite struct {
	suite.Suite
	users    *MockUserCounter
	subs     *MockSubscriptionCounter
	reporter *Reporter
	ctx      context.Context
}

func (suite *ReporterTestSuite) SetupTest() {
	suite.users = &MockUserCounter{}
	suite.subs = &MockSubscriptionCounter{}
	suite.reporter = NewReporter(suite.users, suite.subs)
	suite.ctx = context.Background()

	suite.users.Test(suite.T())
	suite.subs.Test(suite.T())
}

func (suite *ReporterTestSuite) TearDownTest() {
	suite.users.AssertExpectations(suite.T())
	suite.subs.AssertExpectations(suite.T())
}

func TestReporterTestSuite(t *testing.T) {
	suite.Run(t, new(ReporterTestSuite))
}

func (suite *ReporterTestSuite) TestGetStats_AllCountsSucceed() {
	suite.users.On("CountAll", mock.Anything).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).Return(12, nil).Once()

	stats := suite.reporter.GetStats(suite.ctx)

	assert.Equal(suite.T(), 120, stats.TotalUsers)
	assert.Equal(suite.T(), 45, stats.ActiveSubscriptions)
	assert.Equal(suite.T(), 12, stats.TrialingUsers)
	assert.Equal(suite.T(), 9, stats.NewUsersThisMonth)
	assert.WithinDuration(suite.T(), time.Now(), stats.CollectedAt, 5*time.Second)
}

// The second call inside the cache window must not hit the stores again:
// every expectation above is .Once().
func (suite *ReporterTestSuite) TestGetStats_ServesFromCache() {
	suite.users.On("CountAll", mock.Anything).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).Return(12, nil).Once()

	first := suite.reporter.GetStats(suite.ctx)
	second := suite.reporter.GetStats(suite.ctx)

	assert.Equal(suite.T(), first, second)
}

// One failing metric is zero-filled after its retries; the other three keep
// their real values.
func (suite *ReporterTestSuite) TestGetStats_PartialFailureZeroFills() {
	suite.users.On("CountAll", mock.Anything).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).
		Return(0, errors.New("connection refused")).Times(extraAttempts + 1)

	stats := suite.reporter.GetStats(suite.ctx)

	assert.Equal(suite.T(), 120, stats.TotalUsers)
	assert.Equal(suite.T(), 45, stats.ActiveSubscriptions)
	assert.Equal(suite.T(), 0, stats.TrialingUsers)
	assert.Equal(suite.T(), 9, stats.NewUsersThisMonth)
}

func (suite *ReporterTestSuite) TestGetStats_TransientFailureRecovers() {
	suite.users.On("CountAll", mock.Anything).Return(0, errors.New("timeout")).Once()
	suite.users.On("CountAll", mock.Anything).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).Return(12, nil).Once()

	stats := suite.reporter.GetStats(suite.ctx)

	assert.Equal(suite.T(), 120, stats.TotalUsers)
}

// A Refresh arriving while another pass is in flight returns immediately
// instead of queueing a second pass.
func (suite *ReporterTestSuite) TestRefresh_ConcurrentCallIsNoOp() {
	started := make(chan struct{})
	release := make(chan struct{})

	suite.users.On("CountAll", mock.Anything).Run(func(args mock.Arguments) {
		close(started)
		<-release
	}).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).Return(12, nil).Once()

	done := make(chan struct{})
	go func() {
		suite.reporter.Refresh(suite.ctx)
		close(done)
	}()

	<-started
	// In-flight pass holds the lock; this call must not block or re-count.
	suite.reporter.Refresh(suite.ctx)
	close(release)
	<-done

	stats := suite.reporter.GetStats(suite.ctx)
	assert.Equal(suite.T(), 120, stats.TotalUsers)
}

func (suite *ReporterTestSuite) TestRefresh_WarmsTheCache() {
	suite.users.On("CountAll", mock.Anything).Return(120, nil).Once()
	suite.users.On("CountCreatedSince", mock.Anything, mock.Anything).Return(9, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionActive).Return(45, nil).Once()
	suite.subs.On("CountByStatus", mock.Anything, models.SubscriptionTrialing).Return(12, nil).Once()

	suite.reporter.Refresh(suite.ctx)
	stats := suite.reporter.GetStats(suite.ctx)

	assert.Equal(suite.T(), 120, stats.TotalUsers)
	assert.Equal(suite.T(), 12, stats.TrialingUsers)
}
