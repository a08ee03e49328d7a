package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"oficinagil/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var workshopRowColumns = []string{"id", "name", "phone", "status", "plan_name", "trial_ends_at", "created_at", "updated_at"}

type WorkshopRepoTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	repo     WorkshopRepository
	tenantID uuid.UUID
	context  context.Context
}

func (suite *WorkshopRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewWorkshopRepo(mock)
	suite.tenantID = uuid.New()
	suite.context = context.Background()
}

func (suite *WorkshopRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestWorkshopRepoTestSuite(t *testing.T) {
	suite.Run(t, new(WorkshopRepoTestSuite))
}

func stringPtr(s string) *string {
	return &s
}

func (suite *WorkshopRepoTestSuite) TestCreate_Success() {
	trialEndsAt := time.Now().Add(7 * 24 * time.Hour)
	workshop := &models.Workshop{
		ID:          suite.tenantID,
		Name:        "Oficina do Zé",
		Phone:       stringPtr("+55 11 91234-5678"),
		Status:      "active",
		TrialEndsAt: &trialEndsAt,
	}

	suite.mock.ExpectExec(`INSERT INTO workshops \(id, name, phone, status, plan_name, trial_ends_at, created_at, updated_at\)`).
		WithArgs(workshop.ID, workshop.Name, workshop.Phone, workshop.Status, workshop.PlanName, workshop.TrialEndsAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, workshop)
	assert.NoError(suite.T(), err)
}

func (suite *WorkshopRepoTestSuite) TestFindByTenant_Success() {
	trialEndsAt := time.Now().Add(3 * 24 * time.Hour)
	createdAt := time.Now().Add(-10 * 24 * time.Hour)

	rows := pgxmock.NewRows(workshopRowColumns).
		AddRow(suite.tenantID, "Oficina do Zé", stringPtr("+55 11 91234-5678"), "active",
			stringPtr("Premium"), &trialEndsAt, createdAt, createdAt)

	suite.mock.ExpectQuery(`SELECT id, name, phone, status, plan_name, trial_ends_at, created_at, updated_at
		FROM workshops
		WHERE id = \$1`).
		WithArgs(suite.tenantID).
		WillReturnRows(rows)

	result, err := suite.repo.FindByTenant(suite.context, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), result)
	assert.Equal(suite.T(), "Oficina do Zé", result.Name)
	assert.Equal(suite.T(), "Premium", *result.PlanName)
	assert.NotNil(suite.T(), result.TrialEndsAt)
}

// A tenant without a legacy workshop row resolves to nil, nil so the plan
// resolver can fall through to the Free default.
func (suite *WorkshopRepoTestSuite) TestFindByTenant_NotFound() {
	suite.mock.ExpectQuery(`FROM workshops`).
		WithArgs(suite.tenantID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.FindByTenant(suite.context, suite.tenantID)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *WorkshopRepoTestSuite) TestFindByTenant_DatabaseError() {
	suite.mock.ExpectQuery(`FROM workshops`).
		WithArgs(suite.tenantID).
		WillReturnError(errors.New("database connection failed"))

	result, err := suite.repo.FindByTenant(suite.context, suite.tenantID)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), result)
}

func (suite *WorkshopRepoTestSuite) TestUpdate_Success() {
	workshop := &models.Workshop{
		ID:       suite.tenantID,
		Name:     "Oficina do Zé Renovada",
		Phone:    stringPtr("+55 11 98765-4321"),
		Status:   "active",
		PlanName: stringPtr("Essencial"),
	}

	suite.mock.ExpectExec(`UPDATE workshops
		SET name = \$1, phone = \$2, status = \$3, plan_name = \$4, trial_ends_at = \$5, updated_at = NOW\(\)
		WHERE id = \$6`).
		WithArgs(workshop.Name, workshop.Phone, workshop.Status, workshop.PlanName, workshop.TrialEndsAt, workshop.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, workshop)
	assert.NoError(suite.T(), err)
}

func (suite *WorkshopRepoTestSuite) TestCountAll_Success() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM workshops`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(17))

	count, err := suite.repo.CountAll(suite.context)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 17, count)
}
