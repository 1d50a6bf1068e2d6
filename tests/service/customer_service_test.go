package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wm-metals/trade-api/internal/domain"
	"github.com/wm-metals/trade-api/internal/realtime"
	"github.com/wm-metals/trade-api/internal/repository"
	"github.com/wm-metals/trade-api/internal/service"
	"github.com/wm-metals/trade-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCustomerServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createCustomerService(db *gorm.DB) *service.CustomerService {
	customerRepo := repository.NewCustomerRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	hub := realtime.NewHub(zap.NewNop())
	logger := zap.NewNop()

	return service.NewCustomerService(db, customerRepo, opportunityRepo, hub, logger)
}

func TestCustomerService_Create(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	req := &domain.CreateCustomerRequest{
		Name:          "Norte Metais",
		Document:      "12345678000190",
		Email:         "contato@nortemetais.example",
		Phone:         "11987654321",
		Address:       "Av. Industrial 100",
		City:          "Sao Paulo",
		State:         "SP",
		PostalCode:    "01000-000",
		ContactPerson: "Maria Silva",
		Segment:       "steel",
	}

	customer, err := svc.Create(ctx, req)
	assert.NoError(t, err)
	assert.NotNil(t, customer)
	assert.NotEqual(t, uuid.Nil, customer.ID)
	assert.Equal(t, req.Name, customer.Name)
	assert.Equal(t, domain.CustomerStatusProspect, customer.Status)
	assert.Equal(t, domain.CustomerSegmentSteel, customer.Segment)
	assert.Equal(t, 100, customer.QualityScore)
}

func TestCustomerService_Create_OpensFirstContactOpportunity(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	customer, err := svc.Create(ctx, &domain.CreateCustomerRequest{Name: "Aluminio Sul"})
	require.NoError(t, err)

	var opportunities []domain.Opportunity
	err = db.Where("customer_id = ?", customer.ID).Find(&opportunities).Error
	require.NoError(t, err)
	require.Len(t, opportunities, 1)
	assert.Equal(t, "First contact - Aluminio Sul", opportunities[0].Title)
	assert.Equal(t, domain.OpportunityStageProspecting, opportunities[0].Stage)
}

func TestCustomerService_Update_StatusTransitions(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	customer, err := svc.Create(ctx, &domain.CreateCustomerRequest{Name: "Cobre Oeste"})
	require.NoError(t, err)

	t.Run("valid transition", func(t *testing.T) {
		status := "qualified"
		updated, err := svc.Update(ctx, customer.ID, &domain.UpdateCustomerRequest{Status: &status})
		assert.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusQualified, updated.Status)
	})

	t.Run("skipping a stage is rejected", func(t *testing.T) {
		status := "customer"
		_, err := svc.Update(ctx, customer.ID, &domain.UpdateCustomerRequest{Status: &status})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		status := "qualified"
		updated, err := svc.Update(ctx, customer.ID, &domain.UpdateCustomerRequest{Status: &status})
		assert.NoError(t, err)
		assert.Equal(t, domain.CustomerStatusQualified, updated.Status)
	})
}

func TestCustomerService_Update_RecomputesQualityScore(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	customer, err := svc.Create(ctx, &domain.CreateCustomerRequest{Name: "Sucata Leste"})
	require.NoError(t, err)
	assert.Equal(t, 20, customer.QualityScore)

	email := "vendas@sucataleste.example"
	phone := "11912345678"
	updated, err := svc.Update(ctx, customer.ID, &domain.UpdateCustomerRequest{Email: &email, Phone: &phone})
	assert.NoError(t, err)
	assert.Equal(t, 50, updated.QualityScore)
}

func TestCustomerService_List(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	names := []string{"Metal Prime", "Metal Forte", "Ligas Brasil"}
	for _, name := range names {
		_, err := svc.Create(ctx, &domain.CreateCustomerRequest{Name: name})
		require.NoError(t, err)
	}

	customers, total, err := svc.List(ctx, 1, 20, "", "", "")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(3))
	assert.GreaterOrEqual(t, len(customers), 3)

	customers, total, err = svc.List(ctx, 1, 20, "Metal", "", "")
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, total, int64(2))
	assert.GreaterOrEqual(t, len(customers), 2)
}

func TestCustomerService_Delete(t *testing.T) {
	db := setupCustomerServiceTestDB(t)
	svc := createCustomerService(db)
	ctx := context.Background()

	customer, err := svc.Create(ctx, &domain.CreateCustomerRequest{Name: "Fecha Conta"})
	require.NoError(t, err)

	err = svc.Delete(ctx, customer.ID)
	assert.NoError(t, err)

	_, err = svc.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, service.ErrCustomerNotFound)
}

func TestQualityScore(t *testing.T) {
	t.Run("empty record", func(t *testing.T) {
		assert.Equal(t, 0, service.QualityScore(&domain.Customer{}))
	})

	t.Run("name only", func(t *testing.T) {
		assert.Equal(t, 20, service.QualityScore(&domain.Customer{Name: "X"}))
	})

	t.Run("city without state earns nothing", func(t *testing.T) {
		assert.Equal(t, 20, service.QualityScore(&domain.Customer{Name: "X", City: "Santos"}))
	})

	t.Run("complete record", func(t *testing.T) {
		c := &domain.Customer{
			Name:          "X",
			Document:      "123",
			Email:         "x@example.com",
			Phone:         "123",
			ContactPerson: "Y",
			Address:       "Rua 1",
			City:          "Santos",
			State:         "SP",
			Segment:       domain.CustomerSegmentCopper,
		}
		assert.Equal(t, 100, service.QualityScore(c))
	})
}
