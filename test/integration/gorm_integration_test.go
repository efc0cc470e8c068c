package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/OffCmfrt/exchange-return-tracking/internal/entity"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/specification"
	"github.com/OffCmfrt/exchange-return-tracking/internal/repository/unitofwork"
	"github.com/OffCmfrt/exchange-return-tracking/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())
	assert.NotNil(t, uow.RequestRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)

	ctx := context.Background()
	repo := uow.RequestRepository()
	requestID := "RET-IT" + uuid.New().String()[:6]

	t.Run("Create And Find", func(t *testing.T) {
		record := &entity.ReturnRequest{
			RequestID:   requestID,
			Type:        entity.RequestTypeReturn,
			Status:      entity.StatusWaitingPayment,
			OrderNumber: "#IT-1001",
			Email:       "integration@example.com",
			Items: []entity.RequestItem{
				{ProductID: 1, VariantID: 11, Quantity: 1, Price: 499},
			},
			Reason: "changed_mind",
		}
		err := repo.Create(ctx, record)
		assert.NoError(t, err)

		found, err := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
		assert.NoError(t, err)
		assert.NotNil(t, found)
		assert.Equal(t, entity.StatusWaitingPayment, found.Status)
		assert.Len(t, found.Items, 1)
	})

	t.Run("Conditional Update Has One Winner", func(t *testing.T) {
		won, err := repo.UpdateWhere(ctx, requestID, map[string]interface{}{
			"status": string(entity.StatusPending),
		}, specification.Filter("status", string(entity.StatusWaitingPayment)))
		assert.NoError(t, err)
		assert.True(t, won)

		// Same precondition again: the row already moved on.
		won, err = repo.UpdateWhere(ctx, requestID, map[string]interface{}{
			"status": string(entity.StatusPending),
		}, specification.Filter("status", string(entity.StatusWaitingPayment)))
		assert.NoError(t, err)
		assert.False(t, won)
	})

	t.Run("IsNull Precondition Guards Identifier Writes", func(t *testing.T) {
		won, err := repo.UpdateWhere(ctx, requestID, map[string]interface{}{
			"shipment_id": "SHIP-IT-1",
			"awb_number":  "AWB-IT-1",
		}, specification.IsNull{Field: "shipment_id"})
		assert.NoError(t, err)
		assert.True(t, won)

		won, err = repo.UpdateWhere(ctx, requestID, map[string]interface{}{
			"shipment_id": "SHIP-IT-2",
		}, specification.IsNull{Field: "shipment_id"})
		assert.NoError(t, err)
		assert.False(t, won)

		found, _ := repo.FindOne(ctx, specification.ByRequestID{RequestID: requestID})
		assert.Equal(t, "SHIP-IT-1", found.ShipmentID)
	})

	t.Run("Cleanup", func(t *testing.T) {
		deleted, err := repo.DeleteMany(ctx, []string{requestID})
		assert.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})
}
