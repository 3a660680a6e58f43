package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/services"
)

func TestTableNumbersAreUniquePerTenant(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 10)
	seedTenant(t, db, "other", 10)
	svc := services.NewTableService(db, &recordingPublisher{})

	table, err := svc.Create("demo", services.CreateTableInput{TableNumber: "T1"})
	require.NoError(t, err)
	assert.Equal(t, 4, table.Capacity)
	assert.Equal(t, models.TableStatusAvailable, table.Status)
	assert.Contains(t, table.QRCode, "demo")

	_, err = svc.Create("demo", services.CreateTableInput{TableNumber: "T1"})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	_, err = svc.Create("other", services.CreateTableInput{TableNumber: "T1"})
	assert.NoError(t, err)
}

func TestUpdateTableStatusValidatesAndPublishes(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 10)
	hub := &recordingPublisher{}
	svc := services.NewTableService(db, hub)

	table, err := svc.Create("demo", services.CreateTableInput{TableNumber: "T1"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus("demo", table.ID, models.TableStatusReserved)
	require.NoError(t, err)
	assert.Equal(t, models.TableStatusReserved, updated.Status)

	_, err = svc.UpdateStatus("demo", table.ID, "flying")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	assert.Equal(t, 2, hub.count("demo", "table_update"))
}

func TestDeleteTableWithOrdersRejected(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 10)
	hub := &recordingPublisher{}
	tables := services.NewTableService(db, hub)
	orders := services.NewOrderService(db, hub)

	table, err := tables.Create("demo", services.CreateTableInput{TableNumber: "T1"})
	require.NoError(t, err)
	_, err = orders.Create("demo", services.CreateOrderInput{OrderNumber: "TBL-001", TableID: &table.ID})
	require.NoError(t, err)

	err = tables.Delete("demo", table.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestTablesAreIsolatedAcrossTenants(t *testing.T) {
	db := setupServiceDB(t)
	seedTenant(t, db, "demo", 10)
	seedTenant(t, db, "other", 10)
	svc := services.NewTableService(db, &recordingPublisher{})

	table, err := svc.Create("demo", services.CreateTableInput{TableNumber: "T1"})
	require.NoError(t, err)

	_, err = svc.Get("other", table.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}
