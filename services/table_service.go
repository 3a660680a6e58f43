package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/apperr"
	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/scope"
)

type TableService struct {
	db  *gorm.DB
	hub events.Publisher
}

func NewTableService(db *gorm.DB, hub events.Publisher) *TableService {
	return &TableService{db: db, hub: hub}
}

type CreateTableInput struct {
	TableNumber string `json:"table_number"`
	Capacity    int    `json:"capacity"`
	Status      string `json:"status"`
}

type UpdateTableInput struct {
	TableNumber *string `json:"table_number"`
	Capacity    *int    `json:"capacity"`
}

func (s *TableService) Create(tenantID string, in CreateTableInput) (*models.Table, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if in.TableNumber == "" {
		return nil, apperr.Validationf("table number is required")
	}
	status := in.Status
	if status == "" {
		status = models.TableStatusAvailable
	}
	if !models.ValidTableStatus(status) {
		return nil, apperr.Validationf("unknown table status '%s'", status)
	}
	capacity := in.Capacity
	if capacity <= 0 {
		capacity = 4
	}

	dup, err := sc.Count(&models.Table{}, scope.Where{"table_number": in.TableNumber})
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, apperr.Conflictf("table number '%s' already exists", in.TableNumber)
	}

	table := models.Table{
		TableNumber: in.TableNumber,
		Capacity:    capacity,
		Status:      status,
		// Opaque QR payload; image rendering happens client-side.
		QRCode: fmt.Sprintf("comanda://%s/tables/%s", tenantID, in.TableNumber),
	}
	if err := sc.Create(&table); err != nil {
		return nil, err
	}

	s.hub.Publish(tenantID, events.EventTableUpdate, table)
	return &table, nil
}

func (s *TableService) Get(tenantID string, tableID uint) (*models.Table, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	var table models.Table
	if err := sc.First(&table, scope.Where{"id": tableID}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("table %d not found", tableID)
		}
		return nil, err
	}
	return &table, nil
}

func (s *TableService) List(tenantID, status string) ([]models.Table, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	where := scope.Where{}
	if status != "" {
		where["status"] = status
	}

	var tables []models.Table
	if err := sc.Query(where).Order("table_number asc").Find(&tables).Error; err != nil {
		return nil, err
	}
	return tables, nil
}

func (s *TableService) Update(tenantID string, tableID uint, in UpdateTableInput) (*models.Table, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.Get(tenantID, tableID); err != nil {
		return nil, err
	}

	values := map[string]interface{}{}
	if in.TableNumber != nil {
		var dup int64
		err := sc.Model(&models.Table{}, scope.Where{"table_number": *in.TableNumber}).
			Where("id <> ?", tableID).
			Count(&dup).Error
		if err != nil {
			return nil, err
		}
		if dup > 0 {
			return nil, apperr.Conflictf("table number '%s' already exists", *in.TableNumber)
		}
		values["table_number"] = *in.TableNumber
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, apperr.Validationf("capacity must be positive")
		}
		values["capacity"] = *in.Capacity
	}

	if len(values) > 0 {
		if err := sc.Updates(&models.Table{}, scope.Where{"id": tableID}, values); err != nil {
			return nil, err
		}
	}
	return s.Get(tenantID, tableID)
}

func (s *TableService) UpdateStatus(tenantID string, tableID uint, status string) (*models.Table, error) {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return nil, err
	}

	if !models.ValidTableStatus(status) {
		return nil, apperr.Validationf("unknown table status '%s'", status)
	}
	if _, err := s.Get(tenantID, tableID); err != nil {
		return nil, err
	}

	if err := sc.Updates(&models.Table{}, scope.Where{"id": tableID},
		map[string]interface{}{"status": status}); err != nil {
		return nil, err
	}

	table, err := s.Get(tenantID, tableID)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(tenantID, events.EventTableUpdate, *table)
	return table, nil
}

// Delete rejects tables that still have orders pointing at them.
func (s *TableService) Delete(tenantID string, tableID uint) error {
	sc, err := scope.For(s.db, tenantID)
	if err != nil {
		return err
	}

	if _, err := s.Get(tenantID, tableID); err != nil {
		return err
	}

	n, err := sc.Count(&models.Order{}, scope.Where{"table_id": tableID})
	if err != nil {
		return err
	}
	if n > 0 {
		return apperr.Conflictf("cannot delete a table with %d associated order(s)", n)
	}

	return sc.Delete(&models.Table{}, scope.Where{"id": tableID})
}
