package repository

import (
	"context"

	"github.com/kasuganosora/slotgrid/model"
	"gorm.io/gorm"
)

// SQLRepository stores snapshots as model.SavedStack rows.
type SQLRepository struct {
	db   *gorm.DB
	name string
}

// NewSQL creates a SQLRepository for the save called name.
func NewSQL(db *gorm.DB, name string) *SQLRepository {
	return &SQLRepository{db: db, name: name}
}

// Load returns the saved stacks in their saved order.
func (r *SQLRepository) Load(ctx context.Context) (*SaveData, error) {
	var rows []model.SavedStack
	err := r.db.WithContext(ctx).
		Where("save_name = ?", r.name).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoSave
	}
	data := &SaveData{Stacks: make([]Record, 0, len(rows))}
	for _, row := range rows {
		if row.ItemID == "" {
			continue // save marker
		}
		data.Stacks = append(data.Stacks, Record{ItemID: row.ItemID, Quantity: row.Qty})
	}
	return data, nil
}

// Save replaces the previous snapshot in one transaction. An empty inventory
// is stored as a single marker row so Exists still reports it.
func (r *SQLRepository) Save(ctx context.Context, data *SaveData) error {
	if err := data.validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("save_name = ?", r.name).Delete(&model.SavedStack{}).Error; err != nil {
			return err
		}
		rows := make([]model.SavedStack, 0, len(data.Stacks)+1)
		rows = append(rows, model.SavedStack{SaveName: r.name, Position: -1})
		for i, rec := range data.Stacks {
			rows = append(rows, model.SavedStack{
				SaveName: r.name,
				Position: i,
				ItemID:   rec.ItemID,
				Qty:      rec.Quantity,
			})
		}
		return tx.Create(&rows).Error
	})
}

// Exists reports whether a snapshot has been saved.
func (r *SQLRepository) Exists(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SavedStack{}).
		Where("save_name = ?", r.name).
		Count(&count).Error
	return count > 0, err
}
