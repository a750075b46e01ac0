package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/cohee-app/models"
	"github.com/yeremiapane/cohee-app/utils"
	"gorm.io/gorm"
)

// LookupKind menandai strategi resolusi meja.
type LookupKind string

const (
	ByToken  LookupKind = "token"
	ByID     LookupKind = "id"
	ByNumber LookupKind = "number"
)

type tableResolver struct {
	kind LookupKind
	key  func(ref TableReference) string
	find func(ctx context.Context, key string) (*models.Table, error)
}

// TableDirectory mencari meja berdasarkan token, id, lalu nomor meja.
// Lookup yang tidak ketemu mengembalikan (nil, nil); error hanya untuk kegagalan store.
type TableDirectory struct {
	db        *gorm.DB
	resolvers []tableResolver
}

type DirectoryOptions struct {
	// RequireToken mematikan fallback id/nomor meja.
	RequireToken bool
}

func NewTableDirectory(db *gorm.DB, opts DirectoryOptions) *TableDirectory {
	d := &TableDirectory{db: db}

	d.resolvers = []tableResolver{
		{kind: ByToken, key: func(r TableReference) string { return r.Token }, find: d.ResolveByToken},
	}
	if !opts.RequireToken {
		d.resolvers = append(d.resolvers,
			tableResolver{kind: ByID, key: func(r TableReference) string { return r.TableID }, find: d.ResolveByTableID},
			tableResolver{kind: ByNumber, key: func(r TableReference) string { return r.TableNumber }, find: d.ResolveByTableNumber},
		)
	}
	return d
}

// Strategies mengembalikan urutan strategi yang aktif.
func (d *TableDirectory) Strategies() []LookupKind {
	kinds := make([]LookupKind, 0, len(d.resolvers))
	for _, r := range d.resolvers {
		kinds = append(kinds, r.kind)
	}
	return kinds
}

// Resolve mencoba strategi secara berurutan dan berhenti di hit pertama.
func (d *TableDirectory) Resolve(ctx context.Context, ref TableReference) (*models.Table, LookupKind, error) {
	for _, r := range d.resolvers {
		key := r.key(ref)
		if key == "" {
			continue
		}
		table, err := r.find(ctx, key)
		if err != nil {
			return nil, r.kind, err
		}
		if table != nil {
			return table, r.kind, nil
		}
	}
	return nil, "", ErrTableNotFound
}

// ResolveByToken hanya mengembalikan meja yang aktif.
func (d *TableDirectory) ResolveByToken(ctx context.Context, token string) (*models.Table, error) {
	return d.first(ctx, "qr_code_token = ? AND is_active = ?", token, true)
}

// ResolveByTableID tidak memeriksa flag aktif; pemanggil yang memutuskan.
func (d *TableDirectory) ResolveByTableID(ctx context.Context, id string) (*models.Table, error) {
	return d.first(ctx, "id = ?", id)
}

func (d *TableDirectory) ResolveByTableNumber(ctx context.Context, number string) (*models.Table, error) {
	return d.first(ctx, "table_number = ? AND is_active = ?", number, true)
}

// ListActive mengembalikan meja aktif terurut nomor meja.
func (d *TableDirectory) ListActive(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := d.db.WithContext(ctx).Where("is_active = ?", true).Order("table_number").Find(&tables).Error; err != nil {
		utils.ErrorLogger.Printf("Error listing tables: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return tables, nil
}

func (d *TableDirectory) first(ctx context.Context, query string, args ...interface{}) (*models.Table, error) {
	var table models.Table
	err := d.db.WithContext(ctx).Where(query, args...).First(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		utils.ErrorLogger.Printf("Error looking up table (%s): %v", query, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return &table, nil
}
