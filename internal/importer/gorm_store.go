package importer

import (
	"context"

	"example.com/conecar/services/fletes/internal/models"
	"example.com/conecar/services/fletes/internal/repositories"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// gormStore is the production Store. Transportista reads and writes go
// straight through the base connection so they commit immediately; flete
// inserts accumulate in a batch transaction that Flush commits and reopens.
// The unique indexes on o_carga and nombre are the backstop against
// concurrent imports racing each other.
type gormStore struct {
	db                *gorm.DB
	tx                *gorm.DB
	fleteRepo         *repositories.FleteRepository
	transportistaRepo *repositories.TransportistaRepository
}

func newGormStore(db *gorm.DB) *gormStore {
	return &gormStore{
		db:                db,
		fleteRepo:         repositories.NewFleteRepository(db),
		transportistaRepo: repositories.NewTransportistaRepository(db),
	}
}

func (s *gormStore) ExistingOCargas(ctx context.Context) (map[string]struct{}, error) {
	return s.fleteRepo.ExistingOCargas(ctx)
}

func (s *gormStore) FindTransportista(ctx context.Context, nombre string) (*models.Transportista, error) {
	t, err := s.transportistaRepo.GetByNombre(ctx, nombre)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

func (s *gormStore) CreateTransportista(ctx context.Context, t *models.Transportista) error {
	return s.transportistaRepo.Create(ctx, t)
}

func (s *gormStore) InsertFlete(ctx context.Context, f *models.Flete) error {
	if s.tx == nil {
		s.tx = s.db.WithContext(ctx).Begin()
		if s.tx.Error != nil {
			err := s.tx.Error
			s.tx = nil
			return errors.Wrap(err, "failed to begin batch transaction")
		}
	}
	if err := s.tx.Create(f).Error; err != nil {
		return errors.Wrap(err, "failed to insert flete")
	}
	return nil
}

func (s *gormStore) Flush(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Commit().Error
	s.tx = nil
	if err != nil {
		return errors.Wrap(err, "failed to commit batch transaction")
	}
	return nil
}

func (s *gormStore) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return errors.Wrap(err, "failed to roll back batch transaction")
	}
	return nil
}
