package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// ReferenceService serves the tag and ingredient catalogues.
type ReferenceService struct {
	db *gorm.DB
}

var _ IReferenceService = (*ReferenceService)(nil)

func NewReferenceService(db *gorm.DB) *ReferenceService {
	return &ReferenceService{db: db}
}

func (s *ReferenceService) ListTags(ctx context.Context) ([]types.TagResponse, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	result := make([]types.TagResponse, len(tags))
	for i, t := range tags {
		result[i] = types.TagResponse{ID: t.ID, Name: t.Name, Slug: t.Slug}
	}
	return result, nil
}

func (s *ReferenceService) GetTag(ctx context.Context, id uint) (*types.TagResponse, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "tag", ID: id}
		}
		return nil, err
	}
	return &types.TagResponse{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}, nil
}

// ListIngredients returns ingredients whose name starts with namePrefix,
// case-insensitively. An empty prefix lists everything.
func (s *ReferenceService) ListIngredients(ctx context.Context, namePrefix string) ([]types.IngredientResponse, error) {
	q := s.db.WithContext(ctx).Order("name").Order("measurement_unit")
	if namePrefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(namePrefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, err
	}
	result := make([]types.IngredientResponse, len(ingredients))
	for i, ing := range ingredients {
		result[i] = types.IngredientResponse{ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}
	}
	return result, nil
}

func (s *ReferenceService) GetIngredient(ctx context.Context, id uint) (*types.IngredientResponse, error) {
	var ing models.Ingredient
	if err := s.db.WithContext(ctx).First(&ing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "ingredient", ID: id}
		}
		return nil, err
	}
	return &types.IngredientResponse{ID: ing.ID, Name: ing.Name, MeasurementUnit: ing.MeasurementUnit}, nil
}

// LoadTags inserts tags, skipping rows that clash with existing ones, and
// returns how many were inserted.
func (s *ReferenceService) LoadTags(ctx context.Context, tags []models.Tag) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&tags, 500)
	return res.RowsAffected, res.Error
}

// LoadIngredients is LoadTags for ingredients.
func (s *ReferenceService) LoadIngredients(ctx context.Context, ingredients []models.Ingredient) (int64, error) {
	if len(ingredients) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&ingredients, 500)
	return res.RowsAffected, res.Error
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
