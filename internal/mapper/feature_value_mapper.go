// FILE: internal/mapper/feature_value_mapper.go
// Mapper between FeatureValue and the per-type value table rows
package mapper

import (
	"fmt"
	"strconv"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/model"
)

type FeatureValueMapper struct{}

func NewFeatureValueMapper() *FeatureValueMapper {
	return &FeatureValueMapper{}
}

// NewModel returns a pointer to an empty row of the given type.
func (m *FeatureValueMapper) NewModel(t entity.FeatureType) (interface{}, error) {
	switch t {
	case entity.FeatureTypeInteger:
		return &model.IntegerValue{}, nil
	case entity.FeatureTypeString:
		return &model.StringValue{}, nil
	case entity.FeatureTypeText:
		return &model.TextValue{}, nil
	case entity.FeatureTypeImage:
		return &model.ImageValue{}, nil
	}
	return nil, fmt.Errorf("unknown feature type %q", t)
}

// NewModelSlice returns a pointer to an empty slice of rows of the given type.
func (m *FeatureValueMapper) NewModelSlice(t entity.FeatureType) (interface{}, error) {
	switch t {
	case entity.FeatureTypeInteger:
		return &[]*model.IntegerValue{}, nil
	case entity.FeatureTypeString:
		return &[]*model.StringValue{}, nil
	case entity.FeatureTypeText:
		return &[]*model.TextValue{}, nil
	case entity.FeatureTypeImage:
		return &[]*model.ImageValue{}, nil
	}
	return nil, fmt.Errorf("unknown feature type %q", t)
}

func (m *FeatureValueMapper) ToModel(t entity.FeatureType, v *entity.FeatureValue) (interface{}, error) {
	switch t {
	case entity.FeatureTypeInteger:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("integer value %q: %w", v.Value, err)
		}
		return &model.IntegerValue{
			Id: v.Id, PatternId: v.PatternId, FeatureId: v.FeatureId, Value: n,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
		}, nil
	case entity.FeatureTypeString:
		return &model.StringValue{
			Id: v.Id, PatternId: v.PatternId, FeatureId: v.FeatureId, Value: v.Value,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
		}, nil
	case entity.FeatureTypeText:
		return &model.TextValue{
			Id: v.Id, PatternId: v.PatternId, FeatureId: v.FeatureId, Value: v.Value,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
		}, nil
	case entity.FeatureTypeImage:
		return &model.ImageValue{
			Id: v.Id, PatternId: v.PatternId, FeatureId: v.FeatureId,
			Filename: v.Filename, AltText: v.AltText, Hash: v.Hash,
			CreatedAt: v.CreatedAt, UpdatedAt: v.UpdatedAt,
		}, nil
	}
	return nil, fmt.Errorf("unknown feature type %q", t)
}

// ToEntity accepts any row pointer produced by NewModel or ToModel.
func (m *FeatureValueMapper) ToEntity(row interface{}) *entity.FeatureValue {
	switch r := row.(type) {
	case *model.IntegerValue:
		return &entity.FeatureValue{
			Id: r.Id, PatternId: r.PatternId, FeatureId: r.FeatureId,
			Value:     strconv.FormatInt(r.Value, 10),
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	case *model.StringValue:
		return &entity.FeatureValue{
			Id: r.Id, PatternId: r.PatternId, FeatureId: r.FeatureId, Value: r.Value,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	case *model.TextValue:
		return &entity.FeatureValue{
			Id: r.Id, PatternId: r.PatternId, FeatureId: r.FeatureId, Value: r.Value,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	case *model.ImageValue:
		return &entity.FeatureValue{
			Id: r.Id, PatternId: r.PatternId, FeatureId: r.FeatureId,
			Filename: r.Filename, AltText: r.AltText, Hash: r.Hash,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		}
	}
	return nil
}

// ToEntities accepts a slice pointer produced by NewModelSlice.
func (m *FeatureValueMapper) ToEntities(rows interface{}) []*entity.FeatureValue {
	var out []*entity.FeatureValue
	switch rs := rows.(type) {
	case *[]*model.IntegerValue:
		for _, r := range *rs {
			out = append(out, m.ToEntity(r))
		}
	case *[]*model.StringValue:
		for _, r := range *rs {
			out = append(out, m.ToEntity(r))
		}
	case *[]*model.TextValue:
		for _, r := range *rs {
			out = append(out, m.ToEntity(r))
		}
	case *[]*model.ImageValue:
		for _, r := range *rs {
			out = append(out, m.ToEntity(r))
		}
	}
	return out
}
