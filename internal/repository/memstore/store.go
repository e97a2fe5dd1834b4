// Package memstore keeps every repository in process memory. It backs the
// service tests and DB_DRIVER=memory. A unit of work serializes writers from
// Begin until Commit or Rollback and writes to a private copy of the data;
// Commit swaps the copy in, Rollback drops it. Readers outside a transaction
// only ever see committed data.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pattern-sphere-be/internal/entity"
	"pattern-sphere-be/internal/repository/specification"
	"pattern-sphere-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	data *dataset
}

func New() *Store {
	return &Store{data: newDataset()}
}

// NewUnitOfWork makes Store a unitofwork.RepositoryFactory.
func (s *Store) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &unitOfWork{store: s}
}

// HasTable reports whether a value table exists. Used by tests.
func (s *Store) HasTable(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data.values[name]
	return ok
}

// dataView is what a repository reads and writes through: the committed dataset
// outside a transaction, the transaction's working copy inside one.
type dataView struct {
	store *Store
	uow   *unitOfWork
	mu    *sync.RWMutex
}

func (v *dataView) data() *dataset {
	if v.uow != nil && v.uow.active {
		return v.uow.work
	}
	return v.store.data
}

type table[T any] struct {
	rows  map[uuid.UUID]T
	order map[uuid.UUID]uint64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: map[uuid.UUID]T{}, order: map[uuid.UUID]uint64{}}
}

func (t *table[T]) clone() *table[T] {
	c := newTable[T]()
	for id, row := range t.rows {
		c.rows[id] = row
		c.order[id] = t.order[id]
	}
	return c
}

func (t *table[T]) delete(id uuid.UUID) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	delete(t.order, id)
	return true
}

// sorted returns rows in insertion order.
func (t *table[T]) sorted() []T {
	ids := make([]uuid.UUID, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return t.order[ids[i]] < t.order[ids[j]] })
	out := make([]T, len(ids))
	for i, id := range ids {
		out[i] = t.rows[id]
	}
	return out
}

type valueTable struct {
	featureType entity.FeatureType
	rows        *table[entity.FeatureValue]
}

type dataset struct {
	seq       uint64
	features  *table[entity.Feature]
	templates *table[entity.Template]
	links     *table[entity.TemplateFeature]
	patterns  *table[entity.Pattern]
	languages *table[entity.PatternLanguage]
	members   *table[entity.LanguageMember]
	views     *table[entity.PatternView]
	values    map[string]*valueTable
}

func newDataset() *dataset {
	return &dataset{
		features:  newTable[entity.Feature](),
		templates: newTable[entity.Template](),
		links:     newTable[entity.TemplateFeature](),
		patterns:  newTable[entity.Pattern](),
		languages: newTable[entity.PatternLanguage](),
		members:   newTable[entity.LanguageMember](),
		views:     newTable[entity.PatternView](),
		values:    map[string]*valueTable{},
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		seq:       d.seq,
		features:  d.features.clone(),
		templates: d.templates.clone(),
		links:     d.links.clone(),
		patterns:  d.patterns.clone(),
		languages: d.languages.clone(),
		members:   d.members.clone(),
		views:     d.views.clone(),
		values:    make(map[string]*valueTable, len(d.values)),
	}
	for name, vt := range d.values {
		c.values[name] = &valueTable{featureType: vt.featureType, rows: vt.rows.clone()}
	}
	return c
}

func (d *dataset) nextSeq() uint64 {
	d.seq++
	return d.seq
}

func insert[T any](d *dataset, t *table[T], id uuid.UUID, row T) {
	if _, ok := t.rows[id]; !ok {
		t.order[id] = d.nextSeq()
	}
	t.rows[id] = row
}

// fields is the flattened view of a row that specifications are evaluated on.
type fields struct {
	id         uuid.UUID
	name       string
	templateId uuid.UUID
	featureId  uuid.UUID
	languageId uuid.UUID
	patternId  uuid.UUID
	required   bool
	typ        string
	hash       string
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (d *dataset) match(f fields, specs []specification.Specification) (bool, error) {
	for _, spec := range specs {
		var ok bool
		switch s := spec.(type) {
		case specification.ByID:
			ok = f.id == s.ID
		case specification.ByIDs:
			ok = containsID(s.IDs, f.id)
		case specification.ExcludeID:
			ok = f.id != s.ID
		case specification.ByName:
			ok = f.name == s.Name
		case specification.ByTemplateID:
			ok = f.templateId == s.TemplateID
		case specification.ByFeatureID:
			ok = f.featureId == s.FeatureID
		case specification.ByLanguageID:
			ok = f.languageId == s.LanguageID
		case specification.ByPatternID:
			ok = f.patternId == s.PatternID
		case specification.ByPatternIDs:
			ok = containsID(s.PatternIDs, f.patternId)
		case specification.ByRequired:
			ok = f.required == s.Required
		case specification.ByType:
			ok = f.typ == s.Type
		case specification.ByHash:
			ok = f.hash == s.Hash
		case specification.InLanguage:
			for _, m := range d.members.rows {
				if m.LanguageId == s.LanguageID && m.PatternId == f.id {
					ok = true
					break
				}
			}
		case specification.InTemplate:
			p, found := d.patterns.rows[f.patternId]
			ok = found && p.TemplateId == s.TemplateID
		default:
			return false, fmt.Errorf("memstore: unsupported specification %T", spec)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func filter[T any](d *dataset, t *table[T], fieldsOf func(T) fields, specs []specification.Specification) ([]T, error) {
	var out []T
	for _, row := range t.sorted() {
		ok, err := d.match(fieldsOf(row), specs)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func deleteWhere[T any](d *dataset, t *table[T], fieldsOf func(T) fields, specs []specification.Specification) (int64, error) {
	if len(specs) == 0 {
		return 0, fmt.Errorf("memstore: delete without conditions")
	}
	rows, err := filter(d, t, fieldsOf, specs)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		t.delete(fieldsOf(row).id)
	}
	return int64(len(rows)), nil
}

func now() time.Time {
	return time.Now().UTC()
}
