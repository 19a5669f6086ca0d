// Package store persists committed features, their layers and an edit trail
// through gorm. It is the cold side of the editor: features only arrive here
// once a drawing, drag or vertex edit has been committed.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"vector-editor/internal/config"
	"vector-editor/internal/features"
	"vector-editor/pkg/geometry"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalid    = errors.New("invalid feature")
	ErrNoRestore  = errors.New("record cannot be restored")
	jsonNull      = datatypes.JSON("null")
	emptyObject   = datatypes.JSON("{}")
	recordColumns = []string{"geometry", "properties", "kind", "layer_id", "updated_at"}
)

// Store is the cold store.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Open connects to the configured database and migrates the schema.
func Open(cfg config.Database) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("store: unknown driver %q", cfg.Driver)
	}

	mode := logger.Silent
	if cfg.Debug {
		mode = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(mode),
	})
	if err != nil {
		return nil, fmt.Errorf("store: connect %s: %w", cfg.Driver, err)
	}
	log.Printf("Store: connected to %s database", dialector.Name())
	return New(db)
}

// New wraps an open gorm handle and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Layer{}, &FeatureRecord{}, &EditRecord{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// CreateLayer persists a layer. An empty ID is replaced by a fresh UUID.
func (s *Store) CreateLayer(ctx context.Context, l features.Layer) (features.Layer, error) {
	if l.Name == "" {
		return features.Layer{}, fmt.Errorf("create layer: empty name")
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	row := Layer{ID: l.ID, Name: l.Name, Color: l.Color, CreatedAt: s.now()}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return features.Layer{}, fmt.Errorf("create layer %s: %w", l.ID, err)
	}
	return l, nil
}

// Layers returns all layers in creation order.
func (s *Store) Layers(ctx context.Context) ([]features.Layer, error) {
	var rows []Layer
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list layers: %w", err)
	}
	out := make([]features.Layer, 0, len(rows))
	for _, r := range rows {
		out = append(out, features.Layer{ID: r.ID, Name: r.Name, Color: r.Color})
	}
	return out, nil
}

// Layer returns one layer.
func (s *Store) Layer(ctx context.Context, id string) (features.Layer, error) {
	var row Layer
	if err := first(s.db.WithContext(ctx), &row, id); err != nil {
		return features.Layer{}, fmt.Errorf("layer %s: %w", id, err)
	}
	return features.Layer{ID: row.ID, Name: row.Name, Color: row.Color}, nil
}

// CreateFeature persists a newly completed feature. It must carry an ID and
// the ID of an existing layer.
func (s *Store) CreateFeature(ctx context.Context, f *geojson.Feature) error {
	rec, err := toRecord(f)
	if err != nil {
		return err
	}
	newJSON, err := featureJSON(f)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var l Layer
		if err := first(tx, &l, rec.LayerID); err != nil {
			return fmt.Errorf("create feature %s: layer %s: %w", rec.ID, rec.LayerID, err)
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create feature %s: %w", rec.ID, err)
		}
		return s.record(tx, RecordAdd, rec.ID, rec.LayerID, jsonNull, newJSON)
	})
}

// UpdateFeature replaces a feature's geometry and properties.
func (s *Store) UpdateFeature(ctx context.Context, f *geojson.Feature) error {
	rec, err := toRecord(f)
	if err != nil {
		return err
	}
	return s.replace(ctx, RecordUpdate, rec)
}

// MoveFeature replaces only the geometry of a feature.
func (s *Store) MoveFeature(ctx context.Context, id string, g orb.Geometry) error {
	if _, err := geometry.KindOf(g); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	current, err := s.Feature(ctx, id)
	if err != nil {
		return err
	}
	moved := features.WithGeometry(current, g, s.now())
	rec, err := toRecord(moved)
	if err != nil {
		return err
	}
	return s.replace(ctx, RecordMove, rec)
}

func (s *Store) replace(ctx context.Context, typ string, rec FeatureRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old FeatureRecord
		if err := first(tx, &old, rec.ID); err != nil {
			return fmt.Errorf("%s feature %s: %w", typ, rec.ID, err)
		}
		oldJSON, err := recordJSON(old)
		if err != nil {
			return err
		}
		rec.UpdatedAt = s.now()
		if err := tx.Model(&FeatureRecord{ID: rec.ID}).Select(recordColumns).Updates(&rec).Error; err != nil {
			return fmt.Errorf("%s feature %s: %w", typ, rec.ID, err)
		}
		newJSON, err := recordJSON(rec)
		if err != nil {
			return err
		}
		return s.record(tx, typ, rec.ID, rec.LayerID, oldJSON, newJSON)
	})
}

// DeleteFeature removes a feature, keeping its last state in the edit trail.
func (s *Store) DeleteFeature(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old FeatureRecord
		if err := first(tx, &old, id); err != nil {
			return fmt.Errorf("delete feature %s: %w", id, err)
		}
		oldJSON, err := recordJSON(old)
		if err != nil {
			return err
		}
		if err := tx.Delete(&FeatureRecord{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("delete feature %s: %w", id, err)
		}
		return s.record(tx, RecordDelete, id, old.LayerID, oldJSON, jsonNull)
	})
}

// Feature loads one feature.
func (s *Store) Feature(ctx context.Context, id string) (*geojson.Feature, error) {
	var rec FeatureRecord
	if err := first(s.db.WithContext(ctx), &rec, id); err != nil {
		return nil, fmt.Errorf("feature %s: %w", id, err)
	}
	return fromRecord(rec)
}

// FeaturesByLayer loads every feature on a layer in creation order.
func (s *Store) FeaturesByLayer(ctx context.Context, layerID string) (*geojson.FeatureCollection, error) {
	var recs []FeatureRecord
	err := s.db.WithContext(ctx).
		Where("layer_id = ?", layerID).
		Order("created_at, id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("features of layer %s: %w", layerID, err)
	}
	fc := geojson.NewFeatureCollection()
	for _, rec := range recs {
		f, err := fromRecord(rec)
		if err != nil {
			log.Printf("Store: skipping feature %s: %v", rec.ID, err)
			continue
		}
		fc.Append(f)
	}
	return fc, nil
}

// Records returns the edit trail of a feature, oldest first.
func (s *Store) Records(ctx context.Context, featureID string) ([]EditRecord, error) {
	var recs []EditRecord
	err := s.db.WithContext(ctx).
		Where("feature_id = ?", featureID).
		Order("id").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("records of %s: %w", featureID, err)
	}
	return recs, nil
}

// Restore undoes one edit record: an add is deleted, a delete is recreated
// and an update or move puts the previous state back. The restore is itself
// recorded.
func (s *Store) Restore(ctx context.Context, recordID int64) error {
	var rec EditRecord
	if err := s.db.WithContext(ctx).First(&rec, recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("record %d: %w", recordID, ErrNotFound)
		}
		return fmt.Errorf("record %d: %w", recordID, err)
	}

	switch rec.Type {
	case RecordAdd:
		return s.DeleteFeature(ctx, rec.FeatureID)
	case RecordDelete, RecordUpdate, RecordMove:
		old, err := geojson.UnmarshalFeature(rec.OldGeojson)
		if err != nil {
			return fmt.Errorf("%w: record %d: %v", ErrNoRestore, recordID, err)
		}
		if rec.Type == RecordDelete {
			return s.CreateFeature(ctx, old)
		}
		return s.UpdateFeature(ctx, old)
	}
	return fmt.Errorf("%w: record %d has type %q", ErrNoRestore, recordID, rec.Type)
}

func (s *Store) record(tx *gorm.DB, typ, featureID, layerID string, oldJSON, newJSON datatypes.JSON) error {
	r := EditRecord{
		FeatureID:  featureID,
		LayerID:    layerID,
		Type:       typ,
		Date:       s.now(),
		OldGeojson: oldJSON,
		NewGeojson: newJSON,
	}
	if err := tx.Create(&r).Error; err != nil {
		return fmt.Errorf("record %s of %s: %w", typ, featureID, err)
	}
	return nil
}

func first(db *gorm.DB, dest interface{}, id string) error {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func toRecord(f *geojson.Feature) (FeatureRecord, error) {
	id := features.ID(f)
	if id == "" {
		return FeatureRecord{}, fmt.Errorf("%w: missing id", ErrInvalid)
	}
	layerID := features.LayerID(f)
	if layerID == "" {
		return FeatureRecord{}, fmt.Errorf("%w: %s has no layer", ErrInvalid, id)
	}
	kind, err := geometry.KindOf(f.Geometry)
	if err != nil {
		return FeatureRecord{}, fmt.Errorf("%w: %s: %v", ErrInvalid, id, err)
	}
	g, err := geojson.NewGeometry(f.Geometry).MarshalJSON()
	if err != nil {
		return FeatureRecord{}, fmt.Errorf("encode geometry of %s: %w", id, err)
	}
	props := emptyObject
	if len(f.Properties) > 0 {
		b, err := json.Marshal(f.Properties)
		if err != nil {
			return FeatureRecord{}, fmt.Errorf("encode properties of %s: %w", id, err)
		}
		props = b
	}
	return FeatureRecord{
		ID:         id,
		LayerID:    layerID,
		Kind:       kind.String(),
		Geometry:   g,
		Properties: props,
	}, nil
}

func fromRecord(rec FeatureRecord) (*geojson.Feature, error) {
	g, err := geojson.UnmarshalGeometry(rec.Geometry)
	if err != nil {
		return nil, fmt.Errorf("decode geometry of %s: %w", rec.ID, err)
	}
	f := geojson.NewFeature(g.Geometry())
	f.ID = rec.ID
	if len(rec.Properties) > 0 {
		if err := json.Unmarshal(rec.Properties, &f.Properties); err != nil {
			return nil, fmt.Errorf("decode properties of %s: %w", rec.ID, err)
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
	}
	f.Properties[features.PropLayerID] = rec.LayerID
	return f, nil
}

func featureJSON(f *geojson.Feature) (datatypes.JSON, error) {
	b, err := f.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode feature %s: %w", features.ID(f), err)
	}
	return b, nil
}

func recordJSON(rec FeatureRecord) (datatypes.JSON, error) {
	f, err := fromRecord(rec)
	if err != nil {
		return nil, err
	}
	return featureJSON(f)
}
