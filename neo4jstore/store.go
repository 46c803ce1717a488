// Package neo4jstore persists armature poses to a Neo4j graph.
//
// Every joint of a saved pose is a node labelled Joint, keyed by the name of
// its skeleton and the name of its element. A joint points at its parent joint
// through a CHILD_OF relationship, so the structure of saved skeletons can be
// queried directly in Cypher.
package neo4jstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/danielorbach/go-component"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-digitaltwin/go-armature/pose"
)

const jointLabel = "Joint"

// ErrSkeletonNotFound is returned by Load when no joints are saved under the
// requested skeleton name.
var ErrSkeletonNotFound = errors.New("skeleton not found")

// ErrEmptyPose is returned by Save when the pose has no joints. A skeleton
// exists only through its joints, so an empty pose could never be loaded back.
var ErrEmptyPose = errors.New("empty pose")

// Store saves and loads poses of named skeletons.
//
// A Store is safe for concurrent use.
type Store struct {
	driver   neo4j.DriverWithContext // Connection to the neo4j server/cluster.
	database string                  // Target database name, see BootstrapDatabase.
	mu       graphWRMutex
}

// NewStore returns a Store operating on the given database.
func NewStore(driver neo4j.DriverWithContext, database string) *Store {
	return &Store{driver: driver, database: database}
}

// Save replaces the joints of the named skeleton with the joints of p in a
// single transaction. It returns ErrEmptyPose, and leaves the stored skeleton
// as is, when p has no joints; use Delete to remove a skeleton.
func (s *Store) Save(ctx context.Context, skeleton string, p pose.Pose) (err error) {
	if len(p) == 0 {
		return fmt.Errorf("save %q: %w", skeleton, ErrEmptyPose)
	}

	ctx, span := tracer.Start(ctx, "Save", trace.WithAttributes(
		attribute.String("neo4j.database", s.database),
		attribute.String("skeleton", skeleton),
		attribute.Int("joints", len(p)),
	))
	defer span.End()

	s.mu.WLock()
	defer s.mu.WUnlock()

	joints := make([]map[string]any, len(p))
	for i, j := range p {
		joints[i] = map[string]any{
			"element":  j.Element,
			"parent":   j.Parent,
			"depth":    int64(j.Depth),
			"anchor":   j.Anchor,
			"rotation": j.Rotation,
			"position": int64(i),
		}
	}
	params := map[string]any{"skeleton": skeleton, "joints": joints}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer func() { _ = session.Close(ctx) }()

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if _, err := tx.Run(ctx, `
			MATCH (j:`+jointLabel+` {skeleton: $skeleton})
			DETACH DELETE j
		`, params); err != nil {
			return nil, fmt.Errorf("delete previous joints: %w", err)
		}
		if _, err := tx.Run(ctx, `
			UNWIND $joints AS joint
			CREATE (j:`+jointLabel+` {skeleton: $skeleton})
			SET j += joint
		`, params); err != nil {
			return nil, fmt.Errorf("create joints: %w", err)
		}
		if _, err := tx.Run(ctx, `
			MATCH (c:`+jointLabel+` {skeleton: $skeleton})
			WHERE c.parent <> ''
			MATCH (p:`+jointLabel+` {skeleton: $skeleton, element: c.parent})
			CREATE (c)-[:CHILD_OF]->(p)
		`, params); err != nil {
			return nil, fmt.Errorf("connect joints: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("neo4j execute: %w", err)
	}
	jointsSaved.Add(ctx, int64(len(p)))
	component.Logger(ctx).DebugContext(ctx, "Saved skeleton pose", "skeleton", skeleton, "joints", len(p))
	return nil
}

// Load returns the pose saved under the named skeleton, with its joints in the
// order they were saved. It returns ErrSkeletonNotFound if there is no such
// skeleton.
func (s *Store) Load(ctx context.Context, skeleton string) (p pose.Pose, err error) {
	ctx, span := tracer.Start(ctx, "Load", trace.WithAttributes(
		attribute.String("neo4j.database", s.database),
		attribute.String("skeleton", skeleton),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer func() { _ = session.Close(ctx) }()

	_, err = session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// The driver may retry this function; start over every time.
		p = nil
		result, err := tx.Run(ctx, `
			MATCH (j:`+jointLabel+` {skeleton: $skeleton})
			RETURN j.element AS element, j.parent AS parent, j.depth AS depth,
			       j.anchor AS anchor, j.rotation AS rotation
			ORDER BY j.position
		`, map[string]any{"skeleton": skeleton})
		if err != nil {
			return nil, fmt.Errorf("run cypher: %w", err)
		}
		for result.Next(ctx) {
			j, err := parseJoint(result.Record())
			if err != nil {
				return nil, fmt.Errorf("parse joint: %w", err)
			}
			p = append(p, j)
		}
		// Neo4j's result cursor is exhausted by now. We check its Err method to get
		// the error that caused the iteration to stop, if any.
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("iterate joints: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("neo4j execute: %w", err)
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("load %q: %w", skeleton, ErrSkeletonNotFound)
	}
	return p, nil
}

// Skeletons returns the names of all saved skeletons, sorted.
func (s *Store) Skeletons(ctx context.Context) (names []string, err error) {
	ctx, span := tracer.Start(ctx, "Skeletons", trace.WithAttributes(
		attribute.String("neo4j.database", s.database),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer func() { _ = session.Close(ctx) }()

	_, err = session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		names = nil
		result, err := tx.Run(ctx, `
			MATCH (j:`+jointLabel+`)
			RETURN DISTINCT j.skeleton AS skeleton
			ORDER BY skeleton
		`, nil)
		if err != nil {
			return nil, fmt.Errorf("run cypher: %w", err)
		}
		for result.Next(ctx) {
			name, err := getRecordProperty[string](result.Record(), "skeleton")
			if err != nil {
				return nil, fmt.Errorf("get skeleton: %w", err)
			}
			names = append(names, name)
		}
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("iterate skeletons: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("neo4j execute: %w", err)
	}
	return names, nil
}

// Delete removes the named skeleton and returns the number of joints deleted.
// Deleting a missing skeleton deletes nothing and is not an error.
func (s *Store) Delete(ctx context.Context, skeleton string) (n int, err error) {
	ctx, span := tracer.Start(ctx, "Delete", trace.WithAttributes(
		attribute.String("neo4j.database", s.database),
		attribute.String("skeleton", skeleton),
	))
	defer span.End()

	s.mu.WLock()
	defer s.mu.WUnlock()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
	defer func() { _ = session.Close(ctx) }()

	deleted, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (j:`+jointLabel+` {skeleton: $skeleton})
			DETACH DELETE j
			RETURN count(j) AS joints
		`, map[string]any{"skeleton": skeleton})
		if err != nil {
			return nil, fmt.Errorf("run cypher: %w", err)
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, fmt.Errorf("query single result: %w", err)
		}
		return getRecordProperty[int64](record, "joints")
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("neo4j execute: %w", err)
	}
	return int(deleted.(int64)), nil
}

func parseJoint(record *neo4j.Record) (j pose.Joint, err error) {
	if j.Element, err = getRecordProperty[string](record, "element"); err != nil {
		return j, fmt.Errorf("get element: %w", err)
	}
	if j.Parent, err = getRecordProperty[string](record, "parent"); err != nil {
		return j, fmt.Errorf("get parent: %w", err)
	}
	depth, err := getRecordProperty[int64](record, "depth")
	if err != nil {
		return j, fmt.Errorf("get depth: %w", err)
	}
	j.Depth = int(depth)
	if j.Anchor, err = getRecordProperty[bool](record, "anchor"); err != nil {
		return j, fmt.Errorf("get anchor: %w", err)
	}
	if j.Rotation, err = getRecordProperty[float64](record, "rotation"); err != nil {
		return j, fmt.Errorf("get rotation: %w", err)
	}
	return j, nil
}

// A errPropertyNotFound occurs when a returned column is missing from a record.
//
// When encountering this error, it most likely occurs when changing a Cypher
// query without modifying the surrounding code properly.
var errPropertyNotFound = errors.New("property not found")

// An unexpectedPropertyTypeError occurs when a returned column has a runtime
// type that is different from the expected type. The error message contains the
// effective type of the property at runtime.
type unexpectedPropertyTypeError struct {
	Type reflect.Type
}

func (e unexpectedPropertyTypeError) Error() string {
	return fmt.Sprintf("unexpected property type %v", e.Type)
}

// The recordProperty interface defines generic constraints for supported values
// by getRecordProperty.
//
// These type constraints protect against types the neo4j driver never returns,
// like int or float32.
type recordProperty interface {
	int64 | float64 | bool | string
}

func getRecordProperty[T recordProperty](record *neo4j.Record, key string) (value T, err error) {
	prop, exists := record.Get(key)
	if !exists {
		return value, errPropertyNotFound
	}
	v, ok := prop.(T)
	if !ok {
		return value, unexpectedPropertyTypeError{Type: reflect.TypeOf(prop)}
	}
	return v, nil
}
