package graphstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/c360studio/ontosync/graph"
)

// Session runs statements and snapshot queries on one Neo4j session. Neo4j
// sessions are not safe for concurrent use, so calls are serialized.
type Session struct {
	mu      sync.Mutex
	session neo4j.SessionWithContext
	logger  *slog.Logger
}

func newSession(s neo4j.SessionWithContext, logger *slog.Logger) *Session {
	return &Session{session: s, logger: logger}
}

func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Close(ctx)
}

// Write runs stmts in one explicit transaction. The first failing statement
// rolls the whole transaction back.
func (s *Session) Write(ctx context.Context, stmts []graph.Statement) error {
	if len(stmts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.session.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Close(ctx); err != nil {
			s.logger.Debug("Close transaction", "error", err)
		}
	}()

	for i, stmt := range stmts {
		text, params := stmt.Cypher()
		res, err := tx.Run(ctx, text, params)
		if err == nil {
			_, err = res.Consume(ctx)
		}
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Warn("Rollback failed", "error", rbErr)
			}
			return fmt.Errorf("statement %d %q: %w", i, text, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// read runs one query in a read transaction and returns all records.
func (s *Session) read(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := s.session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", query, err)
	}
	records, _ := out.([]*neo4j.Record)
	return records, nil
}

func getStringFromRecord(record *neo4j.Record, key string) string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return ""
	}
	if str, ok := val.(string); ok {
		return str
	}
	return fmt.Sprint(val)
}

func getAttrsFromRecord(record *neo4j.Record, key string) map[string]string {
	val, ok := record.Get(key)
	if !ok || val == nil {
		return nil
	}
	props, ok := val.(map[string]any)
	if !ok {
		return nil
	}
	attrs := make(map[string]string, len(props))
	for k, v := range props {
		if k == graph.AttrName || v == nil {
			continue
		}
		if str, ok := v.(string); ok {
			attrs[k] = str
		} else {
			attrs[k] = fmt.Sprint(v)
		}
	}
	return attrs
}
